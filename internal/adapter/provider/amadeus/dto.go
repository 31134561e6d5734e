package amadeus

// tokenResponse is the OAuth2 token endpoint reply.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// offersResponse is the flight-offers search reply envelope.
type offersResponse struct {
	Data []offerResource `json:"data"`
}

// offerResource is one offer as the provider returns it.
type offerResource struct {
	ID                     string      `json:"id"`
	NumberOfBookableSeats  int         `json:"numberOfBookableSeats"`
	Itineraries            []itinerary `json:"itineraries"`
	Price                  price       `json:"price"`
	ValidatingAirlineCodes []string    `json:"validatingAirlineCodes"`
}

type itinerary struct {
	Duration string    `json:"duration"`
	Segments []segment `json:"segments"`
}

type segment struct {
	Departure     endpoint `json:"departure"`
	Arrival       endpoint `json:"arrival"`
	CarrierCode   string   `json:"carrierCode"`
	Number        string   `json:"number"`
	NumberOfStops int      `json:"numberOfStops"`
}

type endpoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal"`
	At       string `json:"at"`
}

type price struct {
	Currency   string `json:"currency"`
	GrandTotal string `json:"grandTotal"`
}

// apiError is the provider's error envelope.
type apiError struct {
	Errors []struct {
		Status int    `json:"status"`
		Code   int    `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// detail returns the first error detail, falling back to the title.
func (e apiError) detail() string {
	if len(e.Errors) == 0 {
		return ""
	}
	if e.Errors[0].Detail != "" {
		return e.Errors[0].Detail
	}
	return e.Errors[0].Title
}
