package amadeus

import (
	"fmt"
	"strconv"
	"time"

	"github.com/farewatch/farewatch/internal/domain"
)

// ProviderName is the unique identifier for the Amadeus pricing provider.
const ProviderName = "amadeus"

// The provider reports segment times as local datetimes without a zone.
const dateTimeLayout = "2006-01-02T15:04:05"

// normalize converts a provider response to domain offers. Offers that fail
// to normalize are skipped; one malformed entry must not sink the candidate.
func normalize(resp offersResponse) []domain.Offer {
	result := make([]domain.Offer, 0, len(resp.Data))

	for _, res := range resp.Data {
		offer, err := normalizeOffer(res)
		if err != nil {
			continue
		}
		result = append(result, offer)
	}

	return result
}

// normalizeOffer converts a single provider offer to a domain Offer.
func normalizeOffer(res offerResource) (domain.Offer, error) {
	if len(res.Itineraries) == 0 {
		return domain.Offer{}, fmt.Errorf("offer %s has no itineraries", res.ID)
	}

	amount, err := strconv.ParseFloat(res.Price.GrandTotal, 64)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("failed to parse price %q: %w", res.Price.GrandTotal, err)
	}

	outbound, err := normalizeLeg(res.Itineraries[0])
	if err != nil {
		return domain.Offer{}, err
	}

	var inbound *domain.Leg
	if len(res.Itineraries) > 1 {
		leg, err := normalizeLeg(res.Itineraries[1])
		if err != nil {
			return domain.Offer{}, err
		}
		inbound = &leg
	}

	var carrier string
	if len(res.ValidatingAirlineCodes) > 0 {
		carrier = res.ValidatingAirlineCodes[0]
	}

	return domain.Offer{
		ID:                res.ID,
		Price:             amount,
		Currency:          res.Price.Currency,
		Outbound:          outbound,
		Inbound:           inbound,
		ValidatingCarrier: carrier,
		BookableSeats:     res.NumberOfBookableSeats,
	}, nil
}

// normalizeLeg flattens an itinerary's segments into a single leg: first
// departure, last arrival, connections plus technical stops counted together.
func normalizeLeg(it itinerary) (domain.Leg, error) {
	if len(it.Segments) == 0 {
		return domain.Leg{}, fmt.Errorf("itinerary has no segments")
	}

	first := it.Segments[0]
	last := it.Segments[len(it.Segments)-1]

	departureAt, err := parseDateTime(first.Departure.At)
	if err != nil {
		return domain.Leg{}, fmt.Errorf("failed to parse departure time: %w", err)
	}
	arrivalAt, err := parseDateTime(last.Arrival.At)
	if err != nil {
		return domain.Leg{}, fmt.Errorf("failed to parse arrival time: %w", err)
	}

	stops := len(it.Segments) - 1
	for _, seg := range it.Segments {
		stops += seg.NumberOfStops
	}

	return domain.Leg{
		CarrierCode: first.CarrierCode,
		Origin:      first.Departure.IataCode,
		Destination: last.Arrival.IataCode,
		DepartureAt: departureAt,
		ArrivalAt:   arrivalAt,
		Stops:       stops,
	}, nil
}

// parseDateTime parses a provider timestamp, tolerating an explicit zone.
func parseDateTime(value string) (time.Time, error) {
	t, err := time.Parse(dateTimeLayout, value)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(time.RFC3339, value)
	if err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse datetime %q", value)
}
