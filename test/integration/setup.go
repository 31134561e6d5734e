// Package integration provides helpers and integration tests for the fare
// watch system. Integration tests verify that components work together
// correctly: the provider client against a fake Amadeus API, the watcher on
// top of it, and the HTTP surface around both.
package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/farewatch/farewatch/internal/adapter/provider/amadeus"
	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/infrastructure/ratelimit"
	"github.com/farewatch/farewatch/internal/infrastructure/retry"
	"github.com/farewatch/farewatch/internal/usecase"
	"github.com/farewatch/farewatch/test/testutil"
)

// FakeProvider is an httptest-backed stand-in for the Amadeus API, serving
// the OAuth2 token endpoint and the flight-offers endpoint.
type FakeProvider struct {
	*httptest.Server

	TokenCalls  atomic.Int64
	OffersCalls atomic.Int64

	// Respond builds the offers response for a query. Defaults to two
	// offers per candidate: one under and one over the default price
	// ceiling.
	Respond func(departure, ret string) (status int, body string)
}

// NewFakeProvider starts a fake provider server. It is closed with the test.
func NewFakeProvider(t *testing.T) *FakeProvider {
	t.Helper()

	fp := &FakeProvider{}
	fp.Respond = func(departure, ret string) (int, string) {
		return http.StatusOK, DefaultOffersBody(departure, ret)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		n := fp.TokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token": "tok-%d", "token_type": "Bearer", "expires_in": 1799}`, n)
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		fp.OffersCalls.Add(1)
		q := r.URL.Query()
		status, body := fp.Respond(q.Get("departureDate"), q.Get("returnDate"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	})

	fp.Server = httptest.NewServer(mux)
	t.Cleanup(fp.Close)
	return fp
}

// DefaultOffersBody renders a response with one affordable nonstop offer
// and one offer above the default 600 USD ceiling, tagged with the
// candidate's dates.
func DefaultOffersBody(departure, ret string) string {
	return fmt.Sprintf(`{"data": [%s, %s]}`,
		OfferBody("cheap-"+departure, "548.40", departure, ret),
		OfferBody("pricey-"+departure, "901.10", departure, ret))
}

// OfferBody renders one round-trip offer resource.
func OfferBody(id, price, departure, ret string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"numberOfBookableSeats": 4,
		"itineraries": [
			{"segments": [{
				"departure": {"iataCode": "SFO", "at": "%sT08:15:00"},
				"arrival": {"iataCode": "OGG", "at": "%sT10:35:00"},
				"carrierCode": "UA", "number": "1509"
			}]},
			{"segments": [{
				"departure": {"iataCode": "OGG", "at": "%sT13:40:00"},
				"arrival": {"iataCode": "SFO", "at": "%sT21:45:00"},
				"carrierCode": "UA", "number": "1510"
			}]}
		],
		"price": {"currency": "USD", "grandTotal": %q},
		"validatingAirlineCodes": ["UA"]
	}`, id, departure, departure, ret, ret, price)
}

// NewProviderClient creates a real offer client against the fake provider
// with test-speed pacing and backoff.
func NewProviderClient(fp *FakeProvider) *amadeus.Client {
	retryCfg := retry.ProviderConfig
	retryCfg.InitialDelay = time.Millisecond
	retryCfg.MaxDelay = 5 * time.Millisecond

	return amadeus.NewClient(amadeus.Config{
		BaseURL:      fp.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		Pacer:        ratelimit.NewPacer(time.Millisecond),
		Retry:        &retryCfg,
	})
}

// NewWatcher creates a watcher over the fake provider.
func NewWatcher(fp *FakeProvider, workers int) usecase.FlightWatcher {
	return usecase.NewWatcher(NewProviderClient(fp), &usecase.Config{Workers: workers})
}

// DefaultPlan re-exports the canonical test plan.
func DefaultPlan() domain.SearchPlan {
	return testutil.DefaultPlan()
}
