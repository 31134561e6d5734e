package usecase

import (
	"fmt"
	"strings"

	"github.com/farewatch/farewatch/internal/domain"
)

// FormatRun renders a run as a plain-text summary for chat delivery.
// Pure function: deterministic for a given run, no I/O, input untouched.
func FormatRun(run *domain.SearchRun) string {
	var b strings.Builder

	switch run.Status {
	case domain.RunFailed:
		fmt.Fprintf(&b, "Flight search for %s failed: %s", run.Plan.Route(), run.FailureCause)

	case domain.RunCompleted:
		fmt.Fprintf(&b, "Flight search for %s: searched %d of %d date pairs, %d offer(s) matched.",
			run.Plan.Route(), run.CandidatesSearched(), len(run.Candidates), len(run.Results))

		if len(run.Results) == 0 {
			b.WriteString("\nNo offers found within constraints.")
			break
		}

		fmt.Fprintf(&b, "\nBest fares under %s %.2f:", run.Plan.Currency, run.Plan.MaxPrice)
		for i, offer := range run.Results {
			fmt.Fprintf(&b, "\n%d. %s", i+1, FormatOffer(offer.Offer))
		}

	default:
		fmt.Fprintf(&b, "Flight search for %s is %s.", run.Plan.Route(), run.Status)
	}

	return b.String()
}

// FormatOffer renders one offer as a single summary line:
// dates, price, stops, carrier.
func FormatOffer(offer domain.Offer) string {
	dates := offer.DepartureDate()
	if ret := offer.ReturnDate(); ret != "" {
		dates += " -> " + ret
	}
	return fmt.Sprintf("%s | %s %.2f | %s | %s",
		dates, offer.Currency, offer.Price, stopsLabel(offer), offer.ValidatingCarrier)
}

// stopsLabel renders the itinerary's total stop count.
func stopsLabel(offer domain.Offer) string {
	switch stops := offer.TotalStops(); stops {
	case 0:
		return "nonstop"
	case 1:
		return "1 stop"
	default:
		return fmt.Sprintf("%d stops", stops)
	}
}
