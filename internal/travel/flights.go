package travel

import (
	"context"
	"fmt"
	"net/url"

	"github.com/samber/lo"
)

type serpFlightsResponse struct {
	BestFlights  []serpFlightOption `json:"best_flights"`
	OtherFlights []serpFlightOption `json:"other_flights"`
}

type serpFlightOption struct {
	Flights       []serpFlightLeg `json:"flights"`
	TotalDuration int             `json:"total_duration"`
	Price         float64         `json:"price"`
}

type serpFlightLeg struct {
	DepartureAirport serpAirport `json:"departure_airport"`
	ArrivalAirport   serpAirport `json:"arrival_airport"`
	Airline          string      `json:"airline"`
}

type serpAirport struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

// Flights queries SerpAPI's Google Flights engine.
func (c *Client) Flights(ctx context.Context, q FlightQuery) ([]Flight, error) {
	key := fmt.Sprintf("flights|%s|%s|%s|%s|%d", q.Origin, q.Destination, q.StartDate, q.EndDate, q.Travelers)
	return cached(c, key, func() ([]Flight, error) {
		params := url.Values{}
		params.Set("engine", "google_flights")
		params.Set("departure_id", q.Origin)
		params.Set("arrival_id", q.Destination)
		params.Set("outbound_date", q.StartDate)
		params.Set("return_date", q.EndDate)
		if q.Travelers > 0 {
			params.Set("adults", fmt.Sprintf("%d", q.Travelers))
		}
		params.Set("currency", "USD")
		params.Set("api_key", c.serpAPIKey)

		var resp serpFlightsResponse
		if err := c.getJSON(ctx, c.serpBaseURL, params, &resp); err != nil {
			return nil, newProviderError(ProviderFlights, err)
		}

		options := append(resp.BestFlights, resp.OtherFlights...)
		if len(options) == 0 {
			return nil, newProviderError(ProviderFlights, fmt.Errorf("no flights found for %s to %s", q.Origin, q.Destination))
		}
		if len(options) > maxResultsPerCall {
			options = options[:maxResultsPerCall]
		}

		return lo.Map(options, func(opt serpFlightOption, _ int) Flight {
			f := Flight{
				Price:    opt.Price,
				Duration: fmt.Sprintf("%dh %dm", opt.TotalDuration/60, opt.TotalDuration%60),
				Stops:    len(opt.Flights) - 1,
			}
			if len(opt.Flights) > 0 {
				first := opt.Flights[0]
				last := opt.Flights[len(opt.Flights)-1]
				f.Airline = first.Airline
				f.Departure = fmt.Sprintf("%s (%s) at %s", first.DepartureAirport.Name, first.DepartureAirport.ID, first.DepartureAirport.Time)
				f.Arrival = fmt.Sprintf("%s (%s) at %s", last.ArrivalAirport.Name, last.ArrivalAirport.ID, last.ArrivalAirport.Time)
			}
			return f
		}), nil
	})
}
