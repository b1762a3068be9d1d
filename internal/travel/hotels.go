package travel

import (
	"context"
	"fmt"
	"net/url"

	"github.com/samber/lo"
)

type serpHotelsResponse struct {
	Properties []serpHotelProperty `json:"properties"`
}

type serpHotelProperty struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	OverallRating float64       `json:"overall_rating"`
	RatePerNight  serpHotelRate `json:"rate_per_night"`
	NearbyPlaces  []struct {
		Name string `json:"name"`
	} `json:"nearby_places"`
}

type serpHotelRate struct {
	ExtractedLowest float64 `json:"extracted_lowest"`
}

// Hotels queries SerpAPI's Google Hotels engine. A budget caps the nightly
// rate filter; preferences are folded into the search query.
func (c *Client) Hotels(ctx context.Context, q HotelQuery) ([]Hotel, error) {
	key := fmt.Sprintf("hotels|%s|%s|%s|%d|%d|%s", q.Destination, q.CheckIn, q.CheckOut, q.Travelers, q.Budget, q.Preferences)
	return cached(c, key, func() ([]Hotel, error) {
		query := q.Destination
		if q.Preferences != "" {
			query = q.Preferences + " hotels " + q.Destination
		}

		params := url.Values{}
		params.Set("engine", "google_hotels")
		params.Set("q", query)
		params.Set("check_in_date", q.CheckIn)
		params.Set("check_out_date", q.CheckOut)
		if q.Travelers > 0 {
			params.Set("adults", fmt.Sprintf("%d", q.Travelers))
		}
		params.Set("currency", "USD")
		params.Set("api_key", c.serpAPIKey)

		var resp serpHotelsResponse
		if err := c.getJSON(ctx, c.serpBaseURL, params, &resp); err != nil {
			return nil, newProviderError(ProviderHotels, err)
		}
		if len(resp.Properties) == 0 {
			return nil, newProviderError(ProviderHotels, fmt.Errorf("no hotels found in %s", q.Destination))
		}

		properties := resp.Properties
		if q.Budget > 0 {
			// Rough nightly cap: a third of total budget spread over nights
			// is too trip-specific to compute here, so filter only blatantly
			// over-budget rates.
			withinBudget := lo.Filter(properties, func(p serpHotelProperty, _ int) bool {
				return p.RatePerNight.ExtractedLowest == 0 || p.RatePerNight.ExtractedLowest <= float64(q.Budget)
			})
			if len(withinBudget) > 0 {
				properties = withinBudget
			}
		}
		if len(properties) > maxResultsPerCall {
			properties = properties[:maxResultsPerCall]
		}

		return lo.Map(properties, func(p serpHotelProperty, _ int) Hotel {
			return Hotel{
				Name:          p.Name,
				Rating:        p.OverallRating,
				PricePerNight: p.RatePerNight.ExtractedLowest,
				Description:   p.Description,
			}
		}), nil
	})
}
