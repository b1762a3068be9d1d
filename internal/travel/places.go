package travel

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
)

type placesResponse struct {
	Status  string        `json:"status"`
	Results []placeResult `json:"results"`
}

type placeResult struct {
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           float64  `json:"rating"`
	Types            []string `json:"types"`
}

// Places queries the Google Places text search API. The kind steers the
// query: general points of interest, top attractions, or day trips from an
// origin.
func (c *Client) Places(ctx context.Context, q PlaceQuery) ([]Place, error) {
	key := fmt.Sprintf("places|%s|%s", q.Kind, q.Location)
	return cached(c, key, func() ([]Place, error) {
		var query string
		switch q.Kind {
		case PlaceKindAttractions:
			query = "top tourist attractions in " + q.Location
		case PlaceKindDayTrips:
			query = "day trip destinations near " + q.Location
		default:
			query = "points of interest in " + q.Location
		}

		params := url.Values{}
		params.Set("query", query)
		params.Set("key", c.placesAPIKey)

		var resp placesResponse
		if err := c.getJSON(ctx, c.placesBaseURL, params, &resp); err != nil {
			return nil, newProviderError(ProviderPlaces, err)
		}
		if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
			return nil, newProviderError(ProviderPlaces, fmt.Errorf("places api status %s", resp.Status))
		}
		if len(resp.Results) == 0 {
			return nil, newProviderError(ProviderPlaces, fmt.Errorf("no places found for %s", q.Location))
		}

		results := resp.Results
		if len(results) > maxResultsPerCall {
			results = results[:maxResultsPerCall]
		}

		return lo.Map(results, func(r placeResult, _ int) Place {
			return Place{
				Name:        r.Name,
				Address:     r.FormattedAddress,
				Rating:      r.Rating,
				Description: strings.Join(r.Types, ", "),
			}
		}), nil
	})
}
