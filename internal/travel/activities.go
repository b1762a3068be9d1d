package travel

import (
	"context"
	"fmt"
	"net/url"

	"github.com/samber/lo"
)

type serpLocalResponse struct {
	LocalResults []serpLocalResult `json:"local_results"`
}

type serpLocalResult struct {
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	Price       string  `json:"price"`
}

// Activities queries SerpAPI's Google Local engine for things to do,
// biased by the user's stated preferences.
func (c *Client) Activities(ctx context.Context, q ActivityQuery) ([]Activity, error) {
	key := fmt.Sprintf("activities|%s|%s", q.Destination, q.Preferences)
	return cached(c, key, func() ([]Activity, error) {
		query := "things to do in " + q.Destination
		if q.Preferences != "" {
			query = q.Preferences + " in " + q.Destination
		}

		params := url.Values{}
		params.Set("engine", "google_local")
		params.Set("q", query)
		params.Set("api_key", c.serpAPIKey)

		var resp serpLocalResponse
		if err := c.getJSON(ctx, c.serpBaseURL, params, &resp); err != nil {
			return nil, newProviderError(ProviderActivities, err)
		}
		if len(resp.LocalResults) == 0 {
			return nil, newProviderError(ProviderActivities, fmt.Errorf("no activities found in %s", q.Destination))
		}

		results := resp.LocalResults
		if len(results) > maxResultsPerCall {
			results = results[:maxResultsPerCall]
		}

		return lo.Map(results, func(r serpLocalResult, _ int) Activity {
			return Activity{
				Name:        r.Title,
				Category:    r.Type,
				Description: r.Description,
				Rating:      r.Rating,
				Price:       r.Price,
			}
		}), nil
	})
}
