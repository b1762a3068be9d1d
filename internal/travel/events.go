package travel

import (
	"context"
	"fmt"
	"net/url"

	"github.com/samber/lo"
)

type serpEventsResponse struct {
	EventsResults []serpEventResult `json:"events_results"`
}

type serpEventResult struct {
	Title string `json:"title"`
	Date  struct {
		When string `json:"when"`
	} `json:"date"`
	Address []string `json:"address"`
	Link    string   `json:"link"`
	Venue   struct {
		Name string `json:"name"`
	} `json:"venue"`
}

// Events queries SerpAPI's Google Events engine for what's on at the
// destination.
func (c *Client) Events(ctx context.Context, q EventQuery) ([]Event, error) {
	key := "events|" + q.Destination
	return cached(c, key, func() ([]Event, error) {
		params := url.Values{}
		params.Set("engine", "google_events")
		params.Set("q", "events in "+q.Destination)
		params.Set("api_key", c.serpAPIKey)

		var resp serpEventsResponse
		if err := c.getJSON(ctx, c.serpBaseURL, params, &resp); err != nil {
			return nil, newProviderError(ProviderEvents, err)
		}
		if len(resp.EventsResults) == 0 {
			return nil, newProviderError(ProviderEvents, fmt.Errorf("no events found in %s", q.Destination))
		}

		results := resp.EventsResults
		if len(results) > maxResultsPerCall {
			results = results[:maxResultsPerCall]
		}

		return lo.Map(results, func(r serpEventResult, _ int) Event {
			e := Event{
				Title: r.Title,
				Date:  r.Date.When,
				Venue: r.Venue.Name,
				Link:  r.Link,
			}
			if len(r.Address) > 0 {
				e.Address = r.Address[0]
			}
			return e
		}), nil
	})
}
