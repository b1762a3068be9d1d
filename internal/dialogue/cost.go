package dialogue

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/voyago/voyago/internal/domain"
)

var (
	costTableRowRe = regexp.MustCompile(`\|\s*([^|]+?)\s*\|\s*\*{0,2}\$?([\d,]+(?:\.\d+)?)\*{0,2}\s*\|`)
	costListRowRe  = regexp.MustCompile(`(?m)^\s*[-*•]\s+([^:$\n]+?):\s+\$?([\d,]+(?:\.\d+)?)`)
	costTotalRe    = regexp.MustCompile(`(?i)total(?:\s+estimated)?\s+cost:?\s+\$?([\d,]+(?:\.\d+)?)`)
)

var costDescriptions = map[string]string{
	"flight":        "Round-trip airfare between origin and destination cities.",
	"hotel":         "Accommodation costs for the entire stay.",
	"lodging":       "Accommodation costs for the entire stay.",
	"accommodation": "Accommodation costs for the entire stay.",
	"food":          "Estimated food and dining expenses for the trip duration.",
	"meal":          "Estimated food and dining expenses for the trip duration.",
	"dining":        "Estimated food and dining expenses for the trip duration.",
	"activit":       "Costs for sightseeing, tours, attractions, and entertainment.",
	"attraction":    "Costs for sightseeing, tours, and entertainment venues.",
	"entertainment": "Costs for attractions, shows, and entertainment activities.",
	"transport":     "Local transportation expenses including taxis and public transit.",
	"car rental":    "Vehicle rental costs for the duration of the trip.",
	"shopping":      "Estimated expenses for souvenirs and personal shopping.",
	"souvenir":      "Estimated expenses for mementos and gifts.",
	"miscellaneous": "Additional expenses not covered in other categories.",
}

// parseCostBreakdown extracts the budget section the model tends to emit in
// itinerary text: a markdown table, a bullet list, or key-value lines.
// Returns nil when the text carries no recognizable breakdown.
func parseCostBreakdown(itinerary string) *domain.CostBreakdown {
	lower := strings.ToLower(itinerary)
	if !strings.Contains(lower, "budget breakdown") && !strings.Contains(lower, "estimated cost") {
		return nil
	}

	items, total := parseCostRows(costTableRowRe.FindAllStringSubmatch(itinerary, -1))
	if len(items) == 0 {
		items, total = parseCostRows(costListRowRe.FindAllStringSubmatch(itinerary, -1))
	}
	if len(items) == 0 {
		return nil
	}

	if m := costTotalRe.FindStringSubmatch(itinerary); m != nil {
		if v, err := parseAmount(m[1]); err == nil {
			total = v
		}
	}

	itemsTotal := 0.0
	for _, item := range items {
		itemsTotal += item.Amount
	}
	// Trust the explicit total when present; fall back to the item sum.
	if total == 0 {
		total = itemsTotal
	} else if math.Abs(itemsTotal-total) > 1.0 {
		slog.Debug("Cost breakdown total does not match item sum",
			"total", total, "items_total", itemsTotal)
	}

	return &domain.CostBreakdown{
		Currency: "USD",
		Total:    total,
		Items:    items,
	}
}

// parseCostRows converts regex matches into cost items, skipping header and
// total rows. The total row's amount is returned separately.
func parseCostRows(matches [][]string) ([]domain.CostItem, float64) {
	var items []domain.CostItem
	var total float64

	for _, m := range matches {
		category := strings.Trim(strings.TrimSpace(m[1]), "*")
		lower := strings.ToLower(category)
		if lower == "item" || lower == "category" || strings.Contains(lower, "---") ||
			strings.Contains(lower, "estimated cost") {
			continue
		}

		amount, err := parseAmount(m[2])
		if err != nil {
			continue
		}
		if strings.Contains(lower, "total") {
			total = amount
			continue
		}

		items = append(items, domain.CostItem{
			Category:    category,
			Amount:      amount,
			Description: describeCostCategory(lower),
		})
	}
	return items, total
}

func describeCostCategory(category string) string {
	for key, desc := range costDescriptions {
		if strings.Contains(category, key) {
			return desc
		}
	}
	return "Estimated costs for " + category + "."
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
}
