package extract

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/voyago/voyago/internal/domain"
)

// RegexExtractor is the deterministic fallback used when the LLM extractor
// fails or is unavailable. It is less accurate but never errors.
type RegexExtractor struct {
	// now is injectable so tests can pin relative-date resolution.
	now func() time.Time
}

// NewRegexExtractor creates a regex-based extractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{now: time.Now}
}

var (
	originRe      = regexp.MustCompile(`(?:from|leaving|departing|out of)\s+([a-z][a-z\s]*?)(?:\s+(?:to|on|in|for|with|,)|[,.!?]|$)`)
	destinationRe = regexp.MustCompile(`(?:to|visit|visiting|going to|travel to|trip to|in)\s+([a-z][a-z\s]*?)(?:\s+(?:from|on|in|for|with|,)|[,.!?]|$)`)

	travelersRe = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s+(?:people|travelers|travellers|persons|adults|of us)`),
		regexp.MustCompile(`(?:we are|we're)\s+(?:a group of|a family of)?\s*(\d+)`),
		regexp.MustCompile(`(?:total of|group of|party of|family of)\s+(\d+)`),
		regexp.MustCompile(`make it\s+(\d+)`),
	}
	companionsRe = regexp.MustCompile(`with\s+(\d+)\s+(?:other|more)?\s*(?:people|friends|family|travelers|travellers)`)

	budgetRe = regexp.MustCompile(`(?:budget\s*(?:of|is|:)?\s*|\$)\s*\$?(\d+(?:,\d{3})*)`)

	preferencesRe = regexp.MustCompile(`(?:interested in|looking for|want to do|we like|i like|prefer)\s+([^.?!]+)`)
	hotelPrefRe   = regexp.MustCompile(`(?:hotel|stay|accommodation|lodging)[^.?!]*?(luxury|boutique|budget|mid-range|hostel|resort|5-star|4-star|3-star)`)

	isoDateRe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	monthDayRe  = regexp.MustCompile(`(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:\s*[-–]\s*(\d{1,2})(?:st|nd|rd|th)?)?(?:,?\s+(\d{4}))?`)
	durationRe  = regexp.MustCompile(`for\s+(\d+)\s+(?:days|nights)`)
	correctionRe = regexp.MustCompile(`\b(actually|instead|rather|change|correction|not\s+\d|make (?:it|that)|i meant|scratch that)\b`)
)

var monthNumbers = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Extract parses trip details with regular expressions. It never returns an
// error; what the patterns cannot find simply stays absent.
func (r *RegexExtractor) Extract(_ context.Context, text string, _ domain.TripDetails) (ExtractedDetails, error) {
	msg := strings.ToLower(strings.TrimSpace(text))
	var out ExtractedDetails

	if m := originRe.FindStringSubmatch(msg); m != nil {
		out.Origin = titleCase(m[1])
		out.markConfidence(domain.FieldOrigin, ConfidenceExplicit)
	}
	if m := destinationRe.FindStringSubmatch(msg); m != nil {
		candidate := titleCase(m[1])
		// "from Boston to Paris" matches both patterns; keep them apart.
		if candidate != out.Origin {
			out.Destination = candidate
			out.markConfidence(domain.FieldDestination, ConfidenceExplicit)
		}
	}

	r.extractDates(msg, &out)
	r.extractTravelers(msg, &out)

	if m := budgetRe.FindStringSubmatch(msg); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil && n > 0 {
			out.Budget = n
			out.markConfidence(domain.FieldBudget, ConfidenceExplicit)
		}
	}

	if m := hotelPrefRe.FindStringSubmatch(msg); m != nil {
		out.HotelPreferences = m[1]
		out.markConfidence(domain.FieldHotels, ConfidenceExplicit)
	}
	if m := preferencesRe.FindStringSubmatch(msg); m != nil {
		out.ActivityPreferences = strings.TrimSpace(m[1])
		out.markConfidence(domain.FieldActivities, ConfidenceExplicit)
	}

	if correctionRe.MatchString(msg) {
		for _, f := range append(append([]domain.Field{}, domain.RequiredFields...), domain.OptionalFields...) {
			if out.Has(f) {
				out.Corrections = append(out.Corrections, f)
			}
		}
	}

	return out, nil
}

func (r *RegexExtractor) extractTravelers(msg string, out *ExtractedDetails) {
	// "with N friends" means N companions plus the speaker.
	if m := companionsRe.FindStringSubmatch(msg); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			out.Travelers = n + 1
			out.markConfidence(domain.FieldTravelers, ConfidenceInferred)
			return
		}
	}
	for _, re := range travelersRe {
		if m := re.FindStringSubmatch(msg); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				out.Travelers = n
				out.markConfidence(domain.FieldTravelers, ConfidenceExplicit)
				return
			}
		}
	}
}

func (r *RegexExtractor) extractDates(msg string, out *ExtractedDetails) {
	var dates []time.Time

	for _, m := range isoDateRe.FindAllString(msg, -1) {
		if d, err := time.Parse("2006-01-02", m); err == nil {
			dates = append(dates, d)
		}
	}

	if len(dates) == 0 {
		if m := monthDayRe.FindStringSubmatch(msg); m != nil {
			month := monthNumbers[m[1]]
			day, _ := strconv.Atoi(m[2])
			year := r.resolveYear(month, day, m[4])
			start := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			dates = append(dates, start)
			if m[3] != "" {
				if endDay, err := strconv.Atoi(m[3]); err == nil {
					end := time.Date(year, month, endDay, 0, 0, 0, 0, time.UTC)
					if end.Before(start) {
						end = end.AddDate(0, 1, 0)
					}
					dates = append(dates, end)
				}
			}
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	if len(dates) > 0 {
		out.StartDate = dates[0].Format("2006-01-02")
		out.markConfidence(domain.FieldStartDate, ConfidenceExplicit)
	}
	if len(dates) > 1 {
		out.EndDate = dates[len(dates)-1].Format("2006-01-02")
		out.markConfidence(domain.FieldEndDate, ConfidenceExplicit)
	}

	// Duration fills in a missing end date.
	if out.StartDate != "" && out.EndDate == "" {
		if m := durationRe.FindStringSubmatch(msg); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				start, _ := time.Parse("2006-01-02", out.StartDate)
				out.EndDate = start.AddDate(0, 0, n-1).Format("2006-01-02")
				out.markConfidence(domain.FieldEndDate, ConfidenceInferred)
			}
		}
	}
}

// resolveYear picks an explicit year if given, otherwise the next occurrence
// of the month/day from now.
func (r *RegexExtractor) resolveYear(month time.Month, day int, explicit string) int {
	if explicit != "" {
		if y, err := strconv.Atoi(explicit); err == nil {
			return y
		}
	}
	now := r.now()
	candidate := time.Date(now.Year(), month, day, 23, 59, 0, 0, time.UTC)
	if candidate.Before(now) {
		return now.Year() + 1
	}
	return now.Year()
}

func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var _ Extractor = (*RegexExtractor)(nil)
