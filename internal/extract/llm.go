package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/voyago/voyago/internal/domain"
)

const extractionSystemPrompt = `You are a precise travel information extraction system.
Your ONLY purpose is to extract specific travel details from the user's message and return them as JSON.
Be extremely accurate with dates, ordinals and traveler counts.
For vague time references like "next week" or "next month", set the date fields to null and set "date_reference" instead.
NEVER invent information that is not present in the message.`

// llmExtraction mirrors the JSON object the model is asked to produce.
type llmExtraction struct {
	Origin              string   `json:"origin"`
	Destination         string   `json:"destination"`
	StartDate           string   `json:"start_date"`
	EndDate             string   `json:"end_date"`
	Travelers           int      `json:"travelers"`
	Budget              int      `json:"budget"`
	ActivityPreferences string   `json:"activity_preferences"`
	HotelPreferences    string   `json:"hotel_preferences"`
	DateReference       string   `json:"date_reference"`
	Corrections         []string `json:"corrections"`
}

// LLMExtractor extracts trip details with a JSON-mode chat completion. On
// any failure it degrades to the fallback extractor (or an empty record)
// rather than propagating an error into the dialogue manager.
type LLMExtractor struct {
	client   openai.Client
	model    string
	timeout  time.Duration
	fallback Extractor
}

// NewLLMExtractor creates an LLM-backed extractor with an optional fallback.
func NewLLMExtractor(apiKey, model string, timeout time.Duration, fallback Extractor) *LLMExtractor {
	return &LLMExtractor{
		client:   openai.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		timeout:  timeout,
		fallback: fallback,
	}
}

// Extract calls the model and parses its JSON output. The known details are
// given as context so corrections are recognized; they are never copied into
// the result.
func (e *LLMExtractor) Extract(ctx context.Context, text string, known domain.TripDetails) (ExtractedDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionSystemPrompt),
			openai.UserMessage(e.buildPrompt(text, known)),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(500),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return e.degrade(ctx, text, known, fmt.Errorf("extraction completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return e.degrade(ctx, text, known, fmt.Errorf("extraction completion: empty choices"))
	}

	var raw llmExtraction
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &raw); err != nil {
		return e.degrade(ctx, text, known, fmt.Errorf("parse extraction output: %w", err))
	}

	return e.shape(raw), nil
}

// degrade logs the failure and falls back; extraction failures never reach
// the dialogue manager as errors.
func (e *LLMExtractor) degrade(ctx context.Context, text string, known domain.TripDetails, cause error) (ExtractedDetails, error) {
	slog.Warn("LLM extraction failed, degrading", "error", cause)
	if e.fallback != nil {
		return e.fallback.Extract(ctx, text, known)
	}
	return ExtractedDetails{}, nil
}

func (e *LLMExtractor) buildPrompt(text string, known domain.TripDetails) string {
	var sb strings.Builder

	if !known.Equal(domain.TripDetails{}) {
		sb.WriteString("IMPORTANT CONTEXT - the user has previously provided these details:\n")
		sb.WriteString(known.Summary())
		sb.WriteString("\nIf the current message MODIFIES any of them, extract the NEW value and list the field name in \"corrections\".\n\n")
	}

	today := time.Now().UTC().Format("2006-01-02")
	fmt.Fprintf(&sb, `Today's date is %s. Extract ONLY the following from the user's message as JSON:
- origin: departure city, full proper name
- destination: city the user wants to visit, full proper name
- start_date / end_date: YYYY-MM-DD; pay extreme attention to ordinals (1st -> 01); for "X days/nights" compute end_date = start_date + (X-1) days; null for vague references
- travelers: TOTAL number of people including the user ("with 2 friends" -> 3, "3 of us" -> 3)
- budget: USD amount as integer; average of a range
- activity_preferences: activities and interests, comma separated
- hotel_preferences: accommodation tier or style if mentioned
- date_reference: "next_week", "next_month", "this_weekend" when the message uses such vague terms, else null
- corrections: array of field names the user explicitly changed from the context above, else []

For each field with no relevant information in THIS message, use null (0 for missing numbers).

User message: %s`, today, text)

	return sb.String()
}

// shape converts the model's JSON into ExtractedDetails with per-field
// confidence. Values derived from vague references are graded inferred.
func (e *LLMExtractor) shape(raw llmExtraction) ExtractedDetails {
	out := ExtractedDetails{
		Origin:              strings.TrimSpace(raw.Origin),
		Destination:         strings.TrimSpace(raw.Destination),
		StartDate:           validDate(raw.StartDate),
		EndDate:             validDate(raw.EndDate),
		Travelers:           raw.Travelers,
		Budget:              raw.Budget,
		ActivityPreferences: strings.TrimSpace(raw.ActivityPreferences),
		HotelPreferences:    strings.TrimSpace(raw.HotelPreferences),
	}

	dateConfidence := ConfidenceExplicit
	if raw.DateReference != "" {
		dateConfidence = ConfidenceInferred
	}
	grade := map[domain.Field]Confidence{
		domain.FieldOrigin:      ConfidenceExplicit,
		domain.FieldDestination: ConfidenceExplicit,
		domain.FieldStartDate:   dateConfidence,
		domain.FieldEndDate:     dateConfidence,
		domain.FieldTravelers:   ConfidenceExplicit,
		domain.FieldBudget:      ConfidenceExplicit,
		domain.FieldActivities:  ConfidenceExplicit,
		domain.FieldHotels:      ConfidenceExplicit,
	}
	for f, c := range grade {
		if out.Has(f) {
			out.markConfidence(f, c)
		}
	}

	for _, name := range raw.Corrections {
		f := domain.Field(strings.TrimSpace(name))
		if out.Has(f) {
			out.Corrections = append(out.Corrections, f)
		}
	}

	return out
}

// validDate keeps only well-formed ISO dates; anything else is absent.
func validDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return ""
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}

var _ Extractor = (*LLMExtractor)(nil)
