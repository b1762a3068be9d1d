package dialogue

import (
	"fmt"
	"strings"

	"github.com/voyago/voyago/internal/domain"
)

const systemPrompt = `You are a helpful travel planning assistant.
Help users plan trips by gathering: origin (REQUIRED), destination (REQUIRED),
start date (REQUIRED), end date (REQUIRED), number of travelers (REQUIRED),
budget (OPTIONAL), activity preferences (OPTIONAL), hotel preferences (OPTIONAL).

WORKFLOW:
1. COLLECTION: review the trip details context. DO NOT ask for information
   that has already been provided. Collect missing REQUIRED fields first,
   then try for the optional ones.
2. CONFIRMATION: once every required field is present, summarize the details
   and ask the user to confirm.
3. PLANNING: after confirmation the itinerary is generated for the user.

CRITICAL: always check what you already know before asking a question.`

// contextMessage tells the model what is known and what is still missing,
// so it never re-asks for supplied information.
func contextMessage(trip domain.TripDetails) string {
	var sb strings.Builder
	sb.WriteString("Current trip information: ")
	sb.WriteString(trip.Summary())
	sb.WriteString("\n")

	missingRequired := trip.MissingRequired()
	missingOptional := trip.MissingOptional()

	if len(missingRequired) > 0 {
		sb.WriteString("\nMissing REQUIRED fields (must collect): ")
		sb.WriteString(joinFields(missingRequired))
	}
	if len(missingOptional) > 0 {
		sb.WriteString("\nMissing optional fields (collect opportunistically): ")
		sb.WriteString(joinFields(missingOptional))
	}
	if len(missingRequired) == 0 {
		sb.WriteString("\nAll required fields are collected. Summarize them and ask the user to confirm.")
	}
	return sb.String()
}

func joinFields(fields []domain.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ReplaceAll(string(f), "_", " ")
	}
	return strings.Join(names, ", ")
}

// buildItineraryPrompt instructs the model to compose the day plan from the
// provider results, flagging sections that could not be fetched.
func buildItineraryPrompt(trip domain.TripDetails, sections []domain.ItinerarySection) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a travel planning assistant. Create a day-by-day itinerary for this trip:
%s

Use ONLY the data below. Do not invent flights, hotels, activities, events or prices.
Finish with a "Budget Breakdown" section as a markdown table of categories and
USD amounts ending in a Total row.

`, trip.Summary())

	for _, s := range sections {
		fmt.Fprintf(&sb, "### %s\n", sectionHeading(s.Provider))
		if s.Missing {
			fmt.Fprintf(&sb, "DATA UNAVAILABLE. Tell the user %s could not be fetched right now and to ask again later.\n\n", s.Provider)
			continue
		}
		for _, r := range s.Results {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// buildFollowUpPrompt answers a question from the cached itinerary without
// any new provider calls.
func buildFollowUpPrompt(trip domain.TripDetails, itinerary *domain.Itinerary, question string) string {
	return fmt.Sprintf(`You are a travel planning assistant. You previously generated an itinerary for:
%s

The itinerary:

%s

The user is now asking: %q

Answer their question specifically from the itinerary above, keeping the same
level of detail. If they ask for a day-by-day breakdown, derive it from the
itinerary contents.`, trip.Summary(), itinerary.Text, question)
}
