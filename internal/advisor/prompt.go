package advisor

import (
	"fmt"
	"strings"

	"carbon-tracker/internal/models"
)

// buildPrompt embeds the total footprint of activities and at most limit of the newest entries.
func buildPrompt(activities []models.Activity, limit int) string {
	var total float64
	for i := range activities {
		total += activities[i].CarbonFootprint
	}

	recent := activities
	if len(recent) > limit {
		recent = recent[:limit]
	}

	var sb strings.Builder
	sb.WriteString("You are an environmental sustainability advisor.\n")
	fmt.Fprintf(&sb, "A user has logged %d recent activities with a total carbon footprint of %s kg CO2.\n", len(activities), toFixed(total, 2))
	sb.WriteString("Their most recent activities are:\n")
	for i := range recent {
		a := &recent[i]
		fmt.Fprintf(&sb, "- %s: %s (%s), %s %s, %s kg CO2\n",
			a.Date.UTC().Format("2006-01-02"), a.Type, a.Category, toFixed(a.Amount, 2), a.Unit, toFixed(a.CarbonFootprint, 2))
	}
	sb.WriteString("\nGive 3 to 5 specific, actionable recommendations to reduce their carbon footprint, ")
	sb.WriteString("focusing on the activities with the highest emissions. Keep the answer concise and encouraging.")
	return sb.String()
}
