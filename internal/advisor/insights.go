package advisor

import (
	"fmt"
	"strings"

	"carbon-tracker/internal/emission"
	"carbon-tracker/internal/models"
	"carbon-tracker/internal/stats"
)

const noActivitiesText = "No activities logged yet. Start tracking your daily activities to see detailed insights about your carbon footprint patterns."

var typeIcons = map[string]string{
	emission.TypeTransportation: "🚗",
	emission.TypeElectricity:    "⚡",
	emission.TypeFood:           "🍽️",
	emission.TypeWaste:          "🗑️",
}

func narrateInsights(activities []models.Activity, s stats.Stats, recent int) string {
	if len(activities) == 0 {
		return noActivitiesText
	}

	lines := []string{
		"Your Carbon Footprint Analysis\n",
		fmt.Sprintf("Total Emissions: %s kg CO2 across %d logged activities.\n", toFixed(s.TotalFootprint, 2), len(activities)),
	}

	ranked := stats.RankTypes(s.ByType)
	if len(ranked) > 0 {
		top := ranked[0]
		lines = append(lines,
			fmt.Sprintf("Primary Emission Source: %s (%s%% of total emissions)", capitalize(top.Type), percent(top.Footprint, s.TotalFootprint)),
			"This is your biggest area for potential improvement.\n",
		)
	}

	lines = append(lines, "Breakdown by Category:")
	for _, tt := range ranked {
		icon, ok := typeIcons[tt.Type]
		if !ok {
			icon = "💧"
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s kg CO2 (%s%%)", icon, capitalize(tt.Type), toFixed(tt.Footprint, 2), percent(tt.Footprint, s.TotalFootprint)))
	}

	lines = append(lines, fmt.Sprintf("\nRecent Activity Average: %s kg CO2 per activity", toFixed(stats.RecentAverage(activities, recent), 2)))
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
