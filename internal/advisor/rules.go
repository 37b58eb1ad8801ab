package advisor

import (
	"fmt"
	"strings"

	"carbon-tracker/internal/emission"
	"carbon-tracker/internal/models"
	"carbon-tracker/internal/stats"
)

const onboardingText = `Welcome to Carbon Tracker! You haven't logged any activities yet.

Start tracking your daily activities to receive personalized recommendations:

1. Log your transportation methods (car, bus, train, flights)
2. Track your electricity consumption
3. Record your food choices and meals
4. Monitor your waste disposal habits
5. Keep track of water usage

Once you have some data, come back here for tailored suggestions to reduce your environmental impact!`

const fallbackText = `Here are some helpful tips to reduce your carbon footprint:

1. Use public transportation, bike, or walk instead of driving alone
2. Reduce energy consumption by turning off lights and unplugging devices
3. Choose plant-based meals more often to lower food emissions
4. Recycle and compost to minimize waste sent to landfills
5. Use water efficiently and fix any leaks in your home

Visit the Statistics page to see your detailed carbon footprint breakdown!`

const rulesHeader = "Based on your activity data, here are personalized recommendations to reduce your carbon footprint:\n"

// ruleRecommendations ranks types by footprint and emits one numbered tip per type,
// followed by a remark on the overall magnitude.
func ruleRecommendations(activities []models.Activity, s stats.Stats) string {
	parts := []string{rulesHeader}

	for i, tt := range stats.RankTypes(s.ByType) {
		pct := percent(tt.Footprint, s.TotalFootprint)
		top, _ := stats.TopCategory(activities, tt.Type)
		if tip := typeTip(tt.Type, top, pct); tip != "" {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, tip))
		}
	}

	parts = append(parts, closingRemark(s.TotalFootprint))
	return strings.Join(parts, "\n\n")
}

func typeTip(activityType, topCategory, pct string) string {
	switch activityType {
	case emission.TypeTransportation:
		switch topCategory {
		case "car":
			return fmt.Sprintf("Your car usage accounts for %s%% of emissions. Consider carpooling, using public transit, or switching to an electric vehicle for shorter commutes.", pct)
		case "flight":
			return fmt.Sprintf("Air travel makes up %s%% of your footprint. Consider video calls instead of business trips, or choose trains for shorter distances when possible.", pct)
		default:
			return fmt.Sprintf("Transportation contributes %s%% to your emissions. Walking or cycling for trips under 2km can make a significant difference.", pct)
		}
	case emission.TypeElectricity:
		return fmt.Sprintf("Electricity usage represents %s%% of your carbon footprint. Switch to LED bulbs, unplug devices when not in use, and consider renewable energy sources.", pct)
	case emission.TypeFood:
		if topCategory == "meat" {
			return fmt.Sprintf("Meat consumption accounts for %s%% of your emissions. Try incorporating more plant-based meals or choosing chicken over beef when you do eat meat.", pct)
		}
		return fmt.Sprintf("Food choices contribute %s%% to your footprint. Buying local and seasonal produce can reduce food transportation emissions.", pct)
	case emission.TypeWaste:
		return fmt.Sprintf("Waste disposal accounts for %s%% of emissions. Focus on reducing single-use plastics and composting organic waste to minimize landfill contributions.", pct)
	case emission.TypeWater:
		return fmt.Sprintf("Water usage contributes %s%% to your footprint. Taking shorter showers and fixing leaky faucets can help reduce this significantly.", pct)
	}
	return ""
}

func closingRemark(total float64) string {
	switch {
	case total > 100:
		return fmt.Sprintf("\nYour total footprint of %s kg CO2 is above average. Small daily changes can lead to meaningful reductions over time.", toFixed(total, 2))
	case total > 50:
		return fmt.Sprintf("\nYour footprint of %s kg CO2 is moderate. Keep up the good work and focus on your highest emission areas.", toFixed(total, 2))
	default:
		return fmt.Sprintf("\nGreat job! Your footprint of %s kg CO2 is relatively low. Continue your eco-friendly habits!", toFixed(total, 2))
	}
}

// percent formats part/total with one decimal; a zero total reads as 0.0.
func percent(part, total float64) string {
	if total <= 0 {
		return "0.0"
	}
	return toFixed(part/total*100, 1)
}
