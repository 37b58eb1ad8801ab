// Package emission holds the emission factor table and the footprint calculation built on it.
package emission

import "sort"

// Activity types accepted by the tracker.
const (
	TypeTransportation = "transportation"
	TypeElectricity    = "electricity"
	TypeFood           = "food"
	TypeWaste          = "waste"
	TypeWater          = "water"
)

// factors maps type -> category -> kg CO2 per declared unit of that category.
var factors = map[string]map[string]float64{
	TypeTransportation: {
		"car":    0.21,
		"bus":    0.089,
		"train":  0.041,
		"flight": 0.255,
		"bike":   0,
	},
	TypeElectricity: {
		"kwh": 0.92,
	},
	TypeFood: {
		"meat":       6.61,
		"dairy":      1.35,
		"vegetables": 0.43,
		"grains":     0.76,
	},
	TypeWaste: {
		"landfill":  0.57,
		"recycling": 0.21,
	},
	TypeWater: {
		"liter": 0.0003,
	},
}

// units lists the units offered for each type; the first one is the default.
var units = map[string][]string{
	TypeTransportation: {"km", "miles"},
	TypeElectricity:    {"kwh"},
	TypeFood:           {"kg", "servings"},
	TypeWaste:          {"kg"},
	TypeWater:          {"liter", "gallons"},
}

// typeOrder is the display order used by Types.
var typeOrder = []string{TypeTransportation, TypeElectricity, TypeFood, TypeWaste, TypeWater}

// Lookup returns the factor for (activityType, category). ok is false when the pair is unknown.
func Lookup(activityType, category string) (factor float64, ok bool) {
	sub, ok := factors[activityType]
	if !ok {
		return 0, false
	}
	factor, ok = sub[category]
	return factor, ok
}

// Types returns the supported activity types.
func Types() []string {
	out := make([]string, len(typeOrder))
	copy(out, typeOrder)
	return out
}

// Categories returns the known categories of a type, sorted by name.
func Categories(activityType string) []string {
	sub := factors[activityType]
	out := make([]string, 0, len(sub))
	for category := range sub {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Units returns the units offered for a type.
func Units(activityType string) []string {
	out := make([]string, len(units[activityType]))
	copy(out, units[activityType])
	return out
}

// IsValidType reports whether activityType is one of the supported types.
func IsValidType(activityType string) bool {
	_, ok := factors[activityType]
	return ok
}

// IsValidCategory reports whether category has a factor entry under activityType.
func IsValidCategory(activityType, category string) bool {
	_, ok := Lookup(activityType, category)
	return ok
}

// CatalogEntry describes one type for clients building an activity form.
type CatalogEntry struct {
	Type       string             `json:"type"`
	Categories map[string]float64 `json:"categories"`
	Units      []string           `json:"units"`
}

// Catalog returns a copy of the whole table in display order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(typeOrder))
	for _, t := range typeOrder {
		cats := make(map[string]float64, len(factors[t]))
		for k, v := range factors[t] {
			cats[k] = v
		}
		out = append(out, CatalogEntry{Type: t, Categories: cats, Units: Units(t)})
	}
	return out
}
