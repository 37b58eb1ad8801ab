// Package stats derives footprint summaries from a user's activities.
// Nothing here is cached: callers pass the full current activity set on every request.
package stats

import (
	"sort"
	"time"

	"carbon-tracker/internal/models"
)

const (
	day = 24 * time.Hour
	// MonthlyWindow is the rolling window behind MonthlyFootprint.
	MonthlyWindow = 30 * day
	week          = 7 * day
)

// Stats is the summary returned by GET /activities/stats.
type Stats struct {
	TotalFootprint   float64            `json:"totalFootprint"`
	MonthlyFootprint float64            `json:"monthlyFootprint"`
	ByType           map[string]float64 `json:"byType"`
	ActivityCount    int                `json:"activityCount"`
}

// Aggregate sums footprints overall, per type and over the trailing 30 days from now.
func Aggregate(activities []models.Activity, now time.Time) Stats {
	s := Stats{
		ByType:        make(map[string]float64),
		ActivityCount: len(activities),
	}
	monthStart := now.Add(-MonthlyWindow)

	for i := range activities {
		a := &activities[i]
		s.TotalFootprint += a.CarbonFootprint
		s.ByType[a.Type] += a.CarbonFootprint
		if !a.Date.Before(monthStart) {
			s.MonthlyFootprint += a.CarbonFootprint
		}
	}
	return s
}

// Average returns the mean footprint per activity, 0 when there are none.
func Average(s Stats) float64 {
	if s.ActivityCount == 0 {
		return 0
	}
	return s.TotalFootprint / float64(s.ActivityCount)
}

// Trend directions.
const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendNeutral = "neutral"
)

// Trend compares the last 7 days with the 7 days before them.
type Trend struct {
	ThisWeek      float64 `json:"thisWeek"`
	LastWeek      float64 `json:"lastWeek"`
	ChangePercent float64 `json:"changePercent"`
	Direction     string  `json:"direction"`
}

// WeeklyTrend sums [now-7d, now) and [now-14d, now-7d).
// When last week is zero the change is reported as 0 and neutral.
func WeeklyTrend(activities []models.Activity, now time.Time) Trend {
	thisStart := now.Add(-week)
	lastStart := now.Add(-2 * week)

	var t Trend
	for i := range activities {
		d := activities[i].Date
		switch {
		case !d.Before(thisStart) && d.Before(now):
			t.ThisWeek += activities[i].CarbonFootprint
		case !d.Before(lastStart) && d.Before(thisStart):
			t.LastWeek += activities[i].CarbonFootprint
		}
	}

	t.Direction = TrendNeutral
	if t.LastWeek == 0 {
		return t
	}
	t.ChangePercent = (t.ThisWeek - t.LastWeek) / t.LastWeek * 100
	switch {
	case t.ChangePercent > 0:
		t.Direction = TrendUp
	case t.ChangePercent < 0:
		t.Direction = TrendDown
	}
	return t
}

// TypeTotal is one entry of a ranked breakdown.
type TypeTotal struct {
	Type      string  `json:"type"`
	Footprint float64 `json:"footprint"`
}

// RankTypes orders a by-type map by descending footprint, ties broken by name.
func RankTypes(byType map[string]float64) []TypeTotal {
	out := make([]TypeTotal, 0, len(byType))
	for t, v := range byType {
		out = append(out, TypeTotal{Type: t, Footprint: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Footprint != out[j].Footprint {
			return out[i].Footprint > out[j].Footprint
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// CategoryTotal is the footprint of one (type, category) pair.
type CategoryTotal struct {
	Type      string  `json:"type"`
	Category  string  `json:"category"`
	Footprint float64 `json:"footprint"`
	Count     int     `json:"count"`
}

// ByCategory sums footprints per (type, category), largest first.
func ByCategory(activities []models.Activity) []CategoryTotal {
	type key struct{ t, c string }
	idx := make(map[key]int)
	var out []CategoryTotal

	for i := range activities {
		a := &activities[i]
		k := key{a.Type, a.Category}
		pos, ok := idx[k]
		if !ok {
			pos = len(out)
			idx[k] = pos
			out = append(out, CategoryTotal{Type: a.Type, Category: a.Category})
		}
		out[pos].Footprint += a.CarbonFootprint
		out[pos].Count++
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Footprint != out[j].Footprint {
			return out[i].Footprint > out[j].Footprint
		}
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopCategory returns the category with the largest footprint within activityType.
func TopCategory(activities []models.Activity, activityType string) (string, bool) {
	for _, ct := range ByCategory(activities) {
		if ct.Type == activityType {
			return ct.Category, true
		}
	}
	return "", false
}

// DailyTotal is the footprint logged on one calendar day (UTC).
type DailyTotal struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Footprint float64 `json:"footprint"`
	Count     int     `json:"count"`
}

// Daily groups activities per UTC day and returns the most recent n days that have
// activity, oldest first. n <= 0 returns every day.
func Daily(activities []models.Activity, n int) []DailyTotal {
	dailyMap := make(map[string]*DailyTotal)
	for i := range activities {
		a := &activities[i]
		k := a.Date.UTC().Format("2006-01-02")
		ds, ok := dailyMap[k]
		if !ok {
			ds = &DailyTotal{Date: k}
			dailyMap[k] = ds
		}
		ds.Footprint += a.CarbonFootprint
		ds.Count++
	}

	out := make([]DailyTotal, 0, len(dailyMap))
	for _, ds := range dailyMap {
		out = append(out, *ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// RecentAverage is the mean footprint of the first n activities (callers pass them newest first).
func RecentAverage(activities []models.Activity, n int) float64 {
	if n <= 0 || len(activities) == 0 {
		return 0
	}
	if len(activities) < n {
		n = len(activities)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += activities[i].CarbonFootprint
	}
	return sum / float64(n)
}
