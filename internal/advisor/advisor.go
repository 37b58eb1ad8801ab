// Package advisor turns a user's activities into recommendation and insight text.
package advisor

import (
	"context"
	"time"

	"carbon-tracker/internal/llm"
	"carbon-tracker/internal/models"
	"carbon-tracker/internal/observability"
	"carbon-tracker/internal/stats"

	"github.com/rs/zerolog/log"
)

// Recommendation sources.
const (
	SourceOnboarding = "onboarding"
	SourceRules      = "rules"
	SourceExternal   = "external"
	SourceFallback   = "fallback"
)

// Recommendation is the text handed back to the client together with the tier that wrote it.
type Recommendation struct {
	Text   string `json:"recommendations"`
	Source string `json:"source"`
}

// Options tunes how much history the advisor looks at.
type Options struct {
	InsightRecent       int // activities in the recent average
	PromptActivityLimit int // activities embedded in the external prompt
}

// Advisor produces recommendations and insights. gen may be nil, in which case only the
// rule-based tier is used.
type Advisor struct {
	gen  llm.TextGenerator
	opts Options
	now  func() time.Time
}

// New builds an Advisor, filling zero Options with the defaults (5 insight activities, 10 prompt activities).
func New(gen llm.TextGenerator, opts Options) *Advisor {
	if opts.InsightRecent <= 0 {
		opts.InsightRecent = 5
	}
	if opts.PromptActivityLimit <= 0 {
		opts.PromptActivityLimit = 10
	}
	return &Advisor{gen: gen, opts: opts, now: time.Now}
}

// Recommend never fails: an empty history yields the onboarding text and a failing
// external provider yields the fixed generic tips. activities are expected newest first.
func (a *Advisor) Recommend(ctx context.Context, activities []models.Activity) Recommendation {
	var rec Recommendation
	switch {
	case len(activities) == 0:
		rec = Recommendation{Text: onboardingText, Source: SourceOnboarding}
	case a.gen != nil:
		rec = a.external(ctx, activities)
	default:
		rec = Recommendation{Text: a.rules(activities), Source: SourceRules}
	}
	observability.RecordRecommendation(rec.Source)
	return rec
}

func (a *Advisor) external(ctx context.Context, activities []models.Activity) Recommendation {
	prompt := buildPrompt(activities, a.opts.PromptActivityLimit)
	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("provider", a.gen.Provider()).Msg("external recommendations failed, using fallback")
		return Recommendation{Text: fallbackText, Source: SourceFallback}
	}
	return Recommendation{Text: text, Source: SourceExternal}
}

func (a *Advisor) rules(activities []models.Activity) string {
	s := stats.Aggregate(activities, a.now())
	return ruleRecommendations(activities, s)
}

// Insights narrates the breakdown of every activity passed in (newest first) and returns the
// stats it was built from.
func (a *Advisor) Insights(activities []models.Activity) (string, stats.Stats) {
	s := stats.Aggregate(activities, a.now())
	return narrateInsights(activities, s, a.opts.InsightRecent), s
}
