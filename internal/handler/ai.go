package handler

import (
	"carbon-tracker/internal/advisor"
	"carbon-tracker/internal/store"
	"carbon-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// AIHandler serves recommendations and insights.
type AIHandler struct {
	Store   *store.ActivityStore
	Advisor *advisor.Advisor
	// Window is how many of the newest activities recommendations look at.
	Window int
}

// NewAIHandler wires the handler; a non-positive window defaults to 20 activities.
func NewAIHandler(s *store.ActivityStore, a *advisor.Advisor, window int) *AIHandler {
	if window <= 0 {
		window = 20
	}
	return &AIHandler{Store: s, Advisor: a, Window: window}
}

func (h *AIHandler) Recommendations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	activities, err := h.Store.ListRecent(c.Request.Context(), user.ID, h.Window)
	if err != nil {
		writeError(c, err, "failed to load activities")
		return
	}

	rec := h.Advisor.Recommend(c.Request.Context(), activities)
	util.Success(c, util.Response{
		"recommendations": rec.Text,
		"source":          rec.Source,
	})
}

func (h *AIHandler) Insights(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	activities, err := h.Store.List(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err, "failed to generate insights")
		return
	}

	text, s := h.Advisor.Insights(activities)
	util.Success(c, util.Response{
		"insights": text,
		"stats":    s,
	})
}
