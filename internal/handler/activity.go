package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"carbon-tracker/internal/emission"
	"carbon-tracker/internal/store"
	"carbon-tracker/internal/stats"
	"carbon-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	defaultDailyDays = 30
	maxDailyDays     = 365
)

// ActivityHandler serves the owner-scoped activity endpoints.
type ActivityHandler struct {
	Store *store.ActivityStore
	now   func() time.Time
}

// NewActivityHandler wires the handler to s with the wall clock.
func NewActivityHandler(s *store.ActivityStore) *ActivityHandler {
	return &ActivityHandler{Store: s, now: time.Now}
}

// ---------- request ----------

type activityReq struct {
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Amount      *float64 `json:"amount"`
	Unit        string   `json:"unit"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
}

// toInput trims and validates the request. An empty date stays zero for the store to default.
func (h *ActivityHandler) toInput(req activityReq) (store.ActivityInput, error) {
	req.Type = strings.TrimSpace(req.Type)
	req.Category = strings.TrimSpace(req.Category)
	req.Unit = strings.TrimSpace(req.Unit)
	req.Description = strings.TrimSpace(req.Description)

	if req.Amount == nil {
		return store.ActivityInput{}, util.MissingField("amount")
	}
	if err := util.ValidateActivity(req.Type, req.Category, *req.Amount, req.Unit, req.Description); err != nil {
		return store.ActivityInput{}, err
	}
	date, err := util.ParseDate(req.Date, h.now())
	if err != nil {
		return store.ActivityInput{}, err
	}

	return store.ActivityInput{
		Type:        req.Type,
		Category:    req.Category,
		Amount:      *req.Amount,
		Unit:        req.Unit,
		Description: req.Description,
		Date:        date,
	}, nil
}

// ---------- CRUD ----------

func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req activityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	in, err := h.toInput(req)
	if err != nil {
		writeError(c, err, "invalid activity")
		return
	}

	activity, err := h.Store.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		writeError(c, err, "failed to save activity")
		return
	}

	util.Created(c, util.Response{"activity": activity})
}

func (h *ActivityHandler) ListActivities(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	activities, err := h.Store.List(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err, "failed to load activities")
		return
	}

	util.Success(c, util.Response{
		"activities": activities,
		"total":      len(activities),
	})
}

func (h *ActivityHandler) GetActivity(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	activity, err := h.Store.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load activity")
		return
	}

	util.Success(c, util.Response{"activity": activity})
}

func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req activityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	in, err := h.toInput(req)
	if err != nil {
		writeError(c, err, "invalid activity")
		return
	}

	activity, err := h.Store.Update(c.Request.Context(), user.ID, c.Param("id"), in)
	if err != nil {
		writeError(c, err, "failed to update activity")
		return
	}

	util.Success(c, util.Response{"activity": activity})
}

func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.Store.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		writeError(c, err, "failed to delete activity")
		return
	}

	util.Success(c, util.Response{"message": "activity deleted"})
}

// ---------- statistics ----------

func (h *ActivityHandler) GetStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	activities, err := h.Store.List(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err, "failed to load activities")
		return
	}

	s := stats.Aggregate(activities, h.now())
	util.Success(c, util.Response{
		"stats":            s,
		"averageFootprint": stats.Average(s),
		"ranking":          stats.RankTypes(s.ByType),
	})
}

func (h *ActivityHandler) GetTrend(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	activities, err := h.Store.List(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err, "failed to load activities")
		return
	}

	util.Success(c, util.Response{"trend": stats.WeeklyTrend(activities, h.now())})
}

func (h *ActivityHandler) GetBreakdown(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	activities, err := h.Store.List(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err, "failed to load activities")
		return
	}

	util.Success(c, util.Response{"categories": stats.ByCategory(activities)})
}

// GetDaily returns per-day totals; ?days= bounds how many days with activity are returned.
func (h *ActivityHandler) GetDaily(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	days := defaultDailyDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxDailyDays {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "days must be between 1 and 365")
			return
		}
		days = n
	}

	activities, err := h.Store.List(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err, "failed to load activities")
		return
	}

	util.Success(c, util.Response{"days": stats.Daily(activities, days)})
}

// ListFactors exposes the type/category/unit table the add-activity form is built from.
func ListFactors(c *gin.Context) {
	util.Success(c, util.Response{"types": emission.Catalog()})
}
