package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"carbon-tracker/internal/advisor"
	"carbon-tracker/internal/config"
	"carbon-tracker/internal/database"
	"carbon-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type activityJSON struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Category        string  `json:"category"`
	Amount          float64 `json:"amount"`
	CarbonFootprint float64 `json:"carbonFootprint"`
}

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	r, _ := setupTestServerWithDB(t)
	return r
}

func setupTestServerWithDB(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		Database:  config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "router_test.db")},
		JWT:       config.JWTConfig{Secret: "test-secret", Issuer: "carbon-tracker-test", ExpireHours: 1},
		Security:  config.SecurityConfig{BcryptCost: 4},
		RateLimit: config.RateLimitConfig{AIRequestsPerSecond: 100, AIBurst: 100},
		App:       config.AppSubConfig{RecommendationWindow: 20, InsightRecent: 5, PromptActivityLimit: 10},
	}

	db, err := database.Init(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	return SetupRouter(cfg, db, advisor.New(nil, advisor.Options{})), db
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.Equal(t, 0, env.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func register(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, "/api/users/register", "", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func createActivity(t *testing.T, r *gin.Engine, token string, body gin.H) activityJSON {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, "/api/activities", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Activity activityJSON `json:"activity"`
	}
	decodeData(t, w, &data)
	return data.Activity
}

func TestActivityLifecycle(t *testing.T) {
	r := setupTestServer(t)
	token := register(t, r, "alice@example.com")

	car := createActivity(t, r, token, gin.H{"type": "transportation", "category": "car", "amount": 10, "unit": "km"})
	assert.InDelta(t, 2.1, car.CarbonFootprint, 1e-9)

	meat := createActivity(t, r, token, gin.H{"type": "food", "category": "meat", "amount": 0.3, "unit": "kg"})
	assert.InDelta(t, 1.983, meat.CarbonFootprint, 1e-9)

	w := doRequest(t, r, http.MethodGet, "/api/activities", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Activities []activityJSON `json:"activities"`
	}
	decodeData(t, w, &list)
	assert.Len(t, list.Activities, 2)

	w = doRequest(t, r, http.MethodGet, "/api/activities/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st struct {
		Stats struct {
			TotalFootprint float64            `json:"totalFootprint"`
			ByType         map[string]float64 `json:"byType"`
			ActivityCount  int                `json:"activityCount"`
		} `json:"stats"`
	}
	decodeData(t, w, &st)
	assert.InDelta(t, 4.083, st.Stats.TotalFootprint, 1e-9)
	assert.Equal(t, 2, st.Stats.ActivityCount)
	assert.InDelta(t, 2.1, st.Stats.ByType["transportation"], 1e-9)

	w = doRequest(t, r, http.MethodPut, "/api/activities/"+car.ID, token,
		gin.H{"type": "transportation", "category": "car", "amount": 20, "unit": "km"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Activity activityJSON `json:"activity"`
	}
	decodeData(t, w, &updated)
	assert.InDelta(t, 4.2, updated.Activity.CarbonFootprint, 1e-9)

	w = doRequest(t, r, http.MethodDelete, "/api/activities/"+car.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/activities/"+car.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOwnershipIsolation(t *testing.T) {
	r := setupTestServer(t)
	alice := register(t, r, "alice@example.com")
	bob := register(t, r, "bob@example.com")

	a := createActivity(t, r, alice, gin.H{"type": "water", "category": "liter", "amount": 100, "unit": "liter"})

	body := gin.H{"type": "water", "category": "liter", "amount": 1, "unit": "liter"}
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodGet, "/api/activities/"+a.ID, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodPut, "/api/activities/"+a.ID, bob, body).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodDelete, "/api/activities/"+a.ID, bob, nil).Code)

	w := doRequest(t, r, http.MethodGet, "/api/activities", bob, nil)
	var list struct {
		Activities []activityJSON `json:"activities"`
	}
	decodeData(t, w, &list)
	assert.Empty(t, list.Activities)

	assert.Equal(t, http.StatusOK, doRequest(t, r, http.MethodGet, "/api/activities/"+a.ID, alice, nil).Code)
}

func TestCreateActivity_Validation(t *testing.T) {
	r := setupTestServer(t)
	token := register(t, r, "alice@example.com")

	tests := []struct {
		name string
		body gin.H
	}{
		{"unknown type", gin.H{"type": "space", "category": "rocket", "amount": 1, "unit": "km"}},
		{"negative amount", gin.H{"type": "transportation", "category": "car", "amount": -1, "unit": "km"}},
		{"missing amount", gin.H{"type": "transportation", "category": "car", "unit": "km"}},
		{"missing unit", gin.H{"type": "transportation", "category": "car", "amount": 1}},
		{"future date", gin.H{"type": "transportation", "category": "car", "amount": 1, "unit": "km", "date": "2999-01-01"}},
		{"bad date", gin.H{"type": "transportation", "category": "car", "amount": 1, "unit": "km", "date": "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/api/activities", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestCreateActivity_UnknownCategoryIsZero(t *testing.T) {
	r := setupTestServer(t)
	token := register(t, r, "alice@example.com")

	a := createActivity(t, r, token, gin.H{"type": "transportation", "category": "rocket", "amount": 100, "unit": "km"})
	assert.Zero(t, a.CarbonFootprint)
}

func TestRecommendations(t *testing.T) {
	r := setupTestServer(t)
	token := register(t, r, "alice@example.com")

	w := doRequest(t, r, http.MethodPost, "/api/ai/recommendations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rec struct {
		Recommendations string `json:"recommendations"`
		Source          string `json:"source"`
	}
	decodeData(t, w, &rec)
	assert.Equal(t, advisor.SourceOnboarding, rec.Source)
	assert.True(t, strings.HasPrefix(rec.Recommendations, "Welcome to Carbon Tracker!"))

	createActivity(t, r, token, gin.H{"type": "transportation", "category": "car", "amount": 10, "unit": "km"})

	w = doRequest(t, r, http.MethodPost, "/api/ai/recommendations", token, nil)
	decodeData(t, w, &rec)
	assert.Equal(t, advisor.SourceRules, rec.Source)
	assert.Contains(t, rec.Recommendations, "1. Your car usage accounts for 100.0% of emissions.")

	w = doRequest(t, r, http.MethodPost, "/api/ai/insights", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ins struct {
		Insights string `json:"insights"`
		Stats    struct {
			TotalFootprint float64 `json:"totalFootprint"`
		} `json:"stats"`
	}
	decodeData(t, w, &ins)
	assert.Contains(t, ins.Insights, "Primary Emission Source: Transportation (100.0% of total emissions)")
	assert.InDelta(t, 2.1, ins.Stats.TotalFootprint, 1e-9)
}

func TestAuthRequired(t *testing.T) {
	r := setupTestServer(t)

	for _, path := range []string{"/api/activities", "/api/activities/stats", "/api/users/profile", "/api/export/csv"} {
		w := doRequest(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := doRequest(t, r, http.MethodPost, "/api/ai/recommendations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserAccount(t *testing.T) {
	r := setupTestServer(t)
	token := register(t, r, "alice@example.com")

	w := doRequest(t, r, http.MethodPost, "/api/users/register", "", gin.H{"name": "x", "email": "ALICE@example.com", "password": "Secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/users/login", "", gin.H{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/users/login", "", gin.H{"email": "alice@example.com", "password": "Secret123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPut, "/api/users/profile", token, gin.H{"name": "Alice"})
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		User struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeData(t, w, &profile)
	assert.Equal(t, "Alice", profile.User.Name)
	assert.Equal(t, "alice@example.com", profile.User.Email)

	w = doRequest(t, r, http.MethodPut, "/api/users/change-password", token, gin.H{"oldPassword": "Secret123", "newPassword": "Changed456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodPost, "/api/users/login", "", gin.H{"email": "alice@example.com", "password": "Changed456"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister_ConcurrentDuplicateIsConflict(t *testing.T) {
	r, db := setupTestServerWithDB(t)

	// another registration for the same email lands between the handler's check and its insert
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:email_race", func(tx *gorm.DB) {
		user, ok := tx.Statement.Dest.(*models.User)
		if !ok || raced {
			return
		}
		raced = true
		err := db.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO users (name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
				"other", user.Email, "x", time.Now(), time.Now()).Error
		if err != nil {
			t.Errorf("insert competing user: %v", err)
		}
	}))

	w := doRequest(t, r, http.MethodPost, "/api/users/register", "", gin.H{
		"name":     "Test User",
		"email":    "alice@example.com",
		"password": "Secret123",
	})
	require.True(t, raced)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestActivityJSONUsesCamelCase(t *testing.T) {
	r := setupTestServer(t)
	token := register(t, r, "alice@example.com")

	w := doRequest(t, r, http.MethodPost, "/api/activities", token,
		gin.H{"type": "transportation", "category": "car", "amount": 10, "unit": "km"})
	require.Equal(t, http.StatusCreated, w.Code)

	body := w.Body.String()
	for _, key := range []string{`"carbonFootprint"`, `"userId"`, `"createdAt"`} {
		assert.Contains(t, body, key)
	}
	for _, key := range []string{`"carbon_footprint"`, `"user_id"`, `"created_at"`} {
		assert.NotContains(t, body, key)
	}
}

func TestLoginLockout(t *testing.T) {
	r := setupTestServer(t)
	register(t, r, "alice@example.com")

	for i := 0; i < 5; i++ {
		w := doRequest(t, r, http.MethodPost, "/api/users/login", "", gin.H{"email": "alice@example.com", "password": "Wrong0000"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := doRequest(t, r, http.MethodPost, "/api/users/login", "", gin.H{"email": "alice@example.com", "password": "Secret123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "locked")
}

func TestStatisticsViews(t *testing.T) {
	r := setupTestServer(t)
	token := register(t, r, "alice@example.com")

	createActivity(t, r, token, gin.H{"type": "transportation", "category": "car", "amount": 10, "unit": "km"})
	createActivity(t, r, token, gin.H{"type": "transportation", "category": "bus", "amount": 10, "unit": "km"})

	w := doRequest(t, r, http.MethodGet, "/api/activities/breakdown", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var breakdown struct {
		Categories []struct {
			Category  string  `json:"category"`
			Footprint float64 `json:"footprint"`
		} `json:"categories"`
	}
	decodeData(t, w, &breakdown)
	require.Len(t, breakdown.Categories, 2)
	assert.Equal(t, "car", breakdown.Categories[0].Category)

	w = doRequest(t, r, http.MethodGet, "/api/activities/trend", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/activities/daily?days=7", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var daily struct {
		Days []struct {
			Count int `json:"count"`
		} `json:"days"`
	}
	decodeData(t, w, &daily)
	require.Len(t, daily.Days, 1)
	assert.Equal(t, 2, daily.Days[0].Count)

	w = doRequest(t, r, http.MethodGet, "/api/activities/daily?days=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportAndPublicEndpoints(t *testing.T) {
	r := setupTestServer(t)
	token := register(t, r, "alice@example.com")
	createActivity(t, r, token, gin.H{"type": "food", "category": "meat", "amount": 1, "unit": "kg", "date": "2024-05-01"})

	w := doRequest(t, r, http.MethodGet, "/api/export/csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Date,Type,Category,Amount,Unit,Footprint (kg CO2),Description")
	assert.Contains(t, w.Body.String(), "2024-05-01,food,meat,1,kg,6.6100,")

	w = doRequest(t, r, http.MethodGet, "/api/export/xlsx?token="+token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = doRequest(t, r, http.MethodGet, "/api/factors", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "transportation")

	w = doRequest(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "carbon_tracker_activities_mutations_total")
}
