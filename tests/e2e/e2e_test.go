package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"slotwise/internal/app"
	"slotwise/internal/config"
	"slotwise/internal/database"
	"slotwise/internal/domain"
	"slotwise/internal/pkg/logger"
	"slotwise/internal/repository"
)

// now is fixed so that 2030-01-07 (a Monday) is always tomorrow.
var now = time.Date(2030, 1, 6, 12, 0, 0, 0, time.UTC)

type E2ETestSuite struct {
	router *gin.Engine
	db     *gorm.DB
}

type TestResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", name), logger.Discard())
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, repository.AutoMigrate(db), "Failed to migrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{
		AppEnv:    "test",
		JWTSecret: "test_secret_key_32_characters_min",
		JWTTTL:    24 * time.Hour,
	}
	a := app.New(app.Options{
		Config: cfg,
		DB:     db,
		Log:    logger.Discard(),
		Now:    func() time.Time { return now },
	})
	return &E2ETestSuite{router: a.Router, db: db}
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, *TestResponse) {
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
	s.router.ServeHTTP(w, req)

	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "status %d body %s", w.Code, w.Body.String())
	if resp.Error != nil && w.Code >= 500 {
		t.Logf("%s %s - Error: [%s] %s", method, path, resp.Error.Code, resp.Error.Message)
	}
	return w, &resp
}

func object(t *testing.T, m map[string]any, key string) map[string]any {
	t.Helper()
	v, ok := m[key].(map[string]any)
	require.True(t, ok, "missing object %q in %v", key, m)
	return v
}

func id(t *testing.T, m map[string]any) int64 {
	t.Helper()
	v, ok := m["id"].(float64)
	require.True(t, ok, "missing id in %v", m)
	return int64(v)
}

type tenant struct {
	ownerToken string
	orgID      int64
	locationID int64
	facilityID int64
}

// setupTenant registers an organization, opens a UTC location with one court and sets 08:00-22:00 every day.
func (s *E2ETestSuite) setupTenant(t *testing.T) tenant {
	t.Helper()
	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/auth/register/organization", map[string]any{
		"organization_name": "Padel Club",
		"name":              "Arman",
		"email":             "owner@club.kz",
		"password":          "Password123!",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tn := tenant{
		ownerToken: resp.Data["token"].(string),
		orgID:      id(t, object(t, resp.Data, "organization")),
	}

	w, resp = s.makeRequest(t, http.MethodPost, "/api/v1/locations", map[string]any{"name": "Esentai", "timezone": "UTC"}, tn.ownerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tn.locationID = id(t, object(t, resp.Data, "location"))

	w, resp = s.makeRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/locations/%d/facilities", tn.locationID), map[string]any{"name": "Court 1"}, tn.ownerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tn.facilityID = id(t, object(t, resp.Data, "facility"))

	hours := make([]map[string]any, 7)
	for i := range hours {
		hours[i] = map[string]any{"day_of_week": i, "open_time": "08:00", "close_time": "22:00"}
	}
	w, _ = s.makeRequest(t, http.MethodPut, fmt.Sprintf("/api/v1/organizations/%d/working-hours", tn.orgID), map[string]any{"hours": hours}, tn.ownerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return tn
}

func (s *E2ETestSuite) registerCustomer(t *testing.T, email string) string {
	t.Helper()
	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/auth/register/customer", map[string]any{
		"email":    email,
		"password": "Password123!",
		"name":     "Dana",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return resp.Data["token"].(string)
}

func (s *E2ETestSuite) book(t *testing.T, token string, facilityID int64, start string, minutes int) (*httptest.ResponseRecorder, *TestResponse) {
	t.Helper()
	from, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)
	return s.makeRequest(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"facility_id":   facilityID,
		"start_time":    from.Format(time.RFC3339),
		"end_time":      from.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339),
		"customer_name": "Dana",
	}, token)
}

func availableStarts(t *testing.T, resp *TestResponse) map[string]bool {
	t.Helper()
	slots, ok := resp.Data["slots"].([]any)
	require.True(t, ok)
	out := make(map[string]bool, len(slots))
	for _, raw := range slots {
		slot := raw.(map[string]any)
		start, err := time.Parse(time.RFC3339, slot["start_time"].(string))
		require.NoError(t, err)
		out[start.UTC().Format("15:04")] = slot["is_available"].(bool)
	}
	return out
}

// =============================================================================
// Flow 1: Organization setup and public catalog
// =============================================================================

func TestFlow1_OrganizationSetup(t *testing.T) {
	suite := setupTestSuite(t)
	tn := suite.setupTenant(t)

	t.Run("GET /locations/:id/facilities", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/locations/%d/facilities", tn.locationID), nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp.Data["facilities"], 1)
	})

	t.Run("GET /organizations/:id/working-hours", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/organizations/%d/working-hours", tn.orgID), nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		hours := object(t, resp.Data, "working_hours")["hours"].([]any)
		assert.Equal(t, "08:00", hours[0].(map[string]any)["open_time"])
	})

	t.Run("PUT working hours of another organization", func(t *testing.T) {
		w, _ := suite.makeRequest(t, http.MethodPut, fmt.Sprintf("/api/v1/organizations/%d/working-hours", tn.orgID+1), map[string]any{"hours": []any{}}, tn.ownerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("customers cannot manage the catalog", func(t *testing.T) {
		token := suite.registerCustomer(t, "customer@mail.kz")
		w, _ := suite.makeRequest(t, http.MethodPost, "/api/v1/locations", map[string]any{"name": "Mine"}, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("login and me", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "OWNER@club.kz", "password": "Password123!"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		token := resp.Data["token"].(string)

		w, resp = suite.makeRequest(t, http.MethodGet, "/api/v1/users/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "owner", object(t, resp.Data, "user")["role"])

		w, _ = suite.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "owner@club.kz", "password": "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// =============================================================================
// Flow 2: Availability and booking lifecycle
// =============================================================================

func TestFlow2_BookingLifecycle(t *testing.T) {
	suite := setupTestSuite(t)
	tn := suite.setupTenant(t)
	customer := suite.registerCustomer(t, "dana@mail.kz")
	availability := fmt.Sprintf("/api/v1/facilities/%d/availability?date=2030-01-07&duration=60", tn.facilityID)

	w, resp := suite.makeRequest(t, http.MethodGet, availability, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	free := availableStarts(t, resp)
	assert.Len(t, free, 27)
	assert.True(t, free["10:00"])

	w, resp = suite.book(t, customer, tn.facilityID, "2030-01-07T10:00:00Z", 60)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bookingID := id(t, object(t, resp.Data, "booking"))

	t.Run("overlapping booking is rejected", func(t *testing.T) {
		w, resp := suite.book(t, customer, tn.facilityID, "2030-01-07T10:30:00Z", 60)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "BOOKING_CONFLICT", resp.Error.Code)
		conflicts := resp.Error.Details["conflicts"].([]any)
		require.Len(t, conflicts, 1)
		assert.NotContains(t, conflicts[0].(map[string]any), "label")
	})

	t.Run("other customers cannot watch the facility feed", func(t *testing.T) {
		snoop := suite.registerCustomer(t, "snoop@mail.kz")
		w, resp := suite.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/ws/facilities/%d?token=%s", tn.facilityID, snoop), nil, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	})

	t.Run("touching booking is accepted", func(t *testing.T) {
		w, _ := suite.book(t, customer, tn.facilityID, "2030-01-07T11:00:00Z", 30)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("past booking is rejected", func(t *testing.T) {
		w, _ := suite.book(t, customer, tn.facilityID, "2030-01-05T10:00:00Z", 60)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("availability reflects bookings", func(t *testing.T) {
		_, resp := suite.makeRequest(t, http.MethodGet, availability, nil, "")
		free := availableStarts(t, resp)
		assert.True(t, free["09:00"])
		assert.False(t, free["09:30"])
		assert.False(t, free["10:00"])
		assert.False(t, free["11:00"])
		assert.True(t, free["11:30"])
	})

	t.Run("customer cannot confirm", func(t *testing.T) {
		w, _ := suite.makeRequest(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/confirm", bookingID), nil, customer)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner confirms, customer cancels", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/confirm", bookingID), nil, tn.ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "confirmed", object(t, resp.Data, "booking")["status"])

		w, resp = suite.makeRequest(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/cancel", bookingID), map[string]any{"reason": "rain"}, customer)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "cancelled", object(t, resp.Data, "booking")["status"])

		w, resp = suite.makeRequest(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/cancel", bookingID), nil, customer)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVALID_STATUS_TRANSITION", resp.Error.Code)
	})

	t.Run("cancelled slot is free again", func(t *testing.T) {
		_, resp := suite.makeRequest(t, http.MethodGet, availability, nil, "")
		assert.True(t, availableStarts(t, resp)["10:00"])
	})

	t.Run("cancelled booking cannot be confirmed", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/confirm", bookingID), nil, tn.ownerToken)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVALID_STATUS_TRANSITION", resp.Error.Code)
	})

	t.Run("staff schedule lists every booking of the day", func(t *testing.T) {
		schedule := fmt.Sprintf("/api/v1/facilities/%d/bookings?from=2030-01-07", tn.facilityID)
		w, resp := suite.makeRequest(t, http.MethodGet, schedule, nil, tn.ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		bookings := resp.Data["bookings"].([]any)
		require.Len(t, bookings, 2)
		assert.Equal(t, "cancelled", bookings[0].(map[string]any)["status"])

		w, _ = suite.makeRequest(t, http.MethodGet, schedule, nil, customer)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

// =============================================================================
// Flow 3: Recurring class creation with booking cancellation
// =============================================================================

func TestFlow3_ClassWorkflow(t *testing.T) {
	suite := setupTestSuite(t)
	tn := suite.setupTenant(t)
	customer := suite.registerCustomer(t, "dana@mail.kz")

	w, resp := suite.book(t, customer, tn.facilityID, "2030-01-14T18:30:00Z", 60)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clashID := id(t, object(t, resp.Data, "booking"))

	class := map[string]any{
		"name":             "Evening padel",
		"facility_id":      tn.facilityID,
		"start_date":       "2030-01-07",
		"start_time":       "18:00",
		"duration_minutes": 60,
		"recurrence": map[string]any{
			"type":     "repeating",
			"pattern":  "weekly",
			"end_date": "2030-01-28",
		},
	}

	t.Run("conflict preview", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodPost, "/api/v1/classes/conflicts", map[string]any{
			"facility_id": tn.facilityID,
			"sessions": []map[string]any{
				{"start_time": "2030-01-14T18:00:00Z", "end_time": "2030-01-14T19:00:00Z"},
			},
		}, tn.ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, true, resp.Data["conflict_status"])
		assert.Equal(t, false, resp.Data["class_conflicts_status"])
	})

	t.Run("customers cannot create classes", func(t *testing.T) {
		w, _ := suite.makeRequest(t, http.MethodPost, "/api/v1/classes", class, customer)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("booking conflict asks for confirmation", func(t *testing.T) {
		w, resp := suite.makeRequest(t, http.MethodPost, "/api/v1/classes", class, tn.ownerToken)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "BOOKING_CONFLICT", resp.Error.Code)
		conflicts := resp.Error.Details["conflicts"].([]any)
		require.Len(t, conflicts, 1)
		assert.EqualValues(t, clashID, conflicts[0].(map[string]any)["id"])
	})

	t.Run("confirmed cancellation commits the class", func(t *testing.T) {
		class["cancel_booking_ids"] = []int64{clashID}
		w, resp := suite.makeRequest(t, http.MethodPost, "/api/v1/classes", class, tn.ownerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Len(t, object(t, resp.Data, "class")["sessions"], 4)
		assert.Equal(t, []any{float64(clashID)}, resp.Data["cancelled_booking_ids"])

		w, resp = suite.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", clashID), nil, customer)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cancelled", object(t, resp.Data, "booking")["status"])
	})

	t.Run("class sessions block bookings and availability", func(t *testing.T) {
		w, resp := suite.book(t, customer, tn.facilityID, "2030-01-21T18:30:00Z", 60)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Len(t, resp.Error.Details["class_conflicts"], 1)

		_, resp = suite.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/facilities/%d/availability?date=2030-01-21", tn.facilityID), nil, "")
		free := availableStarts(t, resp)
		assert.False(t, free["18:00"])
		assert.True(t, free["19:00"])
	})

	t.Run("overlapping class is blocked", func(t *testing.T) {
		delete(class, "cancel_booking_ids")
		class["start_time"] = "18:30"
		w, resp := suite.makeRequest(t, http.MethodPost, "/api/v1/classes", class, tn.ownerToken)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CLASS_CONFLICT", resp.Error.Code)
	})

	t.Run("too many sessions", func(t *testing.T) {
		class["start_time"] = "07:00"
		class["recurrence"] = map[string]any{"type": "repeating", "pattern": "daily", "end_date": "2031-01-01"}
		w, resp := suite.makeRequest(t, http.MethodPost, "/api/v1/classes", class, tn.ownerToken)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "TOO_MANY_SESSIONS", resp.Error.Code)
	})
}

// =============================================================================
// Flow 4: Subscription gate
// =============================================================================

func TestFlow4_LapsedSubscription(t *testing.T) {
	suite := setupTestSuite(t)
	tn := suite.setupTenant(t)

	require.NoError(t, suite.db.Model(&domain.Organization{}).
		Where("id = ?", tn.orgID).
		Update("subscription_status", domain.SubscriptionPastDue).Error)

	w, resp := suite.makeRequest(t, http.MethodPost, "/api/v1/classes/conflicts", map[string]any{
		"facility_id": tn.facilityID,
		"sessions":    []any{},
	}, tn.ownerToken)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "SUBSCRIPTION_INACTIVE", resp.Error.Code)

	// bookings and public reads keep working
	w, _ = suite.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/facilities/%d", tn.facilityID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
