package classes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotwise/internal/domain"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Conflicts      []map[string]any `json:"conflicts"`
			ClassConflicts []map[string]any `json:"class_conflicts"`
		} `json:"details"`
	} `json:"error"`
}

func newRouter(f *fixture, actor domain.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Set("user_id", actor.UserID)
		c.Set("organization_id", actor.OrganizationID)
		c.Set("role", string(actor.Role))
		c.Next()
	})
	NewHandler(f.svc).RegisterRoutes(api)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestHandler_CreateClassFlow(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f, f.staff)
	clash := f.seedBooking(t, time.Date(2030, 1, 14, 18, 0, 0, 0, time.UTC), domain.BookingConfirmed)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/classes", f.weeklyYoga())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "BOOKING_CONFLICT", env.Error.Code)
	require.Len(t, env.Error.Details.Conflicts, 1)
	assert.EqualValues(t, clash.ID, env.Error.Details.Conflicts[0]["id"])

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/classes", f.weeklyYoga(clash.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out CreateClassResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Len(t, out.Class.Sessions, 4)
	assert.Equal(t, []int64{clash.ID}, out.CancelledBookingIDs)

	overlapping := f.weeklyYoga()
	overlapping.StartTime = "18:30"
	w, env = doJSON(t, r, http.MethodPost, "/api/v1/classes", overlapping)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CLASS_CONFLICT", env.Error.Code)
	assert.Len(t, env.Error.Details.ClassConflicts, 4)
}

func TestHandler_CreateClassValidation(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f, f.staff)

	bad := f.weeklyYoga()
	bad.StartTime = "25:00"
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/classes", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	backwards := f.weeklyYoga()
	backwards.Recurrence.EndDate = "2029-12-01"
	w, env = doJSON(t, r, http.MethodPost, "/api/v1/classes", backwards)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	tooMany := f.weeklyYoga()
	tooMany.Recurrence.Pattern = "daily"
	tooMany.Recurrence.EndDate = "2031-01-01"
	w, env = doJSON(t, r, http.MethodPost, "/api/v1/classes", tooMany)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "TOO_MANY_SESSIONS", env.Error.Code)
}

func TestHandler_CheckConflicts(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f, f.staff)
	f.seedBooking(t, time.Date(2030, 1, 7, 18, 0, 0, 0, time.UTC), domain.BookingPending)

	start := time.Date(2030, 1, 7, 18, 30, 0, 0, time.UTC)
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/classes/conflicts", CheckConflictsRequest{
		FacilityID: f.facility.ID,
		Sessions:   []SessionInput{{StartTime: start, EndTime: start.Add(time.Hour)}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out CheckConflictsResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.True(t, out.ConflictStatus)
	assert.False(t, out.ClassConflictsStatus)
	assert.Len(t, out.Conflicts, 1)
}

func TestHandler_GetClass(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f, domain.Actor{UserID: 3, OrganizationID: 2, Role: domain.RoleOwner})

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/classes/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/classes/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
