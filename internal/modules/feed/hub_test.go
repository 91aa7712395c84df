package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotwise/internal/domain"
	"slotwise/internal/events"
	"slotwise/internal/pkg/logger"
	"slotwise/internal/repository"
)

type fakeFacilities map[int64]*domain.Facility

func (f fakeFacilities) GetByID(_ context.Context, id int64) (*domain.Facility, error) {
	if fac, ok := f[id]; ok {
		return fac, nil
	}
	return nil, repository.ErrNotFound
}

var testFacilities = fakeFacilities{3: {ID: 3, OrganizationID: 1, IsActive: true}}

func asActor(userID, orgID int64, role domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("organization_id", orgID)
		c.Set("role", string(role))
		c.Next()
	}
}

func TestHub_PublishReachesOnlyFacilitySubscribers(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe(1, 10)
	b := hub.Subscribe(2, 11)

	require.NoError(t, hub.Publish(context.Background(), events.New(events.BookingCreated, 1, 1, nil)))

	select {
	case msg := <-a.Messages():
		var ev events.Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, events.BookingCreated, ev.Type)
	default:
		t.Fatal("facility 1 subscriber got nothing")
	}
	assert.Empty(t, b.Messages())
}

func TestHub_DropsSlowSubscribers(t *testing.T) {
	hub := NewHub()
	s := hub.Subscribe(1, 10)

	for i := 0; i < sendBuffer+1; i++ {
		require.NoError(t, hub.Publish(context.Background(), events.New(events.BookingCreated, 1, 1, nil)))
	}
	assert.Equal(t, 0, hub.SubscriberCount(1))

	// Draining a dropped subscriber ends with a closed channel.
	count := 0
	for range s.Messages() {
		count++
	}
	assert.Equal(t, sendBuffer, count)
}

func TestHub_UnsubscribeAndClose(t *testing.T) {
	hub := NewHub()
	s := hub.Subscribe(1, 10)
	hub.Subscribe(1, 11)
	assert.Equal(t, 2, hub.SubscriberCount(1))

	hub.Unsubscribe(s)
	hub.Unsubscribe(s)
	assert.Equal(t, 1, hub.SubscriberCount(1))

	hub.Close()
	assert.Equal(t, 0, hub.SubscriberCount(1))
}

func TestHandler_StreamsEventsOverWebsocket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	h := NewHandler(hub, testFacilities, nil, logger.Discard())

	router := gin.New()
	router.Use(asActor(5, 1, domain.RoleStaff))
	h.RegisterRoutes(router.Group("/api/v1"))
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/facilities/3"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.SubscriberCount(3) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), events.New(events.ClassCommitted, 1, 3, map[string]int64{"class_id": 9})))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev events.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, events.ClassCommitted, ev.Type)
	assert.Equal(t, int64(3), ev.FacilityID)
}

func TestHandler_RejectsCallersOutsideTheOrganization(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		actor  gin.HandlerFunc
		path   string
		status int
	}{
		{"customer", asActor(8, 0, domain.RoleCustomer), "/ws/facilities/3", http.StatusForbidden},
		{"customer claiming the organization", asActor(8, 1, domain.RoleCustomer), "/ws/facilities/3", http.StatusForbidden},
		{"staff of another organization", asActor(9, 2, domain.RoleStaff), "/ws/facilities/3", http.StatusForbidden},
		{"unknown facility", asActor(5, 1, domain.RoleStaff), "/ws/facilities/404", http.StatusNotFound},
		{"bad id", asActor(5, 1, domain.RoleStaff), "/ws/facilities/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub()
			router := gin.New()
			router.Use(tt.actor)
			NewHandler(hub, testFacilities, nil, logger.Discard()).RegisterRoutes(router.Group(""))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, 0, hub.SubscriberCount(3))
		})
	}
}
