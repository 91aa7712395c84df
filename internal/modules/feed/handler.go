package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"slotwise/internal/domain"
	"slotwise/internal/middleware"
	"slotwise/internal/pkg/response"
	"slotwise/internal/repository"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type FacilityReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

type Handler struct {
	hub        *Hub
	facilities FacilityReader
	upgrader   websocket.Upgrader
	log        *slog.Logger
}

// NewHandler accepts websocket upgrades from the given origins; an empty list allows any origin.
func NewHandler(hub *Hub, facilities FacilityReader, allowedOrigins []string, log *slog.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub:        hub,
		facilities: facilities,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// Watch streams schedule events of one facility to staff of its organization.
// Events carry customer contact details, so nobody else may subscribe.
//
// Endpoint: GET /ws/facilities/:id?token=JWT
func (h *Handler) Watch(c *gin.Context) {
	facilityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || facilityID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid facility ID")
		return
	}
	actor := middleware.Actor(c)
	userID := actor.UserID

	f, err := h.facilities.GetByID(c.Request.Context(), facilityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Facility not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load facility")
		return
	}
	if !actor.Manages(f.OrganizationID) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only staff of the facility's organization can watch its schedule")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "facility_id", facilityID, "error", err)
		return
	}

	sub := h.hub.Subscribe(facilityID, userID)
	h.log.Debug("feed subscriber connected", "facility_id", facilityID, "user_id", userID)

	go h.writeLoop(conn, sub)
	h.readLoop(conn, sub)
}

// readLoop only drains control frames; clients never send data on this feed.
func (h *Handler) readLoop(conn *websocket.Conn, sub *Subscriber) {
	defer func() {
		h.hub.Unsubscribe(sub)
		_ = conn.Close()
		h.log.Debug("feed subscriber disconnected", "facility_id", sub.FacilityID, "user_id", sub.UserID)
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("feed websocket error", "facility_id", sub.FacilityID, "error", err)
			}
			return
		}
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
