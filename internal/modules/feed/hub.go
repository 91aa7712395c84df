package feed

import (
	"context"
	"encoding/json"
	"sync"

	"slotwise/internal/events"
)

const sendBuffer = 16

// Subscriber receives encoded events for one facility.
type Subscriber struct {
	FacilityID int64
	UserID     int64
	send       chan []byte
}

func (s *Subscriber) Messages() <-chan []byte { return s.send }

// Hub fans schedule events out to the websocket clients watching a facility.
type Hub struct {
	subscribers map[int64]map[*Subscriber]struct{}
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int64]map[*Subscriber]struct{}),
	}
}

func (h *Hub) Subscribe(facilityID, userID int64) *Subscriber {
	s := &Subscriber{FacilityID: facilityID, UserID: userID, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.subscribers[facilityID] == nil {
		h.subscribers[facilityID] = make(map[*Subscriber]struct{})
	}
	h.subscribers[facilityID][s] = struct{}{}
	return s
}

func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.remove(s)
}

// remove expects the write lock to be held.
func (h *Hub) remove(s *Subscriber) {
	subs, ok := h.subscribers[s.FacilityID]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	close(s.send)
	if len(subs) == 0 {
		delete(h.subscribers, s.FacilityID)
	}
}

// Publish implements events.Publisher. Subscribers whose buffer is full are dropped.
func (h *Hub) Publish(_ context.Context, ev events.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for s := range h.subscribers[ev.FacilityID] {
		select {
		case s.send <- payload:
		default:
			h.remove(s)
		}
	}
	return nil
}

func (h *Hub) SubscriberCount(facilityID int64) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.subscribers[facilityID])
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, subs := range h.subscribers {
		for s := range subs {
			h.remove(s)
		}
	}
}
