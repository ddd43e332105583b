package event

import (
	"errors"

	"code.cloudfoundry.org/eventhub"
	"github.com/bluebrain/viztools"
)

const SUBSCRIBER_BUFFER = 1024

var ErrUnrecognizedEvent = errors.New("unrecognized event")

type EventType string

const EventTypeSessionStateChanged EventType = "session_state_changed"

type Event interface {
	EventType() EventType
	Key() string
}

type Hub interface {
	Emit(Event)
	Subscribe() (EventSource, error)
	Close() error
}

type EventSource interface {
	Next() (Event, error)
	Close() error
}

// NewHub returns a hub that drops subscribers which fall more than
// SUBSCRIBER_BUFFER events behind instead of blocking emitters.
func NewHub() Hub {
	return &hub{hub: eventhub.NewNonBlocking(SUBSCRIBER_BUFFER)}
}

type hub struct {
	hub eventhub.Hub
}

func (h *hub) Emit(event Event) {
	h.hub.Emit(event)
}

func (h *hub) Subscribe() (EventSource, error) {
	source, err := h.hub.Subscribe()
	if err != nil {
		return nil, err
	}
	return &eventSource{source: source}, nil
}

func (h *hub) Close() error {
	return h.hub.Close()
}

type eventSource struct {
	source eventhub.Source
}

func (s *eventSource) Next() (Event, error) {
	e, err := s.source.Next()
	if err != nil {
		return nil, err
	}

	event, ok := e.(Event)
	if !ok {
		return nil, ErrUnrecognizedEvent
	}
	return event, nil
}

func (s *eventSource) Close() error {
	return s.source.Close()
}

type SessionStateChangedEvent struct {
	SessionURL string                `json:"session_url"`
	From       viztools.SessionState `json:"from"`
	To         viztools.SessionState `json:"to"`
}

func NewSessionStateChangedEvent(sessionURL string, from, to viztools.SessionState) SessionStateChangedEvent {
	return SessionStateChangedEvent{
		SessionURL: sessionURL,
		From:       from,
		To:         to,
	}
}

func (SessionStateChangedEvent) EventType() EventType {
	return EventTypeSessionStateChanged
}

func (e SessionStateChangedEvent) Key() string {
	return e.SessionURL
}
