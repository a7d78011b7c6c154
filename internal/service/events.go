package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventClassCreated      EventType = "class_created"
	EventClassUpdated      EventType = "class_updated"
	EventClassDeleted      EventType = "class_deleted"
	EventStudentCreated    EventType = "student_created"
	EventStudentUpdated    EventType = "student_updated"
	EventStudentDeleted    EventType = "student_deleted"
	EventTeacherCreated    EventType = "teacher_created"
	EventTeacherUpdated    EventType = "teacher_updated"
	EventTeacherDeleted    EventType = "teacher_deleted"
	EventSubjectCreated    EventType = "subject_created"
	EventSubjectUpdated    EventType = "subject_updated"
	EventSubjectDeleted    EventType = "subject_deleted"
	EventGradeSaved        EventType = "grade_saved"
	EventGradeDeleted      EventType = "grade_deleted"
	EventScheduleChanged   EventType = "schedule_changed"
	EventAttendanceCreated EventType = "attendance_created"
	EventAttendanceUpdated EventType = "attendance_updated"
	EventAttendanceDeleted EventType = "attendance_deleted"
	EventStoreReplaced     EventType = "store_replaced"
)

// Structural reports whether the event changes teachers, the weekly
// schedule or the whole store. These are the changes that invalidate the
// cached reconstruction script.
func (t EventType) Structural() bool {
	switch t {
	case EventTeacherCreated, EventTeacherUpdated, EventTeacherDeleted,
		EventScheduleChanged, EventStoreReplaced:
		return true
	}
	return false
}

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
	listeners   map[int]func(Event)
	nextID      int
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber. The channel is not closed.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Listen registers fn to be called synchronously for every published
// event. fn runs on the publisher's goroutine, so it must not block.
// The returned func removes the listener.
func (eb *EventBus) Listen(fn func(Event)) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.listeners == nil {
		eb.listeners = make(map[int]func(Event))
	}
	id := eb.nextID
	eb.nextID++
	eb.listeners[id] = fn
	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		delete(eb.listeners, id)
	}
}

// Publish sends an event to all listeners and subscribers. Channel
// subscribers that are not ready miss the event; listeners never do.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, fn := range eb.listeners {
		fn(event)
	}
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
