package events

import (
	"sync"
)

// Event types published by the pipeline stages. Mirrored verbatim to
// websocket observers, so the names are part of the client protocol.
const (
	TypeDownloadStarted   = "download_started"
	TypeDownloadProgress  = "download_progress"
	TypeDownloadCompleted = "download_completed"
	TypeDownloadError     = "download_error"

	TypeTranscribeStarted   = "transcribe_started"
	TypeTranscribeCompleted = "transcribe_completed"

	TypeTranslateStarted   = "translate_started"
	TypeTranslateCompleted = "translate_completed"
	TypeTranslateError     = "translate_error"

	TypeVocabularyStarted   = "vocabulary_started"
	TypeVocabularyCompleted = "vocabulary_completed"
	TypeVocabularyError     = "vocabulary_error"

	TypeAppreciationStarted   = "appreciation_started"
	TypeAppreciationCompleted = "appreciation_completed"
	TypeAppreciationError     = "appreciation_error"

	TypeProcessError = "process_error"

	TypePong = "pong"
)

// Event is a transient progress message fanned out to observers. It is
// never persisted.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Hub is a process-scoped publish/subscribe fan-out for pipeline progress.
// Subscribers receive every event broadcast after they attach; there is no
// replay for late joiners. Broadcast never blocks: a subscriber whose
// buffer is full simply misses that event.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	// buffer size for new subscriber channels
	size int
}

// NewHub creates an empty hub. Subscriber channels buffer up to size
// events; size <= 0 selects a default of 32.
func NewHub(size int) *Hub {
	if size <= 0 {
		size = 32
	}
	return &Hub{
		subs: make(map[chan Event]struct{}),
		size: size,
	}
}

// Subscribe attaches a new observer and returns its event channel together
// with a detach function. The detach function is idempotent and closes the
// channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.size)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	detach := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, detach
}

// Broadcast delivers an event to every attached subscriber. Delivery is
// fire-and-forget: slow subscribers drop the event rather than stall the
// publisher, and failures never affect pipeline correctness.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			// subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of attached observers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
