package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/google/uuid"
)

// State is the ingestion session state machine. The happy path is
// Idle -> Submitting -> Streaming -> Completed; Failed is reachable from
// Submitting and Streaming.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateStreaming  State = "streaming"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// EventType discriminates session events.
type EventType string

const (
	// EventState signals a state transition.
	EventState EventType = "state"
	// EventBatch carries newly appended transactions, one event per chunk
	// that yielded at least one accepted record.
	EventBatch EventType = "batch"
)

// Event is what session subscribers receive.
type Event struct {
	Type  EventType            `json:"type"`
	State State                `json:"state,omitempty"`
	Error string               `json:"error,omitempty"`
	Batch []domain.Transaction `json:"batch,omitempty"`
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename,omitempty"`
	State     State  `json:"state"`
	Error     string `json:"error,omitempty"`
	Accepted  int    `json:"accepted"`
	Rejected  int    `json:"rejected"`
}

// Session tracks one ingestion attempt. All mutation goes through the
// manager; handlers only read snapshots and subscribe to events.
type Session struct {
	id       string
	filename string
	cancel   context.CancelFunc

	mu         sync.Mutex
	state      State
	errMsg     string
	accepted   int
	rejected   int
	subs       map[chan Event]struct{}
	resetTimer *time.Timer

	done     chan struct{}
	doneOnce sync.Once
}

func newSession(filename string, cancel context.CancelFunc) *Session {
	return &Session{
		id:       uuid.NewString(),
		filename: filename,
		cancel:   cancel,
		state:    StateSubmitting,
		subs:     make(map[chan Event]struct{}),
		done:     make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Done is closed once the session reaches a terminal state or is
// superseded by a newer upload.
func (s *Session) Done() <-chan struct{} { return s.done }

// Snapshot returns the current session view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		SessionID: s.id,
		Filename:  s.filename,
		State:     s.state,
		Error:     s.errMsg,
		Accepted:  s.accepted,
		Rejected:  s.rejected,
	}
}

// Subscribe registers an event channel and returns it with an unsubscribe
// function. A session that already finished returns a closed channel.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)

	s.mu.Lock()
	if s.subs == nil {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.subs != nil {
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
		}
	}
}

// publish sends an event to every subscriber without blocking the pipeline;
// a subscriber that cannot keep up misses events but will see the final
// state through Snapshot. Callers hold the lock.
func (s *Session) publish(ev Event) {
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = st
	s.publish(Event{Type: EventState, State: st})
}

func (s *Session) publishBatch(batch []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accepted += len(batch)
	s.publish(Event{Type: EventBatch, Batch: batch})
}

func (s *Session) noteReject() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rejected++
}

// fail moves the session to Failed and finishes it. Already-ingested
// transactions stay in the store; partial results are more useful than none.
func (s *Session) fail(msg string) {
	s.mu.Lock()
	s.state = StateFailed
	s.errMsg = msg
	s.publish(Event{Type: EventState, State: StateFailed, Error: msg})
	s.mu.Unlock()

	s.finish()
}

// failValidation moves to Failed without finishing; the manager schedules
// the auto-recovery back to Idle.
func (s *Session) failValidation(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateFailed
	s.errMsg = msg
	s.publish(Event{Type: EventState, State: StateFailed, Error: msg})
}

// scheduleReset arms the delayed Failed->Idle auto-recovery.
func (s *Session) scheduleReset(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetTimer = time.AfterFunc(d, s.resetIdle)
}

// resetIdle is the delayed auto-recovery after a validation failure.
func (s *Session) resetIdle() {
	s.mu.Lock()
	if s.state == StateFailed {
		s.state = StateIdle
		s.errMsg = ""
		s.publish(Event{Type: EventState, State: StateIdle})
	}
	s.mu.Unlock()

	s.finish()
}

func (s *Session) complete() {
	s.mu.Lock()
	s.state = StateCompleted
	s.publish(Event{Type: EventState, State: StateCompleted})
	s.mu.Unlock()

	s.finish()
}

// supersede ends a session that lost the race to a newer upload. No state
// event is published; stale sessions go quiet instead of reporting failure.
func (s *Session) supersede() {
	s.finish()
}

// abort is called by the manager when a new upload replaces this session.
func (s *Session) abort() {
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Lock()
	if s.resetTimer != nil {
		s.resetTimer.Stop()
	}
	s.mu.Unlock()
	s.finish()
}

// finish closes Done and releases all subscribers, exactly once.
func (s *Session) finish() {
	s.doneOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		defer s.mu.Unlock()
		for ch := range s.subs {
			close(ch)
		}
		s.subs = nil
	})
}
