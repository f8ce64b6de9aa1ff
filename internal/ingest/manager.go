// Package ingest orchestrates one statement upload end to end: validate the
// file, stream model output through the reassembler and decoder, assign
// identities, and append accepted transactions to the store in per-chunk
// batches while publishing progress events.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/bankstream/bankstream/internal/identity"
	"github.com/bankstream/bankstream/internal/llm"
	"github.com/bankstream/bankstream/internal/record"
	"github.com/bankstream/bankstream/internal/store"
	"github.com/bankstream/bankstream/internal/stream"
	"github.com/rs/zerolog"
)

// DefaultResetDelay is how long a validation failure stays visible before
// the session auto-recovers to Idle.
const DefaultResetDelay = 3 * time.Second

// ErrInvalidFile rejects uploads that are not PDFs.
var ErrInvalidFile = errors.New("file must be a PDF")

// ValidateUpload checks the declared type of an upload: MIME type
// "application/pdf" or a ".pdf" filename suffix. Rejected files never reach
// the pipeline.
func ValidateUpload(filename, contentType string) error {
	if contentType == "application/pdf" {
		return nil
	}
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil
	}
	return fmt.Errorf("%w: got %q (content type %q)", ErrInvalidFile, filename, contentType)
}

// Manager runs at most one ingestion session at a time. Starting a new
// upload cancels the in-flight session; the superseded session stops
// publishing and its stale chunks are ignored.
type Manager struct {
	streamer llm.StatementStreamer
	store    *store.TransactionStore
	notes    identity.NoteRestorer
	log      zerolog.Logger

	// ResetDelay is the Failed->Idle auto-recovery delay after a
	// validation failure. Tests shorten it.
	ResetDelay time.Duration

	mu  sync.Mutex
	cur *Session
}

// NewManager wires the pipeline. notes may be nil when note restoration is
// disabled.
func NewManager(streamer llm.StatementStreamer, txs *store.TransactionStore, notes identity.NoteRestorer, log zerolog.Logger) *Manager {
	return &Manager{
		streamer:   streamer,
		store:      txs,
		notes:      notes,
		log:        log,
		ResetDelay: DefaultResetDelay,
	}
}

// Current returns the most recent session, or nil before the first upload.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cur
}

// Start begins a new ingestion session for the uploaded file, cancelling
// any session still in flight. On validation failure the returned session
// is already Failed and will auto-recover to Idle after ResetDelay; the
// error is returned alongside it.
func (m *Manager) Start(filename, contentType string, pdfBytes []byte) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur != nil {
		m.cur.abort()
	}

	if err := ValidateUpload(filename, contentType); err != nil {
		sess := newSession(filename, nil)
		sess.failValidation(err.Error())
		sess.scheduleReset(m.ResetDelay)
		m.cur = sess

		m.log.Warn().Str("filename", filename).Str("content_type", contentType).Msg("upload rejected")
		return sess, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := newSession(filename, cancel)
	m.cur = sess

	go m.run(ctx, sess, pdfBytes)
	return sess, nil
}

func (m *Manager) run(ctx context.Context, s *Session, pdfBytes []byte) {
	log := m.log.With().Str("session_id", s.id).Str("filename", s.filename).Logger()

	src, err := m.streamer.StreamStatement(ctx, pdfBytes)
	if err != nil {
		if ctx.Err() != nil {
			s.supersede()
			return
		}
		log.Error().Err(err).Msg("submitting statement failed")
		s.fail(fmt.Sprintf("submitting statement: %v", err))
		return
	}

	// Previous results stay visible right up until this session actually
	// starts streaming. The reset runs under the manager lock so a session
	// that was superseded while waiting on the collaborator can never wipe
	// its replacement's store.
	m.mu.Lock()
	if m.cur != s {
		m.mu.Unlock()
		s.supersede()
		return
	}
	m.store.Reset()
	m.mu.Unlock()

	s.setState(StateStreaming)
	log.Info().Msg("streaming extraction started")

	asm := stream.New()
	asg := identity.New(m.notes)

	for {
		chunk, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				s.supersede()
				return
			}
			log.Error().Err(err).Int("accepted", asg.Assigned()).Msg("stream failed, keeping partial results")
			s.fail(fmt.Sprintf("streaming extraction: %v", err))
			return
		}
		if ctx.Err() != nil {
			s.supersede()
			return
		}

		m.ingestLines(log, s, asg, asm.Push(chunk))
	}

	// End-of-stream flush: the trailing carryover gets one decode attempt
	// as a complete line.
	if line, ok := asm.Flush(); ok {
		m.ingestLines(log, s, asg, []string{line})
	}

	m.mu.Lock()
	current := m.cur == s
	m.mu.Unlock()
	if !current {
		s.supersede()
		return
	}
	s.complete()

	snap := s.Snapshot()
	log.Info().Int("accepted", snap.Accepted).Int("rejected", snap.Rejected).Msg("ingestion completed")
}

// ingestLines decodes the released lines, assigns identities and appends
// the accepted records as one atomic batch. Decode rejections are logged
// and never interrupt the stream.
//
// The append is gated on this session still being current: cancellation can
// land while the goroutine is already in here (a note lookup against the
// file store can block past the ctx check in run), and by the time it
// resumes a newer session may have reset the store. Stale batches are
// dropped, not appended.
func (m *Manager) ingestLines(log zerolog.Logger, s *Session, asg *identity.Assigner, lines []string) {
	if len(lines) == 0 {
		return
	}

	batch := make([]domain.Transaction, 0, len(lines))
	for _, line := range lines {
		rec, err := record.Decode(line)
		if err != nil {
			s.noteReject()
			log.Debug().Err(err).Str("line", truncateLine(line)).Msg("record line rejected")
			continue
		}
		if rec == nil {
			continue
		}
		batch = append(batch, asg.Assign(*rec))
	}

	if len(batch) == 0 {
		return
	}

	m.mu.Lock()
	if m.cur != s {
		m.mu.Unlock()
		log.Debug().Int("dropped", len(batch)).Msg("superseded session batch dropped")
		return
	}
	m.store.AppendBatch(batch)
	m.mu.Unlock()

	s.publishBatch(batch)
}

func truncateLine(line string) string {
	const max = 200
	if len(line) > max {
		return line[:max] + "..."
	}
	return line
}
