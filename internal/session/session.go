// Package session serializes access to one composition. Every accepted
// operation is numbered and recorded in an undo history.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/heraldry/internal/codec"
	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/history"
	"github.com/inamate/heraldry/internal/typeid"
)

// DefaultPasteOffset shifts pasted layers so they do not hide their source.
const DefaultPasteOffset = 0.02

// Session holds the authoritative composition for one editing surface.
type Session struct {
	mu      sync.Mutex
	comp    *engine.Composition
	codec   *codec.Codec
	history *history.Stack
	seq     int64

	pasteOffset  float64
	rotationMode engine.RotationMode
	historyLimit int
	observer     engine.Observer
	logger       *slog.Logger
}

type Option func(*Session)

func WithCodec(c *codec.Codec) Option {
	return func(s *Session) { s.codec = c }
}

func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.historyLimit = n }
}

func WithPasteOffset(off float64) Option {
	return func(s *Session) { s.pasteOffset = off }
}

// WithRotationMode sets the mode used when a rotate operation names none.
func WithRotationMode(m engine.RotationMode) Option {
	return func(s *Session) { s.rotationMode = m }
}

func WithObserver(o engine.Observer) Option {
	return func(s *Session) { s.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session over an empty composition. The empty state is the
// first history entry.
func New(opts ...Option) *Session {
	s := &Session{
		pasteOffset:  DefaultPasteOffset,
		rotationMode: engine.ModeAuto,
		historyLimit: history.DefaultLimit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.codec == nil {
		s.codec = codec.New(codec.WithLogger(s.logger))
	}
	s.comp = engine.New(engine.WithObserver(s.observer))
	s.history = history.New(s.historyLimit)
	s.recordLocked()
	return s
}

// Load replaces the composition with text and restarts history from it.
// A loose fragment is pasted and recorded like any edit. Text holding no
// coat of arms changes nothing.
func (s *Session) Load(text string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.codec.Decode(text)
	if errors.Is(err, codec.ErrNotComposition) {
		s.logger.Debug("ignoring text without a coat of arms", "bytes", len(text))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ids, err := s.codec.Apply(s.comp, d)
	if err != nil {
		return nil, err
	}
	if d.Full {
		s.history.Reset()
	}
	s.recordLocked()
	return ids, nil
}

// Apply applies one operation and returns its sequence number. Failed
// operations leave the sequence and history untouched.
func (s *Session) Apply(op Operation) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if op.ID == "" {
		op.ID = typeid.NewOpID()
	}
	res := Result{OperationID: op.ID}

	var err error
	switch op.Type {
	case TypeUndo:
		err = s.restoreLocked(s.history.Undo)
	case TypeRedo:
		err = s.restoreLocked(s.history.Redo)
	default:
		err = s.applyOperationLocked(op, &res)
	}
	if err != nil {
		s.logger.Debug("operation rejected", "id", op.ID, "type", op.Type, "err", err)
		return Result{}, fmt.Errorf("%s: %w", op.Type, err)
	}

	s.seq++
	res.Seq = s.seq
	if recordable(op.Type) {
		res.Snapshot = s.recordLocked()
	}
	return res, nil
}

// ApplyAll applies operations in order and stops at the first failure.
// The results of the operations that succeeded are returned with the error.
func (s *Session) ApplyAll(ops []Operation) ([]Result, error) {
	results := make([]Result, 0, len(ops))
	for i, op := range ops {
		r, err := s.Apply(op)
		if err != nil {
			return results, fmt.Errorf("operation %d: %w", i, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Undo restores the previous history entry.
func (s *Session) Undo() error {
	_, err := s.Apply(Operation{Type: TypeUndo})
	return err
}

// Redo reapplies the last undone entry.
func (s *Session) Redo() error {
	_, err := s.Apply(Operation{Type: TypeRedo})
	return err
}

// CanUndo reports whether an earlier state is recorded.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether an undone state can be reapplied.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Seq returns the number of operations applied so far.
func (s *Session) Seq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// View runs fn with the composition under the session lock. fn must not
// mutate it.
func (s *Session) View(fn func(c *engine.Composition) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.comp)
}

// Update runs fn with the composition under the session lock and records
// the resulting state when fn succeeds.
func (s *Session) Update(fn func(c *engine.Composition) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.comp); err != nil {
		return err
	}
	s.seq++
	s.recordLocked()
	return nil
}

// Serialize renders the whole composition.
func (s *Session) Serialize() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec.Serialize(s.comp)
}

// SerializeLayers renders only the listed layers.
func (s *Session) SerializeLayers(uuids []string, stripContainer bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec.SerializeLayers(s.comp, uuids, stripContainer)
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comp.Snapshot()
}

// Fingerprint returns the content hash of the current state.
func (s *Session) Fingerprint() (history.Fingerprint, error) {
	return history.Sum(s.Snapshot())
}

// ContentFingerprint hashes the current state without layer identities.
func (s *Session) ContentFingerprint() (history.Fingerprint, error) {
	return history.ContentSum(s.Snapshot())
}

func (s *Session) recordLocked() string {
	entry, _, err := s.history.Push(s.comp.Snapshot())
	if err != nil {
		s.logger.Warn("history record failed", "err", err)
		return ""
	}
	return entry.ID
}

func (s *Session) restoreLocked(step func() (engine.Snapshot, error)) error {
	snap, err := step()
	if errors.Is(err, history.ErrEmpty) {
		return fmt.Errorf("%w: %v", engine.ErrInvalid, err)
	}
	if err != nil {
		return err
	}
	return s.comp.SetSnapshot(snap)
}

// recordable reports whether an operation ends a user-visible change.
// Intermediate gesture steps are recorded when the gesture ends.
func recordable(typ string) bool {
	switch typ {
	case TypeUndo, TypeRedo, TypeRotationBegin, TypeRotationApply:
		return false
	}
	return true
}
