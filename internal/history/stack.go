// Package history keeps a bounded undo/redo stack of composition
// snapshots. Entries are stored compressed and deduplicated by content.
package history

import (
	"errors"
	"sync"

	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/typeid"
)

// DefaultLimit is the number of undo entries kept when none is configured.
const DefaultLimit = 100

// ErrEmpty is returned by Undo and Redo when there is nothing to restore.
var ErrEmpty = errors.New("history: nothing to restore")

// Entry is one recorded state.
type Entry struct {
	ID          string
	Fingerprint Fingerprint
	data        []byte
}

// Size reports the compressed size of the entry.
func (e Entry) Size() int { return len(e.data) }

// Snapshot decodes the stored state.
func (e Entry) Snapshot() (engine.Snapshot, error) {
	return Decode(e.data)
}

// Stack records snapshots for undo and redo. The zero value is not
// usable; create stacks with New.
type Stack struct {
	mu    sync.Mutex
	limit int
	undo  []Entry
	redo  []Entry
}

// New returns a stack keeping at most limit undo entries. A limit below 1
// uses DefaultLimit.
func New(limit int) *Stack {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Stack{limit: limit}
}

// Push records s as the newest state. A snapshot identical to the current
// top is ignored and reported with ok false. Pushing clears the redo list.
func (h *Stack) Push(s engine.Snapshot) (entry Entry, ok bool, err error) {
	data, fp, err := Encode(s)
	if err != nil {
		return Entry{}, false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.undo); n > 0 && h.undo[n-1].Fingerprint == fp {
		return h.undo[n-1], false, nil
	}
	entry = Entry{ID: typeid.NewSnapshotID(), Fingerprint: fp, data: data}
	h.undo = append(h.undo, entry)
	if over := len(h.undo) - h.limit; over > 0 {
		h.undo = append(h.undo[:0:0], h.undo[over:]...)
	}
	h.redo = nil
	return entry, true, nil
}

// Undo moves the newest entry to the redo list and returns the state
// before it. The oldest entry is the baseline and is never popped.
func (h *Stack) Undo() (engine.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.undo)
	if n < 2 {
		return engine.Snapshot{}, ErrEmpty
	}
	prev := h.undo[n-2]
	s, err := prev.Snapshot()
	if err != nil {
		return engine.Snapshot{}, err
	}
	h.redo = append(h.redo, h.undo[n-1])
	h.undo = h.undo[:n-1]
	return s, nil
}

// Redo reapplies the most recently undone entry.
func (h *Stack) Redo() (engine.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.redo)
	if n == 0 {
		return engine.Snapshot{}, ErrEmpty
	}
	next := h.redo[n-1]
	s, err := next.Snapshot()
	if err != nil {
		return engine.Snapshot{}, err
	}
	h.undo = append(h.undo, next)
	h.redo = h.redo[:n-1]
	return s, nil
}

// Top returns the current entry.
func (h *Stack) Top() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return Entry{}, false
	}
	return h.undo[len(h.undo)-1], true
}

// CanUndo reports whether Undo would succeed.
func (h *Stack) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 1
}

// CanRedo reports whether Redo would succeed.
func (h *Stack) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Len returns the number of undo entries including the baseline.
func (h *Stack) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

// Reset drops every entry.
func (h *Stack) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
}
