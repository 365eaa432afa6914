// Package history keeps the linear undo/redo timeline of canvas snapshots.
//
// A History is a sequence of immutable entries plus a cursor. The entry under
// the cursor is the state the editor displays. Committing after an undo
// discards every entry past the cursor; there is no branch tree.
//
// The timeline is unbounded. Each entry holds a full copy of the canvas, so
// long sessions grow memory linearly with the number of commits; Bytes reports
// the current footprint for callers that want to watch it.
package history

import (
	"errors"
	"image"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoPriorState is returned by Undo when the cursor is at the oldest entry.
	ErrNoPriorState = errors.New("no prior state")
	// ErrNoFutureState is returned by Redo when the cursor is at the newest entry.
	ErrNoFutureState = errors.New("no future state")
	// ErrEmptyHistory is returned by Current before anything was committed.
	ErrEmptyHistory = errors.New("history is empty")
)

// Entry is one committed canvas state.
type Entry struct {
	ID    uuid.UUID
	Label string
	Time  time.Time

	canvas *image.NRGBA
}

// Canvas returns a private copy of the snapshot. Callers may modify it freely.
func (e Entry) Canvas() *image.NRGBA {
	return cloneNRGBA(e.canvas)
}

// Bounds reports the snapshot size without copying pixels.
func (e Entry) Bounds() image.Rectangle {
	if e.canvas == nil {
		return image.Rectangle{}
	}
	return e.canvas.Bounds()
}

// History is not safe for concurrent use.
type History struct {
	entries []Entry
	cursor  int
	now     func() time.Time // nil uses time.Now
}

// New returns a history whose first entry is a copy of initial.
func New(initial image.Image, label string) *History {
	h := &History{}
	h.Commit(initial, label)
	return h
}

// Commit appends a deep copy of canvas after the cursor and moves the cursor
// onto it. Entries after the old cursor are dropped. Identical consecutive
// canvases are stored twice.
func (h *History) Commit(canvas image.Image, label string) Entry {
	e := Entry{
		ID:     uuid.New(),
		Label:  label,
		Time:   h.clock(),
		canvas: toNRGBA(canvas),
	}
	if len(h.entries) > 0 {
		// Clear dropped tail so the snapshots can be collected.
		for i := h.cursor + 1; i < len(h.entries); i++ {
			h.entries[i] = Entry{}
		}
		h.entries = h.entries[:h.cursor+1]
	}
	h.entries = append(h.entries, e)
	h.cursor = len(h.entries) - 1
	return e
}

// Undo moves the cursor back one entry and returns it.
func (h *History) Undo() (Entry, error) {
	if len(h.entries) == 0 {
		return Entry{}, ErrEmptyHistory
	}
	if h.cursor == 0 {
		return Entry{}, ErrNoPriorState
	}
	h.cursor--
	return h.entries[h.cursor], nil
}

// Redo moves the cursor forward one entry and returns it.
func (h *History) Redo() (Entry, error) {
	if len(h.entries) == 0 {
		return Entry{}, ErrEmptyHistory
	}
	if h.cursor >= len(h.entries)-1 {
		return Entry{}, ErrNoFutureState
	}
	h.cursor++
	return h.entries[h.cursor], nil
}

// Current returns the entry under the cursor.
func (h *History) Current() (Entry, error) {
	if len(h.entries) == 0 {
		return Entry{}, ErrEmptyHistory
	}
	return h.entries[h.cursor], nil
}

// Reset discards every entry and starts over from canvas.
func (h *History) Reset(canvas image.Image, label string) Entry {
	for i := range h.entries {
		h.entries[i] = Entry{}
	}
	h.entries = h.entries[:0]
	h.cursor = 0
	return h.Commit(canvas, label)
}

func (h *History) Len() int    { return len(h.entries) }
func (h *History) Cursor() int { return h.cursor }

func (h *History) CanUndo() bool { return len(h.entries) > 0 && h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Labels lists entry labels oldest first.
func (h *History) Labels() []string {
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Label
	}
	return out
}

// Bytes is the approximate pixel memory held by all entries.
func (h *History) Bytes() int {
	n := 0
	for _, e := range h.entries {
		if e.canvas != nil {
			n += len(e.canvas.Pix)
		}
	}
	return n
}

func (h *History) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}
