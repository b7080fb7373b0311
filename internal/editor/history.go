package editor

// DefaultHistoryDepth is the number of snapshots kept when none is configured.
const DefaultHistoryDepth = 20

// History is a bounded undo/redo stack of buffer snapshots addressed by a
// cursor. Once anything has been pushed the cursor always indexes a valid
// entry.
type History struct {
	entries  []Snapshot
	cursor   int
	capacity int
}

// NewHistory creates an empty history holding at most capacity snapshots.
// A capacity below 1 selects DefaultHistoryDepth.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultHistoryDepth
	}
	return &History{cursor: -1, capacity: capacity}
}

// Push discards any redo branch, appends s and evicts the oldest entry when
// over capacity. The cursor moves to the new entry.
func (h *History) Push(s Snapshot) {
	clear(h.entries[h.cursor+1:])
	h.entries = append(h.entries[:h.cursor+1], s)
	if over := len(h.entries) - h.capacity; over > 0 {
		n := copy(h.entries, h.entries[over:])
		clear(h.entries[n:])
		h.entries = h.entries[:n]
	}
	h.cursor = len(h.entries) - 1
}

// Undo steps back one entry and returns it. It reports false, changing
// nothing, when already at the oldest entry.
func (h *History) Undo() (Snapshot, bool) {
	if h.cursor <= 0 {
		return Snapshot{}, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Redo steps forward one entry and returns it. It reports false, changing
// nothing, when already at the newest entry.
func (h *History) Redo() (Snapshot, bool) {
	if h.cursor >= len(h.entries)-1 {
		return Snapshot{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the index of the current entry, or -1 when empty.
func (h *History) Cursor() int { return h.cursor }

// Capacity returns the maximum number of stored snapshots.
func (h *History) Capacity() int { return h.capacity }

// Current returns the entry at the cursor.
func (h *History) Current() (Snapshot, bool) {
	if h.cursor < 0 {
		return Snapshot{}, false
	}
	return h.entries[h.cursor], true
}

// Reset drops every entry.
func (h *History) Reset() {
	clear(h.entries)
	h.entries = h.entries[:0]
	h.cursor = -1
}
