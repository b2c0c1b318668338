package host

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// SlotToolbar is the slot rendered as the toolbar.
const SlotToolbar = "toolbar"

// Fill is a UI contribution to a slot.
type Fill struct {
	Label    string
	OnClick  func()
	Priority int // higher renders first

	id string
}

// ID identifies the fill within its slot.
func (f Fill) ID() string { return f.id }

// Slots keeps plugin contributions per slot.
type Slots struct {
	mu    sync.RWMutex
	fills map[string][]Fill
}

// NewSlots creates an empty slot registry.
func NewSlots() *Slots {
	return &Slots{fills: make(map[string][]Fill)}
}

// Fill adds f to slot. Cancelling the returned subscription removes it.
func (s *Slots) Fill(slot string, f Fill) *FillSubscription {
	f.id = uuid.NewString()

	s.mu.Lock()
	s.fills[slot] = append(s.fills[slot], f)
	s.mu.Unlock()

	return &FillSubscription{id: f.id, slot: slot, slots: s}
}

// Fills returns the contributions of slot, highest priority first, then in
// registration order.
func (s *Slots) Fills(slot string) []Fill {
	s.mu.RLock()
	fills := slices.Clone(s.fills[slot])
	s.mu.RUnlock()

	slices.SortStableFunc(fills, func(a, b Fill) int { return b.Priority - a.Priority })
	return fills
}

func (s *Slots) remove(slot, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fills[slot] = slices.DeleteFunc(s.fills[slot], func(f Fill) bool { return f.id == id })
}

// FillSubscription removes a fill when cancelled.
type FillSubscription struct {
	id    string
	slot  string
	slots *Slots
	once  sync.Once
}

// ID returns the fill id.
func (f *FillSubscription) ID() string { return f.id }

// Cancel removes the fill. Calling it more than once is harmless.
func (f *FillSubscription) Cancel() {
	f.once.Do(func() { f.slots.remove(f.slot, f.id) })
}
