package roster

import (
	"fmt"
	"slices"
	"sync"

	"github.com/signalsfoundry/cellular-simulator/model"
)

// EventType indicates what kind of change happened in the roster.
type EventType int

const (
	EventUserAdded EventType = iota
	EventCleared
)

// Event is emitted to subscribers when the roster changes.
type Event struct {
	Type EventType
	User model.UserDevice // zero for EventCleared
	Len  int
}

// Roster is an ordered, thread-safe collection of user devices.
type Roster struct {
	mu    sync.RWMutex
	users []*model.UserDevice

	subs map[int]func(Event)
	next int
}

// maxPrealloc caps the slots New reserves up front; larger rosters grow
// on demand.
const maxPrealloc = 1 << 16

// New constructs an empty roster with room for capacity devices.
func New(capacity int) *Roster {
	capacity = min(max(capacity, 0), maxPrealloc)
	return &Roster{
		users: make([]*model.UserDevice, 0, capacity),
		subs:  make(map[int]func(Event)),
	}
}

// Add appends a device and notifies subscribers.
func (r *Roster) Add(u *model.UserDevice) error {
	if u == nil {
		return fmt.Errorf("%w: nil user device", model.ErrInvalidConfiguration)
	}
	r.mu.Lock()
	r.users = append(r.users, u)
	event := Event{Type: EventUserAdded, User: *u, Len: len(r.users)}
	subs := r.snapshotSubs()
	r.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// Get returns the device at index i.
func (r *Roster) Get(i int) (*model.UserDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i < 0 || i >= len(r.users) {
		return nil, fmt.Errorf("%w: index %d, size %d", model.ErrIndexOutOfBounds, i, len(r.users))
	}
	return r.users[i], nil
}

// Len returns the number of stored devices.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Clear drops every device and notifies subscribers.
func (r *Roster) Clear() {
	r.mu.Lock()
	clear(r.users)
	r.users = r.users[:0]
	subs := r.snapshotSubs()
	r.mu.Unlock()

	for _, sub := range subs {
		sub(Event{Type: EventCleared})
	}
}

// All returns a snapshot slice of the stored devices in insertion order.
func (r *Roster) All() []*model.UserDevice {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*model.UserDevice, len(r.users))
	copy(res, r.users)
	return res
}

// Filter returns the devices for which keep returns true, in insertion order.
func (r *Roster) Filter(keep func(*model.UserDevice) bool) []*model.UserDevice {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []*model.UserDevice
	for _, u := range r.users {
		if keep(u) {
			res = append(res, u)
		}
	}
	return res
}

// Subscribe registers a callback for roster events. It returns an
// unsubscribe function.
func (r *Roster) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.subs[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// snapshotSubs copies the subscriber set; callers hold mu.
func (r *Roster) snapshotSubs() []func(Event) {
	if len(r.subs) == 0 {
		return nil
	}
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	// Deliver in registration order.
	slices.Sort(ids)
	subs := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, r.subs[id])
	}
	return subs
}
