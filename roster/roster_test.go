package roster

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/signalsfoundry/cellular-simulator/model"
)

func TestAddAndGet(t *testing.T) {
	r := New(4)
	for i := range 3 {
		if err := r.Add(model.NewUserDevice(i, model.Gen3G, 0, 0, model.BandPrimary)); err != nil {
			t.Fatalf("Add(%d) error: %v", i, err)
		}
	}
	if got := r.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	u, err := r.Get(2)
	if err != nil {
		t.Fatalf("Get(2) error: %v", err)
	}
	if u.ID != 2 {
		t.Fatalf("Get(2).ID = %d, want 2", u.ID)
	}
}

func TestGetOutOfBounds(t *testing.T) {
	r := New(0)
	if err := r.Add(model.NewUserDevice(0, model.Gen2G, 0, 0, model.BandPrimary)); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	for _, i := range []int{-1, 1, 100} {
		if _, err := r.Get(i); !errors.Is(err, model.ErrIndexOutOfBounds) {
			t.Fatalf("Get(%d) error = %v, want ErrIndexOutOfBounds", i, err)
		}
	}
}

func TestAddNil(t *testing.T) {
	r := New(1)
	if err := r.Add(nil); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("Add(nil) error = %v, want ErrInvalidConfiguration", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len() = %d after rejected add, want 0", r.Len())
	}
}

func TestFilterAndSnapshot(t *testing.T) {
	r := New(10)
	for i := range 10 {
		_ = r.Add(model.NewUserDevice(i, model.Gen4G, i%2, 0, model.BandPrimary))
	}
	even := r.Filter(func(u *model.UserDevice) bool { return u.Channel == 0 })
	if len(even) != 5 {
		t.Fatalf("Filter returned %d users, want 5", len(even))
	}
	for i, u := range even {
		if u.ID != i*2 {
			t.Fatalf("Filter()[%d].ID = %d, want %d", i, u.ID, i*2)
		}
	}

	snap := r.All()
	snap[0] = nil
	if first, _ := r.Get(0); first == nil {
		t.Fatalf("mutating All() snapshot changed the roster")
	}
}

func TestClear(t *testing.T) {
	r := New(2)
	_ = r.Add(model.NewUserDevice(0, model.Gen2G, 0, 0, model.BandPrimary))
	r.Clear()
	if r.Len() != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", r.Len())
	}
	for i, u := range r.users[:cap(r.users)] {
		if u != nil {
			t.Fatalf("slot %d still references user %d after Clear", i, u.ID)
		}
	}
}

func TestNewCapsPreallocation(t *testing.T) {
	if got := cap(New(math.MaxInt).users); got != maxPrealloc {
		t.Fatalf("cap(New(MaxInt)) = %d, want %d", got, maxPrealloc)
	}
	if got := cap(New(-4).users); got != 0 {
		t.Fatalf("cap(New(-4)) = %d, want 0", got)
	}
}

func TestSubscribe(t *testing.T) {
	r := New(2)
	var events []Event
	unsubscribe := r.Subscribe(func(e Event) { events = append(events, e) })

	_ = r.Add(model.NewUserDevice(4, model.Gen2G, 0, 0, model.BandPrimary))
	r.Clear()
	unsubscribe()
	_ = r.Add(model.NewUserDevice(5, model.Gen2G, 0, 0, model.BandPrimary))

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventUserAdded || events[0].User.ID != 4 || events[0].Len != 1 {
		t.Fatalf("first event = %+v, want add of user 4", events[0])
	}
	if events[1].Type != EventCleared {
		t.Fatalf("second event type = %v, want EventCleared", events[1].Type)
	}
}

func TestConcurrentAdds(t *testing.T) {
	r := New(0)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = r.Add(model.NewUserDevice(id, model.Gen4G, 0, 0, model.BandPrimary))
			_ = r.Len()
		}(i)
	}
	wg.Wait()
	if got := r.Len(); got != 50 {
		t.Fatalf("Len() = %d, want 50", got)
	}
}
