package tower

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/cellular-simulator/model"
	"github.com/signalsfoundry/cellular-simulator/roster"
)

// Tower is one generation's cell tower: a profile, an antenna count and
// the devices assigned to its channel slots.
type Tower struct {
	profile  Profile
	antennas int
	users    *roster.Roster
}

// New builds an empty tower with the profile's default antenna count.
func New(p Profile) (*Tower, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Tower{
		profile:  p,
		antennas: p.DefaultAntennas,
		users:    roster.New(p.Capacity(p.DefaultAntennas)),
	}, nil
}

// ForGeneration builds an empty tower from the built-in profile of gen.
func ForGeneration(gen model.Generation) (*Tower, error) {
	p, err := DefaultProfile(gen)
	if err != nil {
		return nil, err
	}
	return New(p)
}

// Profile returns a copy of the tower's profile.
func (t *Tower) Profile() Profile { return t.profile }

// Generation returns the tower's generation.
func (t *Tower) Generation() model.Generation { return t.profile.Generation }

// Antennas returns the active antenna count.
func (t *Tower) Antennas() int { return t.antennas }

// SetAntennas changes the antenna count. n must lie in 1..MaxAntennas and
// must not shrink capacity below the users already assigned.
func (t *Tower) SetAntennas(n int) error {
	if n < 1 || n > t.profile.MaxAntennas {
		return fmt.Errorf("%w: %s antennas must be within 1..%d, got %d",
			model.ErrInvalidConfiguration, t.profile.Generation, t.profile.MaxAntennas, n)
	}
	if capacity := t.profile.Capacity(n); t.users.Len() > capacity {
		return fmt.Errorf("%w: %d antennas hold %d users but %d are assigned",
			model.ErrInvalidConfiguration, n, capacity, t.users.Len())
	}
	t.antennas = n
	return nil
}

// Channels returns the primary-band channel count.
func (t *Tower) Channels() int { return t.profile.Channels() }

// TotalCapacity returns the number of users the tower can hold.
func (t *Tower) TotalCapacity() int { return t.profile.Capacity(t.antennas) }

// CoresNeeded returns how many cellular cores a fully loaded tower needs
// when each user emits messagesPerUser messages and every 100 messages carry
// overheadPercent messages of extra load. The result is rounded up.
func (t *Tower) CoresNeeded(messagesPerUser, overheadPercent int) (int, error) {
	if messagesPerUser < 0 {
		return 0, fmt.Errorf("%w: negative messages per user %d", model.ErrInvalidConfiguration, messagesPerUser)
	}
	if overheadPercent < 0 || overheadPercent > model.MaxOverheadPercent {
		return 0, fmt.Errorf("%w: overhead %d%% outside 0..%d", model.ErrInvalidConfiguration, overheadPercent, model.MaxOverheadPercent)
	}
	perCore := 100 * MessagesPerCore
	load, ok := mulWithin(math.MaxInt-perCore, t.TotalCapacity(), messagesPerUser, 100+overheadPercent)
	if !ok {
		return 0, fmt.Errorf("%w: %s message load overflows at %d messages per user",
			model.ErrInvalidConfiguration, t.profile.Generation, messagesPerUser)
	}
	return (load + perCore - 1) / perCore, nil
}

// AddUser assigns a device to the tower.
func (t *Tower) AddUser(u *model.UserDevice) error {
	if capacity := t.TotalCapacity(); t.users.Len() >= capacity {
		return fmt.Errorf("%w: %s tower is full at %d users", model.ErrCapacityExceeded, t.profile.Generation, capacity)
	}
	return t.users.Add(u)
}

// Placement returns the slot of the k-th user in assignment order: the
// primary band before the secondary band, then antenna, then channel.
// ok is false when k falls outside the tower's capacity.
func (t *Tower) Placement(k int) (channel, antenna int, band model.Band, ok bool) {
	if k < 0 || k >= t.TotalCapacity() {
		return 0, 0, model.BandPrimary, false
	}
	p := t.profile

	perAntenna := p.Channels() * p.UsersPerChannel
	primary := perAntenna * t.antennas
	if k < primary {
		return (k % perAntenna) / p.UsersPerChannel, k / perAntenna, model.BandPrimary, true
	}
	k -= primary

	perAntenna = p.SecondaryChannels() * p.UsersPerMHz
	return (k % perAntenna) / p.UsersPerMHz, k / perAntenna, model.BandSecondary, true
}

// Populate fills every free slot with sequentially numbered users and
// returns how many were added. Users already on the tower are taken to
// occupy the earliest slots.
func (t *Tower) Populate() (int, error) {
	added := 0
	for k := t.users.Len(); k < t.TotalCapacity(); k++ {
		channel, antenna, band, ok := t.Placement(k)
		if !ok {
			break
		}
		u := model.NewUserDevice(k, t.profile.Generation, channel, antenna, band)
		if err := t.AddUser(u); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// FirstChannelUsers returns the IDs of users on channel 0, antenna 0 of the
// primary band, in assignment order.
func (t *Tower) FirstChannelUsers() []int {
	users := t.users.Filter((*model.UserDevice).OnFirstChannel)
	ids := make([]int, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

// ChannelLoads returns the number of users on every channel slot across
// bands and antennas, in assignment order. Empty slots count as zero.
func (t *Tower) ChannelLoads() []float64 {
	p := t.profile
	primary := p.Channels() * t.antennas
	secondary := 0
	if p.HasSecondaryBand() {
		secondary = p.SecondaryChannels() * t.antennas
	}
	loads := make([]float64, primary+secondary)
	for _, u := range t.users.All() {
		var idx int
		if u.Band == model.BandPrimary {
			idx = u.Antenna*p.Channels() + u.Channel
		} else {
			idx = primary + u.Antenna*p.SecondaryChannels() + u.Channel
		}
		if idx >= 0 && idx < len(loads) {
			loads[idx]++
		}
	}
	return loads
}

// NumUsers returns the number of assigned users.
func (t *Tower) NumUsers() int { return t.users.Len() }

// User returns the i-th assigned user.
func (t *Tower) User(i int) (*model.UserDevice, error) { return t.users.Get(i) }

// Users returns a snapshot of the assigned users.
func (t *Tower) Users() []*model.UserDevice { return t.users.All() }

// MessageLoad sums the messages generated by every active user.
func (t *Tower) MessageLoad() int {
	total := 0
	for _, u := range t.users.All() {
		if u.Active {
			total += u.MessagesGenerated()
		}
	}
	return total
}

// Subscribe forwards to the underlying roster.
func (t *Tower) Subscribe(fn func(roster.Event)) (unsubscribe func()) {
	return t.users.Subscribe(fn)
}

// Reset removes every user.
func (t *Tower) Reset() { t.users.Clear() }
