package tower

import (
	"fmt"

	"github.com/signalsfoundry/cellular-simulator/model"
)

// Spectrum and load constants for the four generations. Bandwidths are in kHz.
const (
	PrimaryBandwidthKHz = 1000

	NarrowChannelKHz = 200 // 2G / 3G
	OFDMChannelKHz   = 10  // 4G / 5G primary band

	UsersPerChannel2G = 16
	UsersPerChannel3G = 32
	UsersPerChannel4G = 30

	MaxAntennas4G = 4
	MaxAntennas5G = 16

	SecondaryBandwidthKHz = 10000
	SecondaryBandMHz      = 1800
	UsersPerMHz5G         = 30

	// MessagesPerCore is the load one cellular core absorbs before another
	// is needed.
	MessagesPerCore = 1000

	// MaxCapacity bounds the users a profile may describe at its maximum
	// antenna count.
	MaxCapacity = 10_000_000
	// MaxMessagesPerUser bounds the per-user message load.
	MaxMessagesPerUser = 1_000_000
)

// Profile is the fixed parameter set of one generation's tower.
type Profile struct {
	Generation model.Generation `yaml:"-"`
	Technology string           `yaml:"technology"`

	TotalBandwidthKHz   int `yaml:"total_bandwidth_khz"`
	ChannelBandwidthKHz int `yaml:"channel_bandwidth_khz"`
	UsersPerChannel     int `yaml:"users_per_channel"`

	DefaultAntennas int `yaml:"default_antennas"`
	MaxAntennas     int `yaml:"max_antennas"`

	MessagesPerUser int `yaml:"messages_per_user"`

	// Secondary band, 5G only. Split into 1 MHz blocks of UsersPerMHz users.
	SecondaryBandwidthKHz int `yaml:"secondary_bandwidth_khz,omitempty"`
	SecondaryBandMHz      int `yaml:"secondary_band_mhz,omitempty"`
	UsersPerMHz           int `yaml:"users_per_mhz,omitempty"`
}

// DefaultProfile returns the built-in profile for gen.
func DefaultProfile(gen model.Generation) (Profile, error) {
	switch gen {
	case model.Gen2G:
		return Profile{
			Generation:          gen,
			Technology:          "TDMA (Time Division Multiple Access)",
			TotalBandwidthKHz:   PrimaryBandwidthKHz,
			ChannelBandwidthKHz: NarrowChannelKHz,
			UsersPerChannel:     UsersPerChannel2G,
			DefaultAntennas:     1,
			MaxAntennas:         1,
			MessagesPerUser:     model.DataMessages2G + model.VoiceMessages2G,
		}, nil
	case model.Gen3G:
		return Profile{
			Generation:          gen,
			Technology:          "CDMA (Code Division Multiple Access)",
			TotalBandwidthKHz:   PrimaryBandwidthKHz,
			ChannelBandwidthKHz: NarrowChannelKHz,
			UsersPerChannel:     UsersPerChannel3G,
			DefaultAntennas:     1,
			MaxAntennas:         1,
			MessagesPerUser:     model.MessagesDefault,
		}, nil
	case model.Gen4G:
		return Profile{
			Generation:          gen,
			Technology:          "OFDM (Orthogonal Frequency Division Multiplexing)",
			TotalBandwidthKHz:   PrimaryBandwidthKHz,
			ChannelBandwidthKHz: OFDMChannelKHz,
			UsersPerChannel:     UsersPerChannel4G,
			DefaultAntennas:     MaxAntennas4G,
			MaxAntennas:         MaxAntennas4G,
			MessagesPerUser:     model.MessagesDefault,
		}, nil
	case model.Gen5G:
		return Profile{
			Generation:            gen,
			Technology:            "Massive MIMO + OFDM",
			TotalBandwidthKHz:     PrimaryBandwidthKHz,
			ChannelBandwidthKHz:   OFDMChannelKHz,
			UsersPerChannel:       UsersPerChannel4G,
			DefaultAntennas:       MaxAntennas5G,
			MaxAntennas:           MaxAntennas5G,
			MessagesPerUser:       model.MessagesDefault,
			SecondaryBandwidthKHz: SecondaryBandwidthKHz,
			SecondaryBandMHz:      SecondaryBandMHz,
			UsersPerMHz:           UsersPerMHz5G,
		}, nil
	default:
		return Profile{}, fmt.Errorf("%w: %d", model.ErrUnknownGeneration, int(gen))
	}
}

// DefaultProfiles returns the built-in profile of every generation.
func DefaultProfiles() map[model.Generation]Profile {
	res := make(map[model.Generation]Profile, 4)
	for _, gen := range model.Generations() {
		p, _ := DefaultProfile(gen)
		res[gen] = p
	}
	return res
}

// Validate checks that the profile describes a buildable tower.
func (p Profile) Validate() error {
	switch {
	case !p.Generation.Valid():
		return fmt.Errorf("%w: %v", model.ErrUnknownGeneration, p.Generation)
	case p.TotalBandwidthKHz <= 0:
		return fmt.Errorf("%w: %s total bandwidth must be positive, got %d kHz", model.ErrInvalidConfiguration, p.Generation, p.TotalBandwidthKHz)
	case p.ChannelBandwidthKHz <= 0:
		return fmt.Errorf("%w: %s channel bandwidth must be positive, got %d kHz", model.ErrInvalidConfiguration, p.Generation, p.ChannelBandwidthKHz)
	case p.ChannelBandwidthKHz > p.TotalBandwidthKHz:
		return fmt.Errorf("%w: %s channel bandwidth %d kHz exceeds total %d kHz", model.ErrInvalidConfiguration, p.Generation, p.ChannelBandwidthKHz, p.TotalBandwidthKHz)
	case p.UsersPerChannel <= 0:
		return fmt.Errorf("%w: %s users per channel must be positive, got %d", model.ErrInvalidConfiguration, p.Generation, p.UsersPerChannel)
	case p.MaxAntennas <= 0:
		return fmt.Errorf("%w: %s max antennas must be positive, got %d", model.ErrInvalidConfiguration, p.Generation, p.MaxAntennas)
	case p.DefaultAntennas < 1 || p.DefaultAntennas > p.MaxAntennas:
		return fmt.Errorf("%w: %s default antennas %d outside 1..%d", model.ErrInvalidConfiguration, p.Generation, p.DefaultAntennas, p.MaxAntennas)
	case p.MessagesPerUser <= 0 || p.MessagesPerUser > MaxMessagesPerUser:
		return fmt.Errorf("%w: %s messages per user must be within 1..%d, got %d", model.ErrInvalidConfiguration, p.Generation, MaxMessagesPerUser, p.MessagesPerUser)
	case p.SecondaryBandwidthKHz < 0:
		return fmt.Errorf("%w: %s secondary bandwidth is negative", model.ErrInvalidConfiguration, p.Generation)
	case p.SecondaryBandwidthKHz > 0 && p.UsersPerMHz <= 0:
		return fmt.Errorf("%w: %s secondary band needs users per MHz", model.ErrInvalidConfiguration, p.Generation)
	}
	if _, ok := p.capacityWithin(p.MaxAntennas); !ok {
		return fmt.Errorf("%w: %s capacity at %d antennas exceeds %d users",
			model.ErrInvalidConfiguration, p.Generation, p.MaxAntennas, MaxCapacity)
	}
	return nil
}

// Channels is the number of channels on the primary band.
func (p Profile) Channels() int {
	if p.ChannelBandwidthKHz <= 0 {
		return 0
	}
	return p.TotalBandwidthKHz / p.ChannelBandwidthKHz
}

// SecondaryChannels is the number of 1 MHz blocks on the secondary band.
func (p Profile) SecondaryChannels() int {
	return p.SecondaryBandwidthKHz / 1000
}

// HasSecondaryBand reports whether the tower owns extra spectrum.
func (p Profile) HasSecondaryBand() bool {
	return p.SecondaryChannels() > 0 && p.UsersPerMHz > 0
}

// Capacity is the number of users the profile supports with the given
// antenna count.
func (p Profile) Capacity(antennas int) int {
	primary := p.Channels() * p.UsersPerChannel * antennas
	if !p.HasSecondaryBand() {
		return primary
	}
	return primary + p.SecondaryChannels()*p.UsersPerMHz*antennas
}

// capacityWithin computes Capacity(antennas) and reports false when it
// would exceed MaxCapacity.
func (p Profile) capacityWithin(antennas int) (int, bool) {
	primary, ok := mulWithin(MaxCapacity, p.Channels(), p.UsersPerChannel, antennas)
	if !ok {
		return 0, false
	}
	if !p.HasSecondaryBand() {
		return primary, true
	}
	secondary, ok := mulWithin(MaxCapacity, p.SecondaryChannels(), p.UsersPerMHz, antennas)
	if !ok || primary+secondary > MaxCapacity {
		return 0, false
	}
	return primary + secondary, true
}

// mulWithin multiplies non-negative factors and reports false as soon as
// the product would exceed limit.
func mulWithin(limit int, factors ...int) (int, bool) {
	res := 1
	for _, f := range factors {
		if f < 0 || (f != 0 && res > limit/f) {
			return 0, false
		}
		res *= f
	}
	return res, res <= limit
}
