package model

// Per-device message mix. 2G splits traffic into data and voice; later
// generations only report a total.
const (
	DataMessages2G  = 5
	VoiceMessages2G = 15
	MessagesDefault = 10
)

// UserDevice is a synthetic subscriber parked on one channel slot.
type UserDevice struct {
	ID         int
	Generation Generation

	// Channel is the channel index within Band. On the secondary band
	// it counts 1 MHz blocks rather than narrow channels.
	Channel int
	Antenna int
	Band    Band

	Active bool
}

// NewUserDevice returns an active device at the given slot.
func NewUserDevice(id int, gen Generation, channel, antenna int, band Band) *UserDevice {
	return &UserDevice{
		ID:         id,
		Generation: gen,
		Channel:    channel,
		Antenna:    antenna,
		Band:       band,
		Active:     true,
	}
}

// DataMessages is the number of data messages the device emits.
func (u *UserDevice) DataMessages() int {
	if u.Generation == Gen2G {
		return DataMessages2G
	}
	return MessagesDefault
}

// VoiceMessages is the number of voice messages the device emits. Only 2G
// devices carry voice separately.
func (u *UserDevice) VoiceMessages() int {
	if u.Generation == Gen2G {
		return VoiceMessages2G
	}
	return 0
}

// MessagesGenerated is the total message load of the device.
func (u *UserDevice) MessagesGenerated() int {
	return u.DataMessages() + u.VoiceMessages()
}

// SetChannel moves the device to another channel in its band.
func (u *UserDevice) SetChannel(channel int) { u.Channel = channel }

// SetAntenna moves the device to another antenna.
func (u *UserDevice) SetAntenna(antenna int) { u.Antenna = antenna }

// Deactivate marks the device inactive.
func (u *UserDevice) Deactivate() { u.Active = false }

// OnFirstChannel reports whether the device sits on channel 0, antenna 0 of
// the primary band.
func (u *UserDevice) OnFirstChannel() bool {
	return u.Channel == 0 && u.Antenna == 0 && u.Band == BandPrimary
}
