package model

import (
	"fmt"
	"strings"
)

// Generation identifies a cellular network generation.
type Generation int

const (
	Gen2G Generation = iota
	Gen3G
	Gen4G
	Gen5G
)

// Generations returns every supported generation in ascending order.
func Generations() []Generation {
	return []Generation{Gen2G, Gen3G, Gen4G, Gen5G}
}

func (g Generation) String() string {
	switch g {
	case Gen2G:
		return "2G"
	case Gen3G:
		return "3G"
	case Gen4G:
		return "4G"
	case Gen5G:
		return "5G"
	default:
		return fmt.Sprintf("Generation(%d)", int(g))
	}
}

// Valid reports whether g is one of the four known generations.
func (g Generation) Valid() bool {
	return g >= Gen2G && g <= Gen5G
}

// ParseGeneration accepts "2G", "2g", "2" or "gen2g" style names.
func ParseGeneration(s string) (Generation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "gen")
	name = strings.TrimSuffix(name, "g")
	switch name {
	case "2":
		return Gen2G, nil
	case "3":
		return Gen3G, nil
	case "4":
		return Gen4G, nil
	case "5":
		return Gen5G, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGeneration, s)
}

// MarshalText lets generations be used as YAML/JSON map keys.
func (g Generation) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGeneration, int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (g *Generation) UnmarshalText(text []byte) error {
	parsed, err := ParseGeneration(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Band selects which slice of spectrum a device is parked on.
type Band int

const (
	// BandPrimary is the shared 1 MHz band every generation uses.
	BandPrimary Band = iota
	// BandSecondary is the extra 10 MHz at 1800 MHz that only 5G towers own.
	BandSecondary
)

func (b Band) String() string {
	switch b {
	case BandPrimary:
		return "primary"
	case BandSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("Band(%d)", int(b))
	}
}
