package sim

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/signalsfoundry/cellular-simulator/model"
)

// AntennaPrompter decides how many antennas a tower gets. max and def come
// from the generation's profile.
type AntennaPrompter interface {
	Antennas(ctx context.Context, gen model.Generation, max, def int) (int, error)
}

// DefaultAntennas always answers with the profile default.
type DefaultAntennas struct{}

func (DefaultAntennas) Antennas(_ context.Context, _ model.Generation, _, def int) (int, error) {
	return def, nil
}

// FixedAntennas answers from a per-generation table. Missing or zero
// entries fall back to the profile default; other values are passed
// through unchecked so the tower can reject them.
type FixedAntennas map[model.Generation]int

func (f FixedAntennas) Antennas(_ context.Context, gen model.Generation, _, def int) (int, error) {
	if n, ok := f[gen]; ok && n != 0 {
		return n, nil
	}
	return def, nil
}

// LinePrompter asks on w and reads one line from r per question. Anything
// unparsable or out of range selects the default, as does end of input.
type LinePrompter struct {
	mu sync.Mutex
	r  *bufio.Reader
	w  io.Writer
}

// NewLinePrompter wraps r and w for console prompting.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(r), w: w}
}

func (p *LinePrompter) Antennas(ctx context.Context, gen model.Generation, max, def int) (int, error) {
	if max <= 1 {
		return def, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintf(p.w, "Enter number of antennas for %s (1-%d) [default %d]: ", gen, max, def); err != nil {
		return 0, err
	}
	line, err := p.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	n, ok := leadingInt(line)
	if !ok || n < 1 || n > max {
		return def, nil
	}
	return n, nil
}

// leadingInt parses an optionally signed run of digits at the start of s,
// ignoring surrounding whitespace and any trailing text.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
