package sim

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/signalsfoundry/cellular-simulator/model"
)

func TestCompareOrdersReports(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &fakeRecorder{}
	c, err := New(WithMetrics(rec)).Compare(context.Background(), nil)
	if err != nil {
		t.Fatalf("Compare error = %v", err)
	}
	if len(c.Reports) != 4 {
		t.Fatalf("got %d reports, want 4", len(c.Reports))
	}
	wantCapacity := []int{80, 160, 12000, 52800}
	for i, r := range c.Reports {
		if r.Generation != model.Generations()[i] {
			t.Fatalf("report %d generation = %v, want %v", i, r.Generation, model.Generations()[i])
		}
		if r.Capacity != wantCapacity[i] {
			t.Fatalf("%v capacity = %d, want %d", r.Generation, r.Capacity, wantCapacity[i])
		}
	}
	if c.TotalCores != 2+2+120+528 {
		t.Fatalf("TotalCores = %d, want 652", c.TotalCores)
	}
	if math.Abs(c.MeanCapacity-16260) > 1e-9 {
		t.Fatalf("MeanCapacity = %v, want 16260", c.MeanCapacity)
	}
	if len(rec.runs) != 4 {
		t.Fatalf("recorder saw %d runs, want 4", len(rec.runs))
	}
}

func TestCompareFailsFast(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, err := New().Compare(context.Background(), FixedAntennas{model.Gen5G: 40})
	if !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("Compare error = %v, want ErrInvalidConfiguration", err)
	}
	if !strings.HasPrefix(err.Error(), "5G: ") {
		t.Fatalf("Compare error %q should name the generation", err)
	}
}

func TestRenderComparison(t *testing.T) {
	c, err := New().Compare(context.Background(), FixedAntennas{model.Gen4G: 1})
	if err != nil {
		t.Fatalf("Compare error = %v", err)
	}
	var buf bytes.Buffer
	if err := RenderComparison(&buf, c); err != nil {
		t.Fatalf("RenderComparison error = %v", err)
	}
	out := buf.String()
	for _, frag := range []string{
		"Gen  | Channels",
		"4G   | 100      | 1        | 3000      | 30   ",
		"Total cores: 562",
	} {
		if !strings.Contains(out, frag) {
			t.Fatalf("comparison output missing %q:\n%s", frag, out)
		}
	}
}
