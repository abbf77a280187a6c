// Package metrics derives performance metrics from trace aggregates.
package metrics

import (
	"errors"
	"math"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/m2perf/trace"
)

// ErrInvalidClock is returned when the clock frequency is not a positive
// finite number.
var ErrInvalidClock = errors.New("clock frequency must be > 0")

// Metrics holds the derived performance figures of one trace.
type Metrics struct {
	// CPI is cycles per instruction. 0 when no instruction executed.
	CPI float64
	// IPC is instructions per cycle. 0 when no cycle was observed.
	IPC float64
	// ExecTimeSeconds is the wall time of the traced cycles at the clock
	// frequency.
	ExecTimeSeconds float64
	// TotalInstructions is the number of executed instructions.
	TotalInstructions uint64
}

// GHz converts a frequency in gigahertz into a sim.Freq.
func GHz(ghz float64) sim.Freq {
	return sim.Freq(ghz) * sim.GHz
}

// ValidateClock checks that clock is usable as a divisor.
func ValidateClock(clock sim.Freq) error {
	f := float64(clock)
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return ErrInvalidClock
	}
	return nil
}

// Compute derives the metrics of agg at the given clock frequency.
func Compute(agg *trace.Aggregate, clock sim.Freq) (Metrics, error) {
	if err := ValidateClock(clock); err != nil {
		return Metrics{}, err
	}

	m := Metrics{
		TotalInstructions: agg.TotalInstructions(),
	}

	cycles := float64(agg.TotalCycles)
	insts := float64(m.TotalInstructions)

	if m.TotalInstructions > 0 {
		m.CPI = cycles / insts
	}
	if agg.TotalCycles > 0 {
		m.IPC = insts / cycles
	}
	m.ExecTimeSeconds = cycles / float64(clock)

	return m, nil
}
