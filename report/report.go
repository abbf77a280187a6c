// Package report renders human-readable performance reports.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/m2perf/metrics"
	"github.com/sarchlab/m2perf/trace"
)

// Header is the first line of every report.
const Header = "----- CPU PERFORMANCE REPORT -----"

// Renderer writes reports to an output stream.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a Renderer writing to out. A nil out writes to
// os.Stdout.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// Render writes the summary and the instruction breakdown.
func (r *Renderer) Render(agg *trace.Aggregate, m metrics.Metrics) error {
	ew := &errWriter{w: r.out}

	ew.println(Header)
	ew.printf("Total Cycles           : %d\n", agg.TotalCycles)
	ew.printf("Total Instructions     : %d\n", m.TotalInstructions)
	ew.printf("Stall Cycles           : %d\n", agg.StallCycles)
	ew.printf("Average CPI            : %.3f\n", m.CPI)
	ew.printf("Average IPC            : %.3f\n", m.IPC)
	ew.printf("Execution Time (sec)   : %.9f\n", m.ExecTimeSeconds)
	ew.println("")
	ew.println("Instruction Breakdown:")

	for _, e := range agg.Opcodes.Sorted() {
		ew.printf("  %-8s : %d\n", e.Opcode, e.Count)
	}

	if ew.err != nil {
		return fmt.Errorf("failed to write report: %w", ew.err)
	}
	return nil
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) println(s string) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w, s)
}
