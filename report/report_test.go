package report_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2perf/metrics"
	"github.com/sarchlab/m2perf/report"
	"github.com/sarchlab/m2perf/trace"
)

var _ = Describe("Renderer", func() {
	var (
		buf      *bytes.Buffer
		renderer *report.Renderer
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		renderer = report.NewRenderer(buf)
	})

	It("should render the fixed layout", func() {
		agg := trace.NewAggregate()
		agg.TotalCycles = 1000
		agg.StallCycles = 4
		for _, op := range []string{"ADD", "LDR", "ADD", "B", "ADD", "LDR"} {
			agg.Opcodes.Inc(op)
		}
		m := metrics.Metrics{
			CPI:               166.6666,
			IPC:               0.006,
			ExecTimeSeconds:   2.5e-7,
			TotalInstructions: 6,
		}

		Expect(renderer.Render(agg, m)).To(Succeed())
		Expect(buf.String()).To(Equal(strings.Join([]string{
			"----- CPU PERFORMANCE REPORT -----",
			"Total Cycles           : 1000",
			"Total Instructions     : 6",
			"Stall Cycles           : 4",
			"Average CPI            : 166.667",
			"Average IPC            : 0.006",
			"Execution Time (sec)   : 0.000000250",
			"",
			"Instruction Breakdown:",
			"  ADD      : 3",
			"  LDR      : 2",
			"  B        : 1",
			"",
		}, "\n")))
	})

	It("should not truncate long opcode names", func() {
		agg := trace.NewAggregate()
		agg.Opcodes.Inc("FMADD_VEC4")
		Expect(renderer.Render(agg, metrics.Metrics{TotalInstructions: 1})).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("\n  FMADD_VEC4 : 1\n"))
	})

	It("should break count ties by name", func() {
		agg := trace.NewAggregate()
		agg.Opcodes.Inc("SUB")
		agg.Opcodes.Inc("ADD")
		Expect(renderer.Render(agg, metrics.Metrics{TotalInstructions: 2})).To(Succeed())
		out := buf.String()
		Expect(strings.Index(out, "ADD")).To(BeNumerically("<", strings.Index(out, "SUB")))
	})

	It("should render the reference scenario", func() {
		agg, err := trace.NewParser().Parse(strings.NewReader(strings.Join([]string{
			"[0] ADD executed",
			"cycle 1",
			"[1] STALL detected",
			"cycle 2",
			"[2] MOV executed",
			"cycle 3",
		}, "\n")))
		Expect(err).NotTo(HaveOccurred())
		m, err := metrics.Compute(agg, metrics.GHz(2.0))
		Expect(err).NotTo(HaveOccurred())

		Expect(renderer.Render(agg, m)).To(Succeed())
		out := buf.String()
		Expect(out).To(ContainSubstring("Total Cycles           : 3\n"))
		Expect(out).To(ContainSubstring("Total Instructions     : 2\n"))
		Expect(out).To(ContainSubstring("Stall Cycles           : 1\n"))
		Expect(out).To(ContainSubstring("Average CPI            : 1.500\n"))
		Expect(out).To(ContainSubstring("Average IPC            : 0.667\n"))
		Expect(out).To(HaveSuffix("Instruction Breakdown:\n  ADD      : 1\n  MOV      : 1\n"))
	})

	It("should render an empty trace", func() {
		Expect(renderer.Render(trace.NewAggregate(), metrics.Metrics{})).To(Succeed())
		out := buf.String()
		Expect(out).To(ContainSubstring("Average CPI            : 0.000\n"))
		Expect(out).To(ContainSubstring("Execution Time (sec)   : 0.000000000\n"))
		Expect(out).To(HaveSuffix("Instruction Breakdown:\n"))
	})

	It("should return write errors", func() {
		r := report.NewRenderer(brokenWriter{})
		err := r.Render(trace.NewAggregate(), metrics.Metrics{})
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, errClosed)).To(BeTrue())
	})
})

var errClosed = errors.New("writer closed")

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errClosed
}
