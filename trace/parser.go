package trace

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var cyclePattern = regexp.MustCompile(`cycle\s+(\d+)`)

// Lower-case opcode tokens are accepted and folded to upper case, so
// "] add executed" counts as ADD.
var instPattern = regexp.MustCompile(`\]\s*([A-Za-z0-9_]+)\s+executed`)

const stallMarker = "STALL"

// maxLineSize bounds a single trace line.
const maxLineSize = 64 * 1024 * 1024

// LineKind classifies a single trace line.
type LineKind uint8

const (
	// LineIgnored matched no rule.
	LineIgnored LineKind = iota
	// LineCycle only reported a cycle number.
	LineCycle
	// LineStall marked a stall.
	LineStall
	// LineInstruction recorded an executed instruction.
	LineInstruction
)

func (k LineKind) String() string {
	switch k {
	case LineCycle:
		return "cycle"
	case LineStall:
		return "stall"
	case LineInstruction:
		return "instruction"
	default:
		return "ignored"
	}
}

// ParserOption is a functional option for configuring the Parser.
type ParserOption func(*Parser)

// WithLogger sets the logger that receives per-line debug output.
func WithLogger(logger logrus.FieldLogger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// Parser accumulates trace lines into an Aggregate.
type Parser struct {
	agg    *Aggregate
	logger logrus.FieldLogger
}

// NewParser creates a Parser with an empty Aggregate.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		agg: NewAggregate(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Aggregate returns the counters accumulated so far.
func (p *Parser) Aggregate() *Aggregate {
	return p.agg
}

// ParseLine classifies one line and updates the aggregate.
//
// The cycle rule is applied to every line. A stall line is never counted
// as an instruction, even if it also matches the instruction pattern.
func (p *Parser) ParseLine(line string) LineKind {
	line = strings.TrimSpace(line)
	p.agg.Lines++

	kind := LineIgnored

	if m := cyclePattern.FindStringSubmatch(line); m != nil {
		// Values past uint64 are dropped rather than saturated.
		if n, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			if n > p.agg.TotalCycles {
				p.agg.TotalCycles = n
			}
			kind = LineCycle
		}
	}

	if strings.Contains(strings.ToUpper(line), stallMarker) {
		p.agg.StallCycles++
		p.debug(line, LineStall)
		return LineStall
	}

	if m := instPattern.FindStringSubmatch(line); m != nil {
		p.agg.Opcodes.Inc(strings.ToUpper(m[1]))
		kind = LineInstruction
	}

	if kind == LineIgnored {
		p.agg.Ignored++
	}
	p.debug(line, kind)

	return kind
}

func (p *Parser) debug(line string, kind LineKind) {
	if p.logger == nil {
		return
	}
	p.logger.WithFields(logrus.Fields{
		"line": p.agg.Lines,
		"kind": kind.String(),
	}).Debug(line)
}

// Parse reads r line by line until EOF and returns the aggregate. Lines
// end at "\n", "\r\n" or a lone "\r".
func (p *Parser) Parse(r io.Reader) (*Aggregate, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)

	for scanner.Scan() {
		p.ParseLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	return p.agg, nil
}

// scanLines is a bufio.SplitFunc that treats "\n", "\r\n" and "\r" as line
// terminators.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		// A trailing '\r' may be the first half of "\r\n".
		if !atEOF {
			return 0, nil, nil
		}
		return i + 1, data[:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ParseFile parses the trace log at path.
func ParseFile(path string, opts ...ParserOption) (*Aggregate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return NewParser(opts...).Parse(f)
}
