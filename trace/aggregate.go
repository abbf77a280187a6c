// Package trace parses textual CPU pipeline trace logs into aggregate
// event counts.
//
// A trace log is free-form text with one event per line. Three kinds of
// lines are recognized:
//   - "... cycle <n> ..." reports the current cycle number
//   - any line containing STALL (in any case) marks a stall
//   - "...] <OPCODE> executed ..." records a retired instruction
//
// Usage:
//
//	agg, err := trace.ParseFile("pipeline.log")
//	if err != nil {
//		return err
//	}
//	fmt.Printf("cycles=%d stalls=%d insts=%d\n",
//		agg.TotalCycles, agg.StallCycles, agg.Opcodes.Total())
package trace

import "sort"

// OpcodeCount is a single histogram entry.
type OpcodeCount struct {
	// Opcode is the upper-case mnemonic.
	Opcode string
	// Count is the number of times the opcode executed.
	Count uint64
}

// OpcodeCounts is a histogram of executed opcodes. It remembers the order
// in which opcodes were first seen.
type OpcodeCounts struct {
	counts map[string]uint64
	order  []string
}

// NewOpcodeCounts creates an empty histogram.
func NewOpcodeCounts() *OpcodeCounts {
	return &OpcodeCounts{
		counts: make(map[string]uint64),
	}
}

// Inc increments the count of the given opcode by one.
func (c *OpcodeCounts) Inc(opcode string) {
	if _, ok := c.counts[opcode]; !ok {
		c.order = append(c.order, opcode)
	}
	c.counts[opcode]++
}

// Get returns the count of the given opcode, 0 if it was never seen.
func (c *OpcodeCounts) Get(opcode string) uint64 {
	return c.counts[opcode]
}

// Len returns the number of distinct opcodes.
func (c *OpcodeCounts) Len() int {
	return len(c.order)
}

// Total returns the sum of all counts.
func (c *OpcodeCounts) Total() uint64 {
	var total uint64
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Entries returns the histogram in first-seen order.
func (c *OpcodeCounts) Entries() []OpcodeCount {
	entries := make([]OpcodeCount, 0, len(c.order))
	for _, op := range c.order {
		entries = append(entries, OpcodeCount{Opcode: op, Count: c.counts[op]})
	}
	return entries
}

// Sorted returns the histogram ordered by descending count. Ties are
// ordered by opcode name.
func (c *OpcodeCounts) Sorted() []OpcodeCount {
	entries := c.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Opcode < entries[j].Opcode
	})
	return entries
}

// Aggregate holds the counters accumulated while parsing a trace.
type Aggregate struct {
	// TotalCycles is the largest cycle number seen in the trace.
	TotalCycles uint64
	// StallCycles is the number of stall lines.
	StallCycles uint64
	// Opcodes is the histogram of executed instructions.
	Opcodes *OpcodeCounts

	// Lines is the number of lines read.
	Lines uint64
	// Ignored is the number of lines that matched no rule.
	Ignored uint64
}

// NewAggregate creates an empty Aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{
		Opcodes: NewOpcodeCounts(),
	}
}

// TotalInstructions returns the number of executed instructions.
func (a *Aggregate) TotalInstructions() uint64 {
	return a.Opcodes.Total()
}
