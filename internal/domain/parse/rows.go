package parse

import "strings"

type assemblerState int

const (
	stateIdle assemblerState = iota
	stateAccumulating
)

// rowAssembler rebuilds logical invoice rows from physical text lines. PDF
// extraction wraps long rows across lines, so the assembler buffers from each
// "looks like a row start" line onward and re-tokenizes after every appended
// line, emitting the row at the earliest point the buffer parses.
type rowAssembler struct {
	sanitize func(string) string
	state    assemblerState
	buffer   []string
}

func newRowAssembler(sanitize func(string) string) *rowAssembler {
	return &rowAssembler{sanitize: sanitize}
}

// looksLikeRowStart reports whether a line plausibly opens a new table row:
// it leads with a small position integer or a long numeric article code and
// splits into enough tokens to hold at least part of a row.
func looksLikeRowStart(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return false
	}
	// A small position number ("1") and a long article code ("540021") both
	// qualify; mid-length bare numbers are rare enough not to special-case.
	return reBareInteger.MatchString(fields[0])
}

// feed advances the state machine by one physical line. It returns a parsed
// row and true as soon as a buffer tokenizes. Continuation lines often lead
// with a number themselves (the wrapped numeric tail), so while accumulating
// a line only opens a new row when it parses as a complete row on its own;
// otherwise it is appended to the pending buffer first.
func (a *rowAssembler) feed(line string) (rowFields, bool) {
	if a.state == stateAccumulating {
		if looksLikeRowStart(line) {
			if rf, ok := tokenizeRow(line, a.sanitize); ok {
				a.reset()
				return rf, true
			}
		}
		a.buffer = append(a.buffer, line)
		rf, ok := tokenizeRow(strings.Join(a.buffer, " "), a.sanitize)
		if ok {
			a.reset()
			return rf, true
		}
		if looksLikeRowStart(line) {
			// Leftover buffer never completed; restart from this line.
			a.buffer = append(a.buffer[:0], line)
		}
		return rowFields{}, false
	}

	if !looksLikeRowStart(line) {
		return rowFields{}, false
	}
	a.state = stateAccumulating
	a.buffer = append(a.buffer[:0], line)
	rf, ok := tokenizeRow(line, a.sanitize)
	if ok {
		a.reset()
	}
	return rf, ok
}

func (a *rowAssembler) reset() {
	a.state = stateIdle
	a.buffer = a.buffer[:0]
}
