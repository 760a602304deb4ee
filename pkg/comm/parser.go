package comm

// MaxLineLength is the longest line the parser accepts. Longer lines are
// dropped and the parser resyncs at the next newline.
const MaxLineLength = 4096

// LineParser splits the inbound byte stream into lines.
type LineParser struct {
	state parseState
	buf   []byte
}

type parseState int

const (
	stateLine    parseState = iota // collecting a line
	stateOverrun                   // line too long, skipping to newline
)

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	// Line is set when a complete line has been received.
	Line string
	// Ready indicates Line is valid. Empty lines are reported too.
	Ready bool
	// Dropped is set when an overlong line was discarded.
	Dropped bool
}

// Parse consumes one byte.
func (p *LineParser) Parse(b byte) (pr ParseResult) {
	switch p.state {
	case stateLine:
		switch b {
		case '\n':
			pr.Line, pr.Ready = string(p.buf), true
			p.buf = p.buf[:0]
		case '\r':
		default:
			if len(p.buf) >= MaxLineLength {
				p.buf = p.buf[:0]
				p.state = stateOverrun
				return
			}
			p.buf = append(p.buf, b)
		}
	case stateOverrun:
		if b == '\n' {
			p.state = stateLine
			pr.Dropped = true
		}
	}
	return
}

// ParseBytes consumes a chunk and returns all complete lines.
func (p *LineParser) ParseBytes(data []byte) (lines []string, dropped int) {
	for _, b := range data {
		pr := p.Parse(b)
		if pr.Ready {
			lines = append(lines, pr.Line)
		}
		if pr.Dropped {
			dropped++
		}
	}
	return
}

// Pending returns the number of buffered bytes of an incomplete line.
func (p *LineParser) Pending() int {
	return len(p.buf)
}

// Reset drops any partial line.
func (p *LineParser) Reset() {
	p.buf = p.buf[:0]
	p.state = stateLine
}
