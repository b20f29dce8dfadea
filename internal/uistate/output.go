package uistate

// OutputSource tags where an output line came from.
type OutputSource int

const (
	SourceStdout OutputSource = iota
	SourceInternal
	SourceError
)

// OutputLine is one line in the scrolling output pane.
type OutputLine struct {
	Text   string
	Source OutputSource
}

const (
	outputHardCap = 2000
	outputTrimTo  = 1000
)

// OutputBuffer is the bounded, append-only line buffer backing the Output
// pane. It trims from the front once it exceeds its hard cap, per the
// buffer's lifecycle rule.
type OutputBuffer struct {
	lines        []OutputLine
	newlineCount int
}

// NewOutputBuffer returns an empty buffer.
func NewOutputBuffer() *OutputBuffer {
	return &OutputBuffer{}
}

// Append adds a line, trimming the oldest lines once the hard cap is
// exceeded.
func (b *OutputBuffer) Append(text string, source OutputSource) {
	b.lines = append(b.lines, OutputLine{Text: text, Source: source})
	b.newlineCount++
	if len(b.lines) > outputHardCap {
		excess := len(b.lines) - outputTrimTo
		b.lines = b.lines[excess:]
	}
}

// Lines returns the buffer's current contents, oldest first.
func (b *OutputBuffer) Lines() []OutputLine {
	return b.lines
}

// Len returns the number of lines currently buffered.
func (b *OutputBuffer) Len() int {
	return len(b.lines)
}

// Clear empties the buffer.
func (b *OutputBuffer) Clear() {
	b.lines = nil
	b.newlineCount = 0
}
