package generation

import (
	"fmt"
	"strings"
)

// Printer accumulates emitted lines with a push/pop indentation discipline.
// It is a single linear accumulator, generation writes to it sequentially.
type Printer struct {
	builder strings.Builder
	indent  int
}

// Line appends one line at the current indentation level.
// An empty line is emitted without indentation.
func (p *Printer) Line(line string) {
	if line == "" {
		p.builder.WriteByte('\n')
		return
	}
	p.builder.WriteString(strings.Repeat("    ", p.indent))
	p.builder.WriteString(line)
	p.builder.WriteByte('\n')
}

// Linef appends one formatted line at the current indentation level.
func (p *Printer) Linef(format string, args ...interface{}) {
	p.Line(fmt.Sprintf(format, args...))
}

// Indented runs emit one level deeper. The previous level is restored on
// every exit path, including panics, so indentation always stays balanced.
func (p *Printer) Indented(emit func()) {
	p.indent++
	defer func() { p.indent-- }()
	emit()
}

// String returns everything emitted so far.
func (p *Printer) String() string {
	return p.builder.String()
}
