package trace

import (
	"fmt"
	"io"
	"sync"
)

// TextWriter prints one human readable line per step.
type TextWriter struct {
	mu     sync.Mutex
	w      io.Writer
	prefix string
}

func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// WithPrefix returns a writer sharing w's output that tags every line,
// e.g. with the name of a ring instance.
func (t *TextWriter) WithPrefix(prefix string) *TextWriter {
	return &TextWriter{w: t.w, prefix: prefix}
}

func (t *TextWriter) WriteStep(step *Step) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	text := step.Text
	if text == "" {
		text = step.Describe()
	}
	if t.prefix != "" {
		_, err := fmt.Fprintf(t.w, "[%s] %s\n", t.prefix, text)
		return err
	}
	_, err := fmt.Fprintln(t.w, text)
	return err
}

// Multi fans each step out to several tracers; the first error wins but
// every tracer still sees the step.
type Multi []Tracer

func (m Multi) WriteStep(step *Step) error {
	var first error
	for _, t := range m {
		if err := t.WriteStep(step); err != nil && first == nil {
			first = err
		}
	}
	return first
}
