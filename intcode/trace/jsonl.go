package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// JSONLWriter writes Step records as JSON Lines (one JSON object per line).
// It is safe for concurrent use by multiple goroutines, so the VMs of a ring
// driver can share one file.
type JSONLWriter struct {
	mu     sync.Mutex
	enc    *json.Encoder
	buf    *bufio.Writer
	closer io.Closer // only set when we own the underlying writer
	closed bool
}

// ErrWriterClosed is returned when WriteStep is called after Close.
var ErrWriterClosed = errors.New("jsonl trace writer is closed")

// NewJSONLWriter creates a JSONLWriter using the provided io.Writer.
// The writer passed in is NOT closed by JSONLWriter; Close only flushes.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	buf := bufio.NewWriterSize(w, 64*1024)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	return &JSONLWriter{
		enc: enc,
		buf: buf,
	}
}

// NewJSONLWriterFile creates (or truncates) path and returns a JSONLWriter
// that owns the file. Close flushes and closes it.
func NewJSONLWriterFile(path string) (*JSONLWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := NewJSONLWriter(f)
	w.closer = f
	return w, nil
}

// WriteStep encodes a single Step as a JSON object followed by a newline.
func (w *JSONLWriter) WriteStep(step *Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}
	return w.enc.Encode(step)
}

// Flush forces buffered data to be written to the underlying writer.
func (w *JSONLWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}
	return w.buf.Flush()
}

// Close flushes any buffered data and closes the file if we own it.
func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.buf.Flush(); err != nil {
		if w.closer != nil {
			_ = w.closer.Close()
		}
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// ReadJSONL decodes every step of a JSON Lines trace.
func ReadJSONL(r io.Reader) ([]*Step, error) {
	var steps []*Step
	dec := json.NewDecoder(bufio.NewReader(r))
	for {
		var s Step
		err := dec.Decode(&s)
		if err == io.EOF {
			return steps, nil
		}
		if err != nil {
			return steps, fmt.Errorf("step %d: %w", len(steps), err)
		}
		steps = append(steps, &s)
	}
}

// ReadJSONLFile reads a trace written by NewJSONLWriterFile.
func ReadJSONLFile(path string) ([]*Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSONL(f)
}
