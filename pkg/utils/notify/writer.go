package notify

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// DeferredNewlineWriter holds back the trailing newline of each write until
// the next write (or Flush) arrives. Subprocess output captured through it
// ends without a dangling blank line, which keeps git and docker stderr
// presentable inside error messages.
//
// With a nil underlying writer it buffers internally and String returns the
// captured content.
type DeferredNewlineWriter struct {
	mu      sync.Mutex
	dst     io.Writer
	capture *bytes.Buffer // set only in internal-buffer mode
	held    bool
}

// NewDeferredNewlineWriter wraps dst. Passing nil switches to internal-buffer
// mode, where the content is read back via String.
func NewDeferredNewlineWriter(dst io.Writer) *DeferredNewlineWriter {
	writer := &DeferredNewlineWriter{dst: dst}

	if dst == nil {
		writer.capture = &bytes.Buffer{}
		writer.dst = writer.capture
	}

	return writer
}

// Write forwards data to the destination, first releasing a newline held from
// the previous write and then holding this write's trailing newline, if any.
// The returned length counts the held newline so callers see a full write.
func (w *DeferredNewlineWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(data) == 0 {
		return 0, nil
	}

	if err := w.releaseHeld("write pending newline"); err != nil {
		return 0, err
	}

	trimmed := data
	holds := data[len(data)-1] == '\n'

	if holds {
		trimmed = data[:len(data)-1]
	}

	written := 0

	if len(trimmed) > 0 {
		n, err := w.dst.Write(trimmed)
		if err != nil {
			return n, fmt.Errorf("write content: %w", err)
		}

		written = n
	}

	if holds {
		w.held = true

		return len(data), nil
	}

	return written, nil
}

// Flush releases a held trailing newline. Use it when the trailing newline
// should survive, for example between interleaved writers.
func (w *DeferredNewlineWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.releaseHeld("flush pending newline")
}

// String returns the captured content, without the held trailing newline.
// Empty unless the writer is in internal-buffer mode.
func (w *DeferredNewlineWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture == nil {
		return ""
	}

	return w.capture.String()
}

// Reset drops the captured content and any held newline. Internal-buffer
// mode only.
func (w *DeferredNewlineWriter) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture != nil {
		w.capture.Reset()
	}

	w.held = false
}

// releaseHeld writes the held newline, if any. Callers hold the mutex.
func (w *DeferredNewlineWriter) releaseHeld(action string) error {
	if !w.held {
		return nil
	}

	if _, err := w.dst.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	w.held = false

	return nil
}
