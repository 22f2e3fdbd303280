// Package logbuf keeps the most recent log lines in memory and builds the
// slog handlers that feed it.
package logbuf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gammazero/deque"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Buffer is an io.Writer that retains the last limit complete lines written
// to it. It is safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	limit   int
	lines   deque.Deque[string]
	partial []byte
}

func New(limit int) (*Buffer, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: buffer limit must be positive, got %d", ErrInvalidArgument, limit)
	}
	return &Buffer{limit: limit}, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data := p
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			b.partial = append(b.partial, data...)
			break
		}
		line := string(b.partial) + string(data[:i])
		b.partial = b.partial[:0]
		data = data[i+1:]

		if b.lines.Len() == b.limit {
			b.lines.PopFront()
		}
		b.lines.PushBack(line)
	}
	return len(p), nil
}

// Lines returns the retained lines, oldest first. An unterminated trailing
// line is not included.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, b.lines.Len())
	for i := range out {
		out[i] = b.lines.At(i)
	}
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lines.Len()
}

func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines.Clear()
	b.partial = b.partial[:0]
}

func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, line := range b.Lines() {
		n, err := io.WriteString(w, line+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
