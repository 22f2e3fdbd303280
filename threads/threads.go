// Package threads inspects the goroutines of the running process.
package threads

import (
	"bufio"
	"bytes"
	"runtime"
	"strconv"
	"strings"
)

type Goroutine struct {
	ID     int64    `json:"id"`
	State  string   `json:"state"`
	Frames []string `json:"frames"`
}

func Count() int {
	return runtime.NumGoroutine()
}

// Dump returns the stack of the calling goroutine, or of every goroutine when
// all is set, growing the buffer until the trace fits.
func Dump(all bool) []byte {
	buf := make([]byte, 16<<10)
	for {
		n := runtime.Stack(buf, all)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, 2*len(buf))
	}
}

// CurrentID returns the runtime id of the calling goroutine.
func CurrentID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	id, _, ok := parseHeader(string(buf[:n]))
	if !ok {
		return -1
	}
	return id
}

// Parse splits a runtime.Stack dump into goroutines. Frames hold the function
// lines only, without file positions.
func Parse(dump []byte) []Goroutine {
	var out []Goroutine
	var cur *Goroutine
	expectFunc := false

	sc := bufio.NewScanner(bytes.NewReader(dump))
	sc.Buffer(make([]byte, 64<<10), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "goroutine "):
			if id, state, ok := parseHeader(line); ok {
				out = append(out, Goroutine{ID: id, State: state})
				cur = &out[len(out)-1]
				expectFunc = true
			}
		case line == "":
			cur = nil
		case cur == nil:
		case strings.HasPrefix(line, "\t"):
			expectFunc = true
		case expectFunc:
			cur.Frames = append(cur.Frames, line)
			expectFunc = false
		}
	}
	return out
}

// States counts goroutines by state ("running", "chan receive", ...).
func States() map[string]int {
	counts := make(map[string]int)
	for _, g := range Parse(Dump(true)) {
		counts[g.State]++
	}
	return counts
}

// parseHeader reads "goroutine 12 [chan receive, 3 minutes]:".
func parseHeader(s string) (int64, string, bool) {
	rest, ok := strings.CutPrefix(s, "goroutine ")
	if !ok {
		return 0, "", false
	}
	idStr, rest, ok := strings.Cut(rest, " ")
	if !ok {
		return 0, "", false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, "", false
	}

	open := strings.IndexByte(rest, '[')
	end := strings.IndexByte(rest, ']')
	if open < 0 || end < open {
		return id, "", true
	}
	state, _, _ := strings.Cut(rest[open+1:end], ",")
	return id, state, true
}
