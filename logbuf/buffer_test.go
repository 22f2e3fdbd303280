package logbuf

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLimit(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuffer_KeepsLastLines(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		fmt.Fprintf(b, "line %d\n", i)
	}

	assert.Equal(t, []string{"line 3", "line 4", "line 5"}, b.Lines())
	assert.Equal(t, 3, b.Len())
}

func TestBuffer_PartialWrites(t *testing.T) {
	b, err := New(10)
	require.NoError(t, err)

	_, _ = b.Write([]byte("hel"))
	_, _ = b.Write([]byte("lo\nwor"))
	assert.Equal(t, []string{"hello"}, b.Lines())

	_, _ = b.Write([]byte("ld\n\nlast\n"))
	assert.Equal(t, []string{"hello", "world", "", "last"}, b.Lines())
}

func TestBuffer_ResetAndWriteTo(t *testing.T) {
	b, err := New(10)
	require.NoError(t, err)
	_, _ = b.Write([]byte("a\nb\n"))

	var out bytes.Buffer
	n, err := b.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "a\nb\n", out.String())

	b.Reset()
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Lines())
}

func TestBuffer_ConcurrentWriters(t *testing.T) {
	b, err := New(50)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				fmt.Fprintf(b, "w%d-%d\n", w, i)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, b.Len())
}
