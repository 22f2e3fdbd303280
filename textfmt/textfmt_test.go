package textfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinAndList(t *testing.T) {
	assert.Equal(t, "", Join([]int{}, ","))
	assert.Equal(t, "1,2,3", Join([]int64{1, 2, 3}, ","))
	assert.Equal(t, "[6, 7, 8]", List([]int64{6, 7, 8}))
	assert.Equal(t, "[]", List[string](nil))
	assert.Equal(t, "[a, b]", List([]string{"a", "b"}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "he...", Truncate("hello world", 5))
	assert.Equal(t, "he", Truncate("hello", 2))
	assert.Equal(t, "", Truncate("hello", 0))
	assert.Equal(t, "héllo...", Truncate("héllo wörld", 8))
}

func TestPad(t *testing.T) {
	assert.Equal(t, "   ab", PadLeft("ab", 5))
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abcdef", PadRight("abcdef", 3))
	assert.Equal(t, "  ü", PadLeft("ü", 3))
}

func TestCase(t *testing.T) {
	assert.Equal(t, "rolling_average", SnakeCase("RollingAverage"))
	assert.Equal(t, "rolling-average", KebabCase("RollingAverage"))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 sample", Plural(1, "sample"))
	assert.Equal(t, "0 samples", Plural(0, "sample"))
	assert.Equal(t, "3 samples", Plural(3, "sample"))
}

func TestTable(t *testing.T) {
	out := Table([]string{"KEY", "FILL"}, [][]string{{"api", "3"}, {"checkout", "50"}})
	assert.Equal(t, "KEY       FILL\napi       3\ncheckout  50\n", out)
}
