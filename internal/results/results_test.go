package results

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResults_OrderPreserved(t *testing.T) {
	r := New()
	require.NoError(t, r.Set("diagnostics_Image-original_Mean", 12.5))
	require.NoError(t, r.Set("original_glrlm_ShortRunEmphasis", 0.8))
	require.NoError(t, r.Set("original_glrlm_LongRunEmphasis", 2.1))

	assert.Equal(t, []string{
		"diagnostics_Image-original_Mean",
		"original_glrlm_ShortRunEmphasis",
		"original_glrlm_LongRunEmphasis",
	}, r.Keys())
	assert.Equal(t, 3, r.Len())
}

func TestResults_DuplicateKey(t *testing.T) {
	r := New()
	require.NoError(t, r.Set("a", 1.0))
	assert.ErrorIs(t, r.Set("a", 2.0), ErrDuplicateKey)

	value, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, value)
}

func TestResults_Float(t *testing.T) {
	r := New()
	require.NoError(t, r.Set("numeric", 4.2))
	require.NoError(t, r.Set("descriptive", "(2, 2, 1)"))

	f, ok := r.Float("numeric")
	assert.True(t, ok)
	assert.Equal(t, 4.2, f)

	_, ok = r.Float("descriptive")
	assert.False(t, ok)
	_, ok = r.Float("missing")
	assert.False(t, ok)
}

func TestResults_WriteTo(t *testing.T) {
	r := New()
	require.NoError(t, r.Set("b", 2.0))
	require.NoError(t, r.Set("a", "text"))

	var sb strings.Builder
	n, err := r.WriteTo(&sb)
	require.NoError(t, err)
	assert.Equal(t, "b: 2\na: text\n", sb.String())
	assert.Equal(t, int64(sb.Len()), n)
}

func TestResults_EachStopsEarly(t *testing.T) {
	r := New()
	require.NoError(t, r.Set("a", 1.0))
	require.NoError(t, r.Set("b", 2.0))

	var visited []string
	r.Each(func(key string, _ interface{}) bool {
		visited = append(visited, key)
		return false
	})
	assert.Equal(t, []string{"a"}, visited)
}
