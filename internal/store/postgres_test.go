package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxtract/internal/results"
)

func TestCollectRows_NumericOnly(t *testing.T) {
	res := results.New()
	require.NoError(t, res.Set("diagnostics_Configuration_Settings", "binWidth=25"))
	require.NoError(t, res.Set("original_glrlm_ShortRunEmphasis", 0.75))
	require.NoError(t, res.Set("original_glrlm_LongRunEmphasis", 2.0))

	rows := collectRows("brain1", res)
	require.Len(t, rows, 2)

	assert.Equal(t, "brain1", rows[0].CaseID)
	assert.Equal(t, "original_glrlm_ShortRunEmphasis", rows[0].FeatureKey)
	assert.Equal(t, 0.75, rows[0].Value)
	assert.Equal(t, "original_glrlm_LongRunEmphasis", rows[1].FeatureKey)
}

func TestCollectRows_Empty(t *testing.T) {
	assert.Empty(t, collectRows("brain1", results.New()))
}
