package progressbar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewManualProgressBar(&out, 10, 4)

	require.NoError(t, bar.Display())
	assert.Contains(t, out.String(), "[0.00%")

	bar.Increment()
	bar.Increment()
	out.Reset()
	require.NoError(t, bar.Display())
	assert.Equal(t, 0.5, bar.Fraction())
	assert.Contains(t, out.String(), "[50.00%")
	assert.Equal(t, 5, strings.Count(out.String(), "█"))

	for i := 0; i < 10; i++ {
		bar.Increment()
	}
	assert.Equal(t, 1.0, bar.Fraction())

	require.NoError(t, bar.Close())
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}
