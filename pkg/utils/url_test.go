package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashURL(t *testing.T) {
	a := HashURL("https://starcitizen.tools/Aurora_MR")
	b := HashURL("https://starcitizen.tools/Aurora_MR")
	c := HashURL("https://starcitizen.tools/Avenger_Titan")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestToAbsoluteURL(t *testing.T) {
	base, err := url.Parse("https://starcitizen.tools")
	require.NoError(t, err)

	abs, err := ToAbsoluteURL(base, "/Aurora_MR")
	require.NoError(t, err)
	assert.Equal(t, "https://starcitizen.tools/Aurora_MR", abs)

	abs, err = ToAbsoluteURL(base, "https://media.example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/a.jpg", abs)
}
