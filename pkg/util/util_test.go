package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "******", MaskSecret("abcdef"))
	assert.Equal(t, "abc***efg", MaskSecret("abcXYZefg"))
	assert.Equal(t, "sk-***890", MaskSecret("sk-1234567890"))
}

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	ts := time.Date(2026, 3, 2, 3, 0, 0, 0, loc)
	assert.Equal(t, "2026-03-01", DateKey(ts))
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 20, ClampInt(0, 20, 1, 100))
	assert.Equal(t, 1, ClampInt(-5, 20, 1, 100))
	assert.Equal(t, 100, ClampInt(500, 20, 1, 100))
	assert.Equal(t, 7, ClampInt(7, 20, 1, 100))
}
