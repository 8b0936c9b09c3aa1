package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines_PacksUntilLimit(t *testing.T) {
	c := New(ModeLines, 10, 0)
	got := c.Lines("aaaa\nbbbb\ncccc\n\n   \ndd")
	assert.Equal(t, []string{"aaaa\nbbbb", "cccc", "dd"}, got)
}

func TestLines_LongLineStaysWhole(t *testing.T) {
	c := New(ModeLines, 5, 0)
	got := c.Lines("short\nthis line is long\nx")
	assert.Equal(t, []string{"short", "this line is long", "x"}, got)
}

func TestLines_EmptyBody(t *testing.T) {
	c := New("", 800, 0)
	assert.Equal(t, ModeLines, c.Mode)
	assert.Empty(t, c.Lines("  \n\n "))
}

func TestFixed_CountsRunes(t *testing.T) {
	c := New(ModeFixed, 4, 1)
	got := c.Fixed("สวัสดีครับ")
	require.NotEmpty(t, got)
	for _, p := range got {
		assert.LessOrEqual(t, len([]rune(p)), 4)
	}
	assert.True(t, strings.HasSuffix("สวัสดีครับ", got[len(got)-1]))
}

func TestTransform_CopiesMetadata(t *testing.T) {
	c := New(ModeLines, 6, 0)
	docs := []*schema.Document{{ID: "d1", Content: "abc\ndef\nghi", MetaData: map[string]any{"tenant": "bn9"}}}
	out, err := c.Transform(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "def", out[1].Content)
	assert.Equal(t, "d1#1", out[1].ID)
	assert.Equal(t, "bn9", out[1].MetaData["tenant"])
	assert.Equal(t, 1, out[1].MetaData[MetaChunkIndex])
}
