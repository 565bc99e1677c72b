package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	chunks := SplitText("hello world", 100, 20)
	assert.Equal(t, []string{"hello world"}, chunks)
}

func TestSplitText_Empty(t *testing.T) {
	assert.Empty(t, SplitText("", 100, 20))
}

func TestSplitText_OverlapCarriesText(t *testing.T) {
	text := strings.Repeat("a", 50) + strings.Repeat("b", 50)
	chunks := SplitText(text, 60, 20)

	assert.GreaterOrEqual(t, len(chunks), 2)
	// The tail of chunk 0 reappears at the head of chunk 1.
	tail := chunks[0][len(chunks[0])-20:]
	assert.True(t, strings.HasPrefix(chunks[1], tail))
}

func TestSplitText_CoversWholeText(t *testing.T) {
	text := strings.Repeat("x", 2500)
	chunks := SplitText(text, 1000, 200)

	var covered int
	for i, c := range chunks {
		if i == 0 {
			covered += len(c)
		} else {
			covered += len(c) - 200
		}
	}
	assert.Equal(t, len(text), covered)
}

func TestSplitText_UnicodeSafe(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 100)
	chunks := SplitText(text, 50, 10)

	for _, c := range chunks {
		// No chunk may split a rune in half.
		assert.True(t, len([]rune(c)) <= 50)
		assert.Equal(t, c, string([]rune(c)))
	}
}

func TestSplitText_InvalidParamsFallBack(t *testing.T) {
	text := strings.Repeat("y", 300)

	assert.NotEmpty(t, SplitText(text, 0, 0))
	assert.NotEmpty(t, SplitText(text, 100, -5))
	// Overlap >= chunk size must not loop forever.
	assert.NotEmpty(t, SplitText(text, 100, 100))
}
