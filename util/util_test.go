package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestIsHexNumber(t *testing.T) {
	for _, r := range "0123456789abcdefABCDEF" {
		assert.True(t, IsHexNumber(r), string(r))
	}
	for _, r := range "gGhHxX._ " {
		assert.False(t, IsHexNumber(r), string(r))
	}
}

func TestIsLetterOrUnderscoreOrNumber(t *testing.T) {
	testData := []struct {
		r        rune
		expected bool
	}{
		{r: 'a', expected: true},
		{r: 'Z', expected: true},
		{r: '_', expected: true},
		{r: '7', expected: true},
		{r: 'ä', expected: true},
		{r: '.', expected: false},
		{r: '(', expected: false},
	}
	for _, data := range testData {
		assert.Equal(t, data.expected, IsLetterOrUnderscoreOrNumber(data.r), string(data.r))
	}
}

func TestIsASCIIPrintable(t *testing.T) {
	assert.True(t, IsASCIIPrintable('a'))
	assert.True(t, IsASCIIPrintable(' '))
	assert.False(t, IsASCIIPrintable('\n'))
	assert.False(t, IsASCIIPrintable(0x7f))
}
