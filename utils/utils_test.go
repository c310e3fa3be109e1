package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomDigitString(t *testing.T) {
	s := GenerateRandomDigitString(12)
	assert.Len(t, s, 12)
	for _, c := range s {
		assert.True(t, c >= '0' && c <= '9')
	}
}

func TestParseSlotLines(t *testing.T) {
	slots := ParseSlotLines("18:00-19:30\n\n  19:30-21:00  \n")
	assert.Equal(t, []string{"18:00-19:30", "19:30-21:00"}, slots)

	assert.Nil(t, ParseSlotLines("\n\n"))
}
