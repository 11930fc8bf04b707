package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortDescription(t *testing.T) {
	assert.Equal(t, "Cena a ciegas", shortDescription("Cena a ciegas"))

	long := strings.Repeat("a", 150)
	assert.Equal(t, strings.Repeat("a", 100), shortDescription(long))

	// Truncation counts runes, not bytes.
	accented := strings.Repeat("ñ", 120)
	assert.Equal(t, strings.Repeat("ñ", 100), shortDescription(accented))
}
