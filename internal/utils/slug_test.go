package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thelistcl/marketplace-api/internal/utils"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"La Buena Mesa":        "la-buena-mesa",
		"  Bar & Vino  ":       "bar-vino",
		"Cena a ciegas (2024)": "cena-a-ciegas-2024",
		"---":                  "",
		"Outdoor":              "outdoor",
	}
	for in, want := range cases {
		assert.Equal(t, want, utils.Slugify(in), "input %q", in)
	}
}

func TestUniqueSlugHasSuffix(t *testing.T) {
	s := utils.UniqueSlug("La Buena Mesa")
	assert.True(t, strings.HasPrefix(s, "la-buena-mesa-"))
	assert.Greater(t, len(s), len("la-buena-mesa-"))
}

func TestRandomHexLength(t *testing.T) {
	tok, err := utils.RandomHex(32)
	assert.NoError(t, err)
	assert.Len(t, tok, 64)

	other, err := utils.RandomHex(32)
	assert.NoError(t, err)
	assert.NotEqual(t, tok, other)
}
