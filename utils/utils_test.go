package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlackLink(t *testing.T) {
	assert.Equal(t, "<https://x/1|Acme>", SlackLink("https://x/1", "Acme"))
	assert.Equal(t, "<https://x/1|AB>", SlackLink("https://x/1", "<A|B>"))
	assert.Equal(t, "Acme", SlackLink("", "Acme"))
}

func TestSlackMention(t *testing.T) {
	assert.Equal(t, "<@U123>", SlackMention("U123"))
	assert.Equal(t, "", SlackMention(""))
}

func TestAssertInvariant(t *testing.T) {
	assert.NotPanics(t, func() { AssertInvariant(true, "ok") })
	assert.PanicsWithValue(t, "invariant violated - broken", func() { AssertInvariant(false, "broken") })
}
