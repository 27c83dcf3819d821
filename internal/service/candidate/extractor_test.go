package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimaryNameFromNamingPattern(t *testing.T) {
	cases := []struct {
		prompt string
		want   string
	}{
		{"I want to call it 'Bottom Up' or something like that", "bottomup"},
		{"I want to call it 'Bottom Up' or something", "bottomup"},
		{"a bakery called Sweet Crumbs", "sweetcrumbs"},
		{`a podcast CALLED "Night Owls"`, "nightowls"},
		{"let's call my studio 'Zen Garden'", "zengarden"},
		{"call it Rocket.Science", "rocketscience"},
	}

	for _, tc := range cases {
		got, ok := PrimaryName(tc.prompt)
		assert.True(t, ok, "prompt %q", tc.prompt)
		assert.Equal(t, tc.want, got, "prompt %q", tc.prompt)
	}
}

func TestPrimaryNameFromShortPrompt(t *testing.T) {
	got, ok := PrimaryName("Future Memories")
	assert.True(t, ok)
	assert.Equal(t, "futurememories", got)

	got, ok = PrimaryName("  Zephyr  ")
	assert.True(t, ok)
	assert.Equal(t, "zephyr", got)
}

func TestPrimaryNameAbsentForLongPrompts(t *testing.T) {
	prompts := []string{
		"an app for sharing recipes",
		"three word prompt",
		"I need a name that recalls the ocean",
		"",
		"   ",
	}
	for _, prompt := range prompts {
		_, ok := PrimaryName(prompt)
		assert.False(t, ok, "prompt %q", prompt)
	}
}

func TestPrimaryNameRejectsPunctuationOnly(t *testing.T) {
	_, ok := PrimaryName("...")
	assert.False(t, ok)
}
