package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/name-bender-go/internal/domain"
)

func TestParseTLDs(t *testing.T) {
	tlds, err := parseTLDs([]string{".COM", " io ", "", ".dev"})
	require.NoError(t, err)
	assert.Equal(t, []string{".com", ".io", ".dev"}, tlds)

	tlds, err = parseTLDs(nil)
	require.NoError(t, err)
	assert.Empty(t, tlds)
}

func TestParseTLDsRejectsUnknownTLD(t *testing.T) {
	_, err := parseTLDs([]string{".com", "notatld"})
	assert.ErrorContains(t, err, `".notatld"`)
}

func TestPrintResult(t *testing.T) {
	var out bytes.Buffer
	printResult(&out, domain.SweepResult{
		Name:      "bottomup",
		Total:     3,
		Available: []domain.CheckResult{{TLD: ".io", Status: domain.StatusAvailable}},
		Taken: []domain.CheckResult{
			{TLD: ".com", Status: domain.StatusTaken},
			{TLD: ".net", Status: domain.StatusTaken},
		},
	})

	text := out.String()
	assert.Contains(t, text, "Available (1 of 3)")
	assert.Contains(t, text, "bottomup.io")
	assert.Contains(t, text, "Taken (2)")
	assert.Contains(t, text, ".com .net")
}

func TestRootCmdRequiresName(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
