package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get(AnalysisFile, KeyAnalysisSystem)
	require.NoError(t, err)
	assert.Contains(t, prompt, "SWOT")
	assert.Contains(t, prompt, "progressPct")
}

func TestGet_InvalidFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get(AnalysisFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFormat(t *testing.T) {
	out := Format("Hello {{.Name}}, see {{.Other}} and {{.Missing}}", map[string]string{
		"Name":  "{{.Other}}",
		"Other": "x",
	})

	assert.Equal(t, "Hello {{.Other}}, see x and {{.Missing}}", out)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Placeholders("{{.B}} {{.A}} {{.B}}"))
	assert.Empty(t, Placeholders("no placeholders"))
}

func TestRender(t *testing.T) {
	out, err := Render(AnalysisFile, KeyAnalysisUser, map[string]string{
		"URL":            "https://acme.example",
		"WebsiteContent": "# Website content",
		"SearchSection":  "",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "## Website URL\nhttps://acme.example")
	assert.NotContains(t, out, "{{.")

	_, err = Render(AnalysisFile, KeyAnalysisUser, map[string]string{"URL": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SearchSection")
}
