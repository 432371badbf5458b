package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderResetPassword(t *testing.T) {
	subject, text, html, err := Render(ResetPassword, map[string]any{
		"Name":     "Alice",
		"AppName":  "coursewire",
		"ResetURL": "https://app.test/resetpassword/abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, "coursewire password reset", strings.TrimSpace(subject))
	assert.Contains(t, text, "https://app.test/resetpassword/abc123")
	assert.Contains(t, html, `href="https://app.test/resetpassword/abc123"`)
	assert.Contains(t, html, "Alice")
}

func TestRenderWelcome(t *testing.T) {
	subject, text, html, err := Render(Welcome, map[string]any{
		"Name":        "Alice",
		"AppName":     "coursewire",
		"FrontendURL": "https://app.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to coursewire", strings.TrimSpace(subject))
	assert.Contains(t, text, "https://app.test")
	assert.Contains(t, html, "Alice")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	require.Error(t, err)
}
