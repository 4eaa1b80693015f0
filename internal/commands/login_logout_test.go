package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/commands"
	"tasklist/internal/exitcode"
)

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

// TestLoginCommand_NoOAuthClient verifies login fails without oauth_client.json
func TestLoginCommand_NoOAuthClient(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	env := newEnv(t, t.TempDir(), nil, false)

	code := (&commands.LoginCmd{}).Run(context.Background(), env, nil, &outBuf, &errBuf)

	assert.Equal(t, exitcode.AuthError, code)
	assert.Empty(t, outBuf.String())
	assert.Contains(t, errBuf.String(), "oauth_client.json not found")
	assert.Contains(t, errBuf.String(), "tasklist login")
}

// TestLoginCommand_ReloginWithUnusableToken verifies login proceeds when the
// stored token cannot be refreshed.
func TestLoginCommand_ReloginWithUnusableToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"no refresh token", `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`},
		{"corrupt", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "oauth_client.json"), testOAuthClient)
			writeFile(t, filepath.Join(dir, "token.json"), tt.token)

			var outBuf, errBuf bytes.Buffer
			env := newEnv(t, dir, nil, false)

			// Cancelled so the command does not wait for a browser.
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			code := (&commands.LoginCmd{}).Run(ctx, env, nil, &outBuf, &errBuf)

			assert.NotEqual(t, "already logged in\n", outBuf.String())
			assert.Equal(t, exitcode.AuthError, code)
		})
	}
}

// TestLogoutCommand_OnlyRemovesToken verifies logout only removes token.json
func TestLogoutCommand_OnlyRemovesToken(t *testing.T) {
	dir := t.TempDir()
	oauthPath := filepath.Join(dir, "oauth_client.json")
	tokenPath := filepath.Join(dir, "token.json")
	writeFile(t, oauthPath, testOAuthClient)
	writeFile(t, tokenPath, `{"access_token":"test","refresh_token":"test"}`)

	var outBuf, errBuf bytes.Buffer
	env := newEnv(t, dir, nil, false)

	code := (&commands.LogoutCmd{}).Run(context.Background(), env, nil, &outBuf, &errBuf)

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, errBuf.String())
	assert.Equal(t, "ok\n", outBuf.String())
	assert.NoFileExists(t, tokenPath)
	assert.FileExists(t, oauthPath)
}

// TestLogoutCommand_NotLoggedIn verifies logout handles not being logged in
func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	for _, quiet := range []bool{false, true} {
		var outBuf, errBuf bytes.Buffer
		env := newEnv(t, t.TempDir(), nil, quiet)

		code := (&commands.LogoutCmd{}).Run(context.Background(), env, nil, &outBuf, &errBuf)

		assert.Equal(t, exitcode.Success, code)
		assert.Empty(t, errBuf.String())
		want := "not logged in\n"
		if quiet {
			want = ""
		}
		assert.Equal(t, want, outBuf.String(), "quiet=%v", quiet)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}
