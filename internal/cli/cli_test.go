package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/existflow/activityboard/internal/apitest"
	"github.com/existflow/activityboard/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser = "employee"
	testPass = "employee_password"
)

// setup points the CLI at a fresh fake API and an empty home directory
func setup(t *testing.T) *apitest.Server {
	t.Helper()
	srv, url := apitest.Start(t, testUser, testPass)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("ACTIVITYBOARD_BACKEND_URL", url)
	t.Setenv("ACTIVITYBOARD_USERNAME", testUser)
	t.Setenv("ACTIVITYBOARD_PASSWORD", testPass)
	return srv
}

// resetFlags undoes flag values left behind by a previous run
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed && f.Value.Type() != "stringArray" {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddThenList(t *testing.T) {
	srv := setup(t)

	out, err := run(t, "", "add", "call", "the", "plumber")
	require.NoError(t, err)
	assert.Contains(t, out, `Added #1: "call the plumber"`)

	a, ok := srv.Get(1)
	require.True(t, ok)
	assert.Equal(t, "call the plumber", a.Description)

	out, err = run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending (1)")
	assert.Contains(t, out, "call the plumber")
	assert.NotContains(t, out, "Done (")
}

func TestListDoneAndAll(t *testing.T) {
	srv := setup(t)
	srv.Seed("still open", false)
	srv.Seed("already done", true)

	out, err := run(t, "", "list", "--done")
	require.NoError(t, err)
	assert.Contains(t, out, "Done (1)")
	assert.Contains(t, out, "already done")
	assert.NotContains(t, out, "still open")

	out, err = run(t, "", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending (1)")
	assert.Contains(t, out, "Done (1)")
}

func TestDoneAndUndo(t *testing.T) {
	srv := setup(t)
	a := srv.Seed("stretch", false)

	out, err := run(t, "", "done", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed #1")
	stored, _ := srv.Get(a.ID)
	assert.True(t, stored.IsDone)

	out, err = run(t, "", "undo", "#1")
	require.NoError(t, err)
	assert.Contains(t, out, "Reopened #1")
	stored, _ = srv.Get(a.ID)
	assert.False(t, stored.IsDone)
	assert.Nil(t, stored.CompletedAt)
}

func TestEditAndShow(t *testing.T) {
	srv := setup(t)
	srv.Seed("typo", false)

	_, err := run(t, "", "edit", "1", "no", "typo")
	require.NoError(t, err)

	out, err := run(t, "", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 no typo")
	assert.Contains(t, out, "Status:   pending")
}

func TestShowMissingActivity(t *testing.T) {
	setup(t)

	_, err := run(t, "", "show", "42")
	require.Error(t, err)
	assert.Equal(t, "activity #42 not found", err.Error())
}

func TestInvalidID(t *testing.T) {
	setup(t)

	_, err := run(t, "", "done", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid activity id")
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	srv := setup(t)
	srv.Seed("keep me", false)

	out, err := run(t, "n\n", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	_, ok := srv.Get(1)
	assert.True(t, ok)

	out, err = run(t, "y\n", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted: "keep me"`)
	_, ok = srv.Get(1)
	assert.False(t, ok)
}

func TestDeleteYesSkipsPrompt(t *testing.T) {
	srv := setup(t)
	srv.Seed("drop me", false)

	out, err := run(t, "", "rm", "1", "--yes")
	require.NoError(t, err)
	assert.NotContains(t, out, "Are you sure")
	_, ok := srv.Get(1)
	assert.False(t, ok)
}

func TestWrongCredentialsHint(t *testing.T) {
	setup(t)
	t.Setenv("ACTIVITYBOARD_PASSWORD", "wrong")

	_, err := run(t, "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "board config login")
}

func TestConfigSetURL(t *testing.T) {
	setup(t)
	// the env override would mask what was saved
	require.NoError(t, os.Unsetenv("ACTIVITYBOARD_BACKEND_URL"))

	_, err := run(t, "", "config", "set-url", "ftp://nope")
	require.Error(t, err)

	out, err := run(t, "", "config", "set-url", "http://example.test/api/todo/")
	require.NoError(t, err)
	assert.Contains(t, out, "http://example.test/api/todo")

	dir, err := config.Dir()
	require.NoError(t, err)
	saved, err := config.LoadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/api/todo", saved.BackendURL)
}

func TestConfigShowMasksPassword(t *testing.T) {
	setup(t)

	out, err := run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "username: employee")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, testPass)
}

func TestConfigLoginChecksCredentials(t *testing.T) {
	setup(t)

	_, err := run(t, "someone\nbad\n", "config", "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials rejected")

	out, err := run(t, "\n"+testPass+"\n", "config", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in successfully")

	dir, err := config.Dir()
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "username: employee")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir, err := config.Dir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestInvalidConfigIsReportedAndKept(t *testing.T) {
	setup(t)
	t.Setenv("ACTIVITYBOARD_USERNAME", "")
	t.Setenv("ACTIVITYBOARD_PASSWORD", "")
	content := "username: alice\npassword: s3cret\nreconcile: ondrift\n"
	path := writeConfig(t, content)

	_, err := run(t, "", "--log-level", "DEBUG", "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconcile")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestConfigFileAndEnvAreCombined(t *testing.T) {
	setup(t)
	t.Setenv("ACTIVITYBOARD_USERNAME", "")
	t.Setenv("ACTIVITYBOARD_PASSWORD", "")
	t.Setenv("ACTIVITYBOARD_BACKEND_URL", "http://env.test/api/todo")
	writeConfig(t, "backend_url: http://file.test/api/todo\nusername: alice\npassword: s3cret\n")

	out, err := run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "username: alice")
	assert.Contains(t, out, "backend_url: http://env.test/api/todo")
	assert.NotContains(t, out, "s3cret")
}

func TestServeFakeRejectsOverlongPassword(t *testing.T) {
	setup(t)
	t.Setenv("ACTIVITYBOARD_PASSWORD", strings.Repeat("x", 73))

	_, err := run(t, "", "serve-fake", "--addr", "127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to hash password")
}
