package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := getRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := getRootCmd()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "farm", "report"} {
		assert.True(t, names[want], "%s subcommand should exist", want)
	}

	flag := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, flag)
	assert.Equal(t, "string", flag.Value.Type())
}

func TestHelpNeedsNoConfiguration(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "HERDBOOK_DB_DSN")
}

func TestFarmCreateIssuesToken(t *testing.T) {
	t.Setenv("HERDBOOK_DB_DRIVER", "sqlite")
	t.Setenv("HERDBOOK_DB_DSN", filepath.Join(t.TempDir(), "herd.db"))
	t.Setenv("HERDBOOK_AUTH_SECRET", "cli-test-secret-0123")
	t.Setenv("HERDBOOK_LOG_LEVEL", "error")

	_, err := run(t, "migrate")
	require.NoError(t, err)

	out, err := run(t, "farm", "create", "--name", "Hillside", "--phone", "+224600000000")
	require.NoError(t, err)
	assert.Contains(t, out, `"Hillside" registered`)
	assert.Contains(t, out, "token: ")

	_, err = run(t, "farm", "create", "--name", "HILLSIDE")
	require.Error(t, err)

	out, err = run(t, "farm", "list")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Hillside"))
}

func TestMissingSecretFailsEarly(t *testing.T) {
	t.Setenv("HERDBOOK_DB_DRIVER", "sqlite")
	t.Setenv("HERDBOOK_DB_DSN", ":memory:")
	t.Setenv("HERDBOOK_AUTH_SECRET", "short")

	_, err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HERDBOOK_AUTH_SECRET")
}
