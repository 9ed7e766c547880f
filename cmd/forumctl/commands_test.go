package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
storage:
  driver: badger
  badger:
    in_memory: true
identity:
  strategy: seq
content:
  driver: none
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", path))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResolve(t *testing.T) {
	out, err := execute(t, "resolve", "42", "%E5%B0%8F%E6%98%8E")
	require.NoError(t, err)
	assert.Contains(t, out, "42\t42\tsupported=true")
	assert.Contains(t, out, "supported=false")
}

func TestAdminGrant_UnknownUser(t *testing.T) {
	_, err := execute(t, "admin", "grant", "nobody")
	assert.Error(t, err)
}

func TestCacheRefresh_NoSource(t *testing.T) {
	out, err := execute(t, "cache", "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "refreshed 0 posts")
}

func TestMigrate_RequiresFlags(t *testing.T) {
	_, err := execute(t, "migrate", "--old", "")
	assert.Error(t, err)
}
