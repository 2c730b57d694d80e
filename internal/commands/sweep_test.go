package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeCacheFile(t *testing.T, dir, name string, accessed time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("result"), 0o644))
	require.NoError(t, os.Chtimes(path, accessed, accessed))
	return path
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	return exitErr.ExitCode()
}

func TestSweepRemovesExpired(t *testing.T) {
	dir := t.TempDir()
	expired := writeCacheFile(t, dir, "fam1", time.Now().Add(-11*24*time.Hour))
	fresh := writeCacheFile(t, dir, "fam2", time.Now().Add(-time.Hour))

	out, errOut, err := executeRoot(t, "sweep", "--cache-dir", dir, "--log-format", "text")
	require.NoError(t, err)

	assert.NoFileExists(t, expired)
	assert.FileExists(t, fresh)
	assert.Contains(t, out, "1 removed")
	assert.Contains(t, out, "1 retained")
	assert.Contains(t, errOut, "Running Cache Cleanup")
	assert.Contains(t, errOut, "fam1 last accessed on")
	assert.Contains(t, errOut, "outcome=Removed")
	assert.Contains(t, errOut, "outcome=Retained")
}

func TestSweepMissingDirectoryExitsUnavailable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	_, errOut, err := executeRoot(t, "sweep", "--cache-dir", dir, "--log-format", "text")
	require.Error(t, err)

	assert.Equal(t, exitUnavailable, exitCode(t, err))
	assert.Contains(t, errOut, "PASS FAILED.")
	assert.NotContains(t, errOut, "Running Cache Cleanup")
	assert.NotContains(t, errOut, "outcome=")
}

func TestSweepWithoutCacheDirIsConfigError(t *testing.T) {
	_, errOut, err := executeRoot(t, "sweep")
	require.Error(t, err)

	assert.Equal(t, exitFailure, exitCode(t, err))
	assert.Contains(t, errOut, "CONFIG ERROR.")
}

func TestSweepDryRun(t *testing.T) {
	dir := t.TempDir()
	expired := writeCacheFile(t, dir, "fam1", time.Now().Add(-30*24*time.Hour))

	out, _, err := executeRoot(t, "sweep", "--cache-dir", dir, "--dry-run")
	require.NoError(t, err)

	assert.FileExists(t, expired)
	assert.Contains(t, out, dryRunNotice)
}

func TestSweepWritesJSONLogFile(t *testing.T) {
	dir := t.TempDir()
	writeCacheFile(t, dir, "fam1.working", time.Now().Add(-12*24*time.Hour))
	logFile := filepath.Join(t.TempDir(), "cache-cleanup.log")

	_, errOut, err := executeRoot(t, "sweep", "--cache-dir", dir, "--log-file", logFile)
	require.NoError(t, err)
	assert.Empty(t, errOut)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var outcome map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		if _, ok := record["outcome"]; ok {
			outcome = record
		}
	}
	require.NotNil(t, outcome, "no outcome record in %s", data)
	assert.Equal(t, "fam1.working", outcome["entry"])
	assert.Equal(t, "Removed", outcome["outcome"])
	assert.Equal(t, "remove_expired", outcome["disposition"])
	assert.NotEmpty(t, outcome["last_access"])
}

func TestSweepReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	expired := writeCacheFile(t, dir, "fam1", time.Now().Add(-3*24*time.Hour))

	cfgPath := filepath.Join(t.TempDir(), "janitor.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("cache_dir: "+dir+"\nexpire_after: 48h\n"), 0o644))

	_, _, err := executeRoot(t, "sweep", "--config", cfgPath)
	require.NoError(t, err)
	assert.NoFileExists(t, expired)
}
