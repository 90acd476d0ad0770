package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/one-shot-planner/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	t.Setenv(config.ConfigEnv, path)
	return path
}

func TestRun_Help(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{nil, {"-h"}, {"help"}} {
		var stdout, stderr bytes.Buffer
		require.NoError(t, run(args, &stdout, &stderr))
		assert.Contains(t, stdout.String(), "Usage: osp <command>")
		for _, name := range []string{"config", "init", "react", "scenarios", "solve", "version"} {
			assert.Contains(t, stdout.String(), name)
		}
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	require.Error(t, run([]string{"plan"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Use 'osp help'")
}

func TestRun_BadFlag(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	require.Error(t, run([]string{"solve", "-bogus", "door"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: osp solve")
}

func TestRun_InitThenSolve(t *testing.T) {
	path := isolate(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"init"}, &stdout, &stderr))
	_, err := os.Stat(path)
	require.NoError(t, err)

	stdout.Reset()
	require.NoError(t, run([]string{"config", "solve.verify", "true"}, &stdout, &stderr))

	stdout.Reset()
	stderr.Reset()
	require.NoError(t, run([]string{"solve", "-log-level", "error", "door"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), `Transitions: ["[ask for key]","[unlock door]"]`)
	assert.Contains(t, stdout.String(), "Verified")
	assert.Empty(t, stderr.String())
}

func TestRun_Version(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"version"}, &stdout, &stderr))
	assert.Equal(t, "one-shot-planner version "+version+"\n", stdout.String())
}
