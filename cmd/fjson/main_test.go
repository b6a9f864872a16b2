package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fjson "github.com/mcncl/fjson"
	"github.com/mcncl/fjson/internal/config"
)

func writeTempInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestContext() *Context {
	return &Context{Debug: false, Cfg: config.NewConfig()}
}

func TestRun_SimpleDocument(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Input = writeTempInput(t, `{name: "John", age: 30, active: true,} // profile`)
	CLI.Output = filepath.Join(t.TempDir(), "out.json")

	err := run(newTestContext())
	require.NoError(t, err)

	out, err := os.ReadFile(CLI.Output)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"John","age":30,"active":true}`+"\n", string(out))
}

func TestRun_PrettyOutput(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Input = writeTempInput(t, `{a: 1}`)
	CLI.Output = filepath.Join(t.TempDir(), "out.json")
	CLI.Pretty = true

	err := run(newTestContext())
	require.NoError(t, err)

	out, err := os.ReadFile(CLI.Output)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", string(out))
}

func TestRun_StrictRejectsForgivingInput(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Input = writeTempInput(t, `{a: 1, // nope
	}`)
	CLI.Strict = true

	err := run(newTestContext())
	assert.Error(t, err)
}

func TestRun_RepairFixesBrokenInput(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Input = writeTempInput(t, `{"a": 1`)
	CLI.Output = filepath.Join(t.TempDir(), "out.json")
	CLI.Repair = true

	err := run(newTestContext())
	require.NoError(t, err)

	out, err := os.ReadFile(CLI.Output)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`+"\n", string(out))
}

func TestRun_MissingInputFile(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Input = filepath.Join(t.TempDir(), "does-not-exist.json")

	err := run(newTestContext())
	assert.Error(t, err)
}

func TestResolveOptions_Flags(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.NoComments = true
	CLI.NoNewline = true
	CLI.MaxDepth = 10

	opts := resolveOptions(config.NewConfig())
	assert.False(t, opts.AllowComments)
	assert.False(t, opts.NewlineAsComma)
	assert.True(t, opts.AllowTrailingCommas)
	assert.Equal(t, 10, opts.MaxDepth)
}

func TestResolveOptions_StrictKeepsDepth(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Strict = true

	cfg := config.NewConfig()
	cfg.Parse.MaxDepth = 42

	opts := resolveOptions(cfg)
	assert.Equal(t, fjson.StrictOptions().AllowComments, opts.AllowComments)
	assert.False(t, opts.ImplicitTopLevel)
	assert.Equal(t, 42, opts.MaxDepth)
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	path := filepath.Join(t.TempDir(), ".fjson.yml")
	require.NoError(t, os.WriteFile(path, []byte("parse:\n  comments: false\n"), 0644))
	CLI.Config = path

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Options().AllowComments)
}

func TestLoadConfig_BadFile(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Config = filepath.Join(t.TempDir(), "missing.yml")
	_, err := loadConfig()
	assert.Error(t, err)
}
