package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fjson "github.com/mcncl/fjson"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".fjson.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.False(t, cfg.Parse.Strict)
	assert.Nil(t, cfg.Parse.Comments)
	assert.Equal(t, fjson.DefaultMaxDepth, cfg.Parse.MaxDepth)
	assert.False(t, cfg.Output.Pretty)
	assert.Equal(t, "  ", cfg.Output.Indent)
	assert.False(t, cfg.Repair.Enabled)
	assert.Equal(t, 3, cfg.Repair.MaxAttempts)
	assert.False(t, cfg.Dev.Debug)
}

func TestConfig_DefaultOptions(t *testing.T) {
	opts := NewConfig().Options()
	assert.Equal(t, fjson.DefaultOptions(), opts)
}

func TestConfig_LoadFromYAML(t *testing.T) {
	path := writeTempConfig(t, `
parse:
  comments: false
  newline_as_comma: false
  max_depth: 16
output:
  pretty: true
  indent: "    "
repair:
  enabled: true
  max_attempts: 5
dev:
  verbose: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	opts := cfg.Options()
	assert.False(t, opts.AllowComments)
	assert.False(t, opts.NewlineAsComma)
	// Unmentioned features keep their defaults.
	assert.True(t, opts.AllowTrailingCommas)
	assert.True(t, opts.AllowUnquotedKeys)
	assert.Equal(t, 16, opts.MaxDepth)

	assert.True(t, cfg.Output.Pretty)
	assert.Equal(t, "    ", cfg.Output.Indent)
	assert.True(t, cfg.Repair.Enabled)
	assert.Equal(t, 5, cfg.Repair.MaxAttempts)
	assert.True(t, cfg.Dev.Verbose)
}

func TestConfig_StrictBaselineWithOverride(t *testing.T) {
	path := writeTempConfig(t, `
parse:
  strict: true
  comments: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	opts := cfg.Options()
	assert.True(t, opts.AllowComments, "explicit feature overrides the strict baseline")
	assert.False(t, opts.AllowTrailingCommas)
	assert.False(t, opts.ImplicitTopLevel)
}

func TestConfig_ZeroMaxDepthMeansDefault(t *testing.T) {
	path := writeTempConfig(t, `
parse:
  max_depth: 0
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, fjson.DefaultMaxDepth, cfg.Options().MaxDepth)
}

func TestConfig_InvalidValues(t *testing.T) {
	_, err := LoadConfig(writeTempConfig(t, "parse:\n  max_depth: -1\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeTempConfig(t, "repair:\n  max_attempts: -2\n"))
	assert.Error(t, err)
}

func TestConfig_LoadErrors(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/.fjson.yml")
	assert.Error(t, err)

	_, err = LoadConfig(writeTempConfig(t, "parse: [not, a, mapping\n"))
	assert.Error(t, err)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".fjson.yml"), []byte("{}\n"), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(sub))

	found := FindConfigFile()
	require.NotEmpty(t, found)
	assert.Equal(t, ".fjson.yml", filepath.Base(found))
}
