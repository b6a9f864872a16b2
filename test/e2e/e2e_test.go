package e2e_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fjson "github.com/mcncl/fjson"
	"github.com/mcncl/fjson/internal/config"
	"github.com/mcncl/fjson/repair"
)

const samplesDir = "../../testdata/samples"

func readSample(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(samplesDir, name))
	require.NoError(t, err)
	return string(data)
}

// TestEndToEnd_ServiceConfig parses a realistic hand-maintained config
// that uses every forgiving extension at once.
func TestEndToEnd_ServiceConfig(t *testing.T) {
	v, err := fjson.Parse(readSample(t, "service.fjson"))
	require.NoError(t, err)

	obj, ok := v.AsObject()
	require.True(t, ok)

	name, _ := obj.Get("name")
	s, _ := name.AsString()
	assert.Equal(t, "billing-api", s)

	pool, _ := obj.Get("pool")
	poolObj, ok := pool.AsObject()
	require.True(t, ok)

	max, _ := poolObj.Get("max")
	n, ok := max.AsInt64()
	require.True(t, ok, "0x10 parses as an integer")
	assert.Equal(t, int64(16), n)

	idle, _ := poolObj.Get("idle_timeout")
	f, _ := idle.AsFloat64()
	assert.Equal(t, 30.5, f)

	features, _ := obj.Get("features")
	elems, ok := features.AsArray()
	require.True(t, ok)
	assert.Len(t, elems, 3)
}

// TestEndToEnd_ImplicitDocument parses an implicit top-level document
// held together by newline separators.
func TestEndToEnd_ImplicitDocument(t *testing.T) {
	v, err := fjson.Parse(readSample(t, "metrics.fjson"))
	require.NoError(t, err)

	obj, ok := v.AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"service", "interval", "thresholds", "alerts"}, obj.Keys())

	thresholds, _ := obj.Get("thresholds")
	tobj, ok := thresholds.AsObject()
	require.True(t, ok)

	rate, _ := tobj.Get("error_rate")
	f, _ := rate.AsFloat64()
	assert.Equal(t, 0.05, f)
}

// TestEndToEnd_StrictSample confirms plain JSON passes under strict
// options and survives a round trip.
func TestEndToEnd_StrictSample(t *testing.T) {
	input := readSample(t, "strict.json")
	v, err := fjson.ParseWithOptions(input, fjson.StrictOptions())
	require.NoError(t, err)

	back, err := fjson.ParseWithOptions(v.CompactJSON(), fjson.StrictOptions())
	require.NoError(t, err)
	assert.True(t, v.Equal(back))
}

// TestEndToEnd_ForgivingSamplesRoundTrip normalizes every forgiving
// sample to compact JSON and checks it reparses strictly to an equal
// value.
func TestEndToEnd_ForgivingSamplesRoundTrip(t *testing.T) {
	entries, err := filepath.Glob(filepath.Join(samplesDir, "*.fjson"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, path := range entries {
		name := filepath.Base(path)
		if strings.HasPrefix(name, "broken") {
			continue
		}
		t.Run(name, func(t *testing.T) {
			v, err := fjson.Parse(readSample(t, name))
			require.NoError(t, err)

			back, err := fjson.ParseWithOptions(v.CompactJSON(), fjson.StrictOptions())
			require.NoError(t, err)
			assert.True(t, v.Equal(back))
		})
	}
}

// TestEndToEnd_RepairPipeline takes a truncated document through the
// full failure path: parse, diagnose, auto-repair, reparse.
func TestEndToEnd_RepairPipeline(t *testing.T) {
	input := readSample(t, "broken.fjson")

	_, err := fjson.Parse(input)
	require.Error(t, err)

	var perr *fjson.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, fjson.KindUnexpectedEOF, perr.Kind)
	assert.Contains(t, perr.Diagnostic(input), "error[unexpected_eof]")

	sugs := repair.Suggest(input, err)
	require.NotEmpty(t, sugs)
	assert.Equal(t, "bracket_matching", sugs[0].Strategy)

	v, err := repair.AutoRepair(input, fjson.DefaultOptions(), 3)
	require.NoError(t, err)
	obj, ok := v.AsObject()
	require.True(t, ok)

	replicas, _ := obj.Get("replicas")
	n, _ := replicas.AsInt64()
	assert.Equal(t, int64(3), n)
}

// TestEndToEnd_ConfigDrivenParsing wires a YAML config file into the
// parser options the way the CLI does.
func TestEndToEnd_ConfigDrivenParsing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".fjson.yml")
	require.NoError(t, os.WriteFile(path, []byte("parse:\n  comments: false\n  unquoted_keys: false\n"), 0644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	opts := cfg.Options()

	_, err = fjson.ParseWithOptions(readSample(t, "service.fjson"), opts)
	assert.Error(t, err, "comments are rejected under this config")

	_, err = fjson.ParseWithOptions(`{"a": 1,}`, opts)
	assert.NoError(t, err, "trailing commas stay enabled")
}

// TestEndToEnd_GeneratedWideDocument parses a machine-sized object to
// make sure nothing degrades beyond toy inputs.
func TestEndToEnd_GeneratedWideDocument(t *testing.T) {
	var b strings.Builder
	b.WriteString("{\n")
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&b, "  field_%d: %d,\n", i, i)
	}
	b.WriteString("}\n")

	v, err := fjson.Parse(b.String())
	require.NoError(t, err)
	obj, ok := v.AsObject()
	require.True(t, ok)
	assert.Equal(t, 2000, obj.Len())
}
