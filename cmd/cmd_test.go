package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-slots/cmd/config"
	"github.com/mattsolo1/grove-slots/pkg/aggregate"
)

const datasetYAML = `records:
  - id: tv
    title: Television
    kind: product
    tags: [electronics, sale]
    fields: {price: 300}
  - id: radio
    title: Radio
    kind: product
    tags: [electronics]
    fields: {price: 40}
  - id: memo
    title: Memo
    kind: note
`

func testApp(t *testing.T) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "records.yaml")
	require.NoError(t, os.WriteFile(file, []byte(datasetYAML), 0o644))

	log := logrus.New()
	log.SetOutput(io.Discard)
	return &App{
		Config: &config.Config{
			DataDir:       filepath.Join(dir, "data"),
			CollapseLevel: -1,
			Aggregates:    []aggregate.Spec{{Name: "total", Op: aggregate.Sum, Field: "price"}},
		},
		Log: log,
	}, file
}

func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestShowGrouped(t *testing.T) {
	app, file := testApp(t)
	out := run(t, NewShowCmd(&app), "-f", file, "-g", "kind")

	assert.Contains(t, out, "▼ Note (1)  total=0\n└ Memo\n")
	assert.Contains(t, out, "▼ Product (2)  total=340\n│ Radio  #electronics\n└ Television  #electronics #sale\n")
	assert.Contains(t, out, "5 slots, 3 records shown")
}

func TestShowCollapseAndFilter(t *testing.T) {
	app, file := testApp(t)
	out := run(t, NewShowCmd(&app), "-f", file, "-g", "kind", "--collapse", "product")
	assert.Contains(t, out, "▶ Product (2)")
	assert.NotContains(t, out, "Radio")

	app2, file2 := testApp(t)
	out = run(t, NewShowCmd(&app2), "-f", file2, "-g", "tag", "--filter", "#sale")
	assert.Contains(t, out, "└ Television")
	assert.NotContains(t, out, "Radio")
}

func TestShowJSON(t *testing.T) {
	app, file := testApp(t)
	out := run(t, NewShowCmd(&app), "-f", file, "-g", "kind", "--json", "--start", "2", "-n", "2")

	var rows []slotJSON
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Index)
	assert.True(t, rows[0].Header)
	assert.Equal(t, "kind:product", rows[0].Option)
	assert.Equal(t, 340.0, rows[0].Aggregates["total"])
	require.NotNil(t, rows[1].Record)
	assert.Equal(t, "Radio", rows[1].Record.Title)
}

func TestImportThenShowFromStore(t *testing.T) {
	app, file := testApp(t)
	out := run(t, NewImportCmd(&app), file)
	assert.Contains(t, out, "Imported 3 records (3 in store)")

	out = run(t, NewShowCmd(&app), "-g", "kind", "--collapse-level", "0")
	assert.Contains(t, out, "▶ Note (1)")
	assert.Contains(t, out, "▶ Product (2)")
	assert.Contains(t, out, "2 slots, 0 records shown")

	export := filepath.Join(t.TempDir(), "out.yaml")
	out = run(t, NewImportCmd(&app), "--export", export)
	assert.Contains(t, out, "Exported 3 records")
	assert.FileExists(t, export)
}

func TestStats(t *testing.T) {
	app, file := testApp(t)
	out := run(t, NewStatsCmd(&app), "-f", file, "-g", "kind", "--cycles", "2")
	assert.Contains(t, out, "records:        3")
	assert.Contains(t, out, "slots:          5")
	assert.Contains(t, out, "slots_incremental_updates_total{op=collapse}")
	assert.Contains(t, out, "slots_rebuilds_total")
}

func TestVersionJSON(t *testing.T) {
	out := run(t, NewVersionCmd(), "--json")
	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
