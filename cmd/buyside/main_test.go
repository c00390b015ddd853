package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/buyside/internal/core"
)

const (
	cliFactbook = "MARCA,EMPRESA,País\nBrand A (Owner Co),Owner Co,Guatemala\n"
	cliPipeline = "Name,Notes,Tags\nOwner Co,first deal,\nOwner Co,second deal,\nZeta,,brand a fan\n"
)

// setupCLI writes fixture sources and points the configuration at them.
func setupCLI(t *testing.T) string {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()

	fb := filepath.Join(dir, "factbook.csv")
	pl := filepath.Join(dir, "pipeline.csv")
	require.NoError(t, os.WriteFile(fb, []byte(cliFactbook), 0o644))
	require.NoError(t, os.WriteFile(pl, []byte(cliPipeline), 0o644))

	t.Setenv("FACTBOOK_SOURCES", fb)
	t.Setenv("PIPELINE_SOURCES", pl)
	t.Setenv("MAPPING_SOURCE", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("LOG_LEVEL", "error")

	searchJSON, searchSummary, namesFilter = false, false, ""
	exportOut = core.ResultsFileName
	envFile = filepath.Join(dir, "missing.env")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--env-file", envFile))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNamesCommand(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "names")
	require.NoError(t, err)
	assert.Equal(t, "BRAND A\nOWNER CO\nZETA\n", out)

	out, err = run(t, "names", "--contains", "co")
	require.NoError(t, err)
	assert.Equal(t, "OWNER CO\n", out)
}

func TestSearchCommand(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "search", "Brand", "A")
	require.NoError(t, err)

	assert.Contains(t, out, "Results for BRAND A")
	assert.Contains(t, out, "Factbook Results")
	assert.Contains(t, out, "Guatemala")
	assert.Contains(t, out, "second deal")
	assert.Contains(t, out, "brand a fan")
	assert.Contains(t, out, "(2 rows)")
}

func TestSearchCommand_JSON(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "search", "zeta", "--json")
	require.NoError(t, err)

	var res core.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "ZETA", res.Term)
	assert.True(t, res.Fallback)
}

func TestSearchCommand_SummaryNotConfigured(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "search", "Brand A", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "AI Summary")
	assert.Contains(t, out, "SUM001")
}

func TestExportCommand(t *testing.T) {
	dir := setupCLI(t)
	path := filepath.Join(dir, "out.csv")

	_, err := run(t, "export", "Brand A", "--out", path)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus one row per pipeline partner")
}

type closeFailer struct {
	bytes.Buffer
	closed bool
}

func (c *closeFailer) Close() error {
	c.closed = true
	return errors.New("disk full")
}

func TestWriteAndClose_ReportsCloseError(t *testing.T) {
	v := &core.View{Columns: []string{"MARCA"}, Rows: [][]string{{"Brand A"}}}
	out := &closeFailer{}

	err := writeAndClose(out, "out.csv", v)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "close out.csv")
	assert.True(t, out.closed)
	assert.Contains(t, out.String(), "Brand A")
}

func TestExportCommand_Stdout(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "export", "Zeta", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "brand a fan")
}

func TestConfigError(t *testing.T) {
	setupCLI(t)
	t.Setenv("SERVER_PORT", "0")

	_, err := run(t, "names")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
}
