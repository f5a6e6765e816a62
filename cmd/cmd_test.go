package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentic-research/rigseq/api"
	"github.com/agentic-research/rigseq/internal/diag"
	"github.com/agentic-research/rigseq/internal/ingest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanDoc = `{
  "name": "hatch",
  "modules": [{
    "nodes": [{"id": 0, "position": [0, 0, 0]}, {"id": 1, "position": [1, 0, 0]}],
    "nodes2": [{"name": "axle_l", "position": [0, 0, 1]}],
    "beams": [{"node1": 0, "node2": "axle_l"}, {"node1": 1, "node2": 0}]
  }]
}`

const brokenDoc = `{
  "name": "hatch",
  "modules": [{
    "nodes": [{"id": 0, "position": [0, 0, 0]}, {"id": 1, "position": [1, 0, 0]}],
    "nodes2": [{"name": "axle_l", "position": [0, 0, 1]}],
    "beams": [{"node1": 0, "node2": "axle_l"}, {"node1": 1, "node2": "missing"}]
  }]
}`

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDoc(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestResolve_Stdout(t *testing.T) {
	path := writeDoc(t, "hatch.json", cleanDoc)

	stdout, stderr, err := execute(t, "resolve", path)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	doc, err := ingest.Decode([]byte(stdout), ingest.FormatJSON, "stdout")
	require.NoError(t, err)
	beams := doc.Modules[0].Beams
	assert.Equal(t, 2, beams[0].Node2.CanonicalIndex())
	assert.Equal(t, 0, beams[1].Node2.CanonicalIndex())
}

func TestResolve_FormatYAML(t *testing.T) {
	path := writeDoc(t, "hatch.json", cleanDoc)

	stdout, _, err := execute(t, "resolve", "--format", "yaml", path)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(stdout, "{"))

	doc, err := ingest.Decode([]byte(stdout), ingest.FormatYAML, "stdout")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Modules[0].Beams[0].Node2.CanonicalIndex())
}

func TestResolve_ConfigFile(t *testing.T) {
	path := writeDoc(t, "hatch.json", cleanDoc)
	conf := writeDoc(t, "rigseq.toml", "[output]\nformat = \"yaml\"\n")

	stdout, _, err := execute(t, "resolve", "--config", conf, path)
	require.NoError(t, err)
	_, err = ingest.Decode([]byte(stdout), ingest.FormatYAML, "stdout")
	require.NoError(t, err)
}

func TestResolve_Errors(t *testing.T) {
	path := writeDoc(t, "hatch.json", brokenDoc)

	t.Run("reported", func(t *testing.T) {
		stdout, stderr, err := execute(t, "resolve", path)
		require.NoError(t, err)
		assert.Contains(t, stderr, "ERROR ["+api.RootModuleName+"/beams]")
		assert.Contains(t, stderr, "missing")
		assert.Contains(t, stdout, `"unresolved": "missing"`)
	})

	t.Run("strict", func(t *testing.T) {
		stdout, _, err := execute(t, "resolve", "--strict", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "strict mode")
		assert.Empty(t, stdout, "nothing is written in strict mode")
	})
}

func TestResolve_StrictRejectsIncomingMarker(t *testing.T) {
	path := writeDoc(t, "marked.json", strings.Replace(cleanDoc, `"node2": 0`, `"node2": {"unresolved": "lost"}`, 1))

	_, stderr, err := execute(t, "resolve", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "lost")

	stdout, _, err := execute(t, "resolve", "--strict", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict mode")
	assert.Empty(t, stdout)
}

func TestResolve_FatalRefusesOutput(t *testing.T) {
	path := writeDoc(t, "bad.json", `{"modules": [null]}`)

	stdout, stderr, err := execute(t, "resolve", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fatal")
	assert.Contains(t, stderr, "FATAL")
	assert.Empty(t, stdout)
}

func TestResolve_OutputFile(t *testing.T) {
	path := writeDoc(t, "hatch.json", cleanDoc)
	out := filepath.Join(t.TempDir(), "resolved", "hatch.yaml")

	stdout, stderr, err := execute(t, "resolve", "-o", out, path)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Wrote "+out)

	doc, err := ingest.NewOSLoader().Load(out)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Modules[0].Beams[0].Node2.CanonicalIndex())
}

func TestResolve_LegacyDisabled(t *testing.T) {
	path := writeDoc(t, "hatch.json", brokenDoc)

	stdout, stderr, err := execute(t, "resolve", "--legacy=false", "--strict", path)
	require.NoError(t, err, "a pass-through records no errors")
	assert.Empty(t, stderr)

	doc, err := ingest.Decode([]byte(stdout), ingest.FormatJSON, "stdout")
	require.NoError(t, err)
	n2 := doc.Modules[0].Beams[0].Node2
	assert.False(t, n2.IsResolved())
	assert.Equal(t, "axle_l", n2.Name)
}

func TestStats(t *testing.T) {
	path := writeDoc(t, "hatch.json", brokenDoc)

	stdout, _, err := execute(t, "stats", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "statistic")
	assert.Contains(t, stdout, "unresolved")
	assert.NotContains(t, stdout, "axle_l")

	stdout, _, err = execute(t, "stats", "--nodes", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "axle_l")
	assert.Contains(t, stdout, "named")
}

func TestExport(t *testing.T) {
	path := writeDoc(t, "hatch.json", cleanDoc)
	dbPath := filepath.Join(t.TempDir(), "hatch.db")

	_, stderr, err := execute(t, "export", path, dbPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Exported 3 nodes")

	stats, err := ingest.LoadStats(dbPath)
	require.NoError(t, err)
	assert.Equal(t, 3, stats["total"])
	assert.Equal(t, 1, stats["named"])
}

func TestQuery(t *testing.T) {
	path := writeDoc(t, "hatch.json", cleanDoc)
	dbPath := filepath.Join(t.TempDir(), "hatch.db")
	_, _, err := execute(t, "export", path, dbPath)
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"table", []string{"query", path, `$[?(@.origin == 'named')].source`}, "\"axle_l\"\n"},
		{"document", []string{"query", "--target", "document", path, `$.modules[0].beams[0].node2.index`}, "2\n"},
		{"export", []string{"query", dbPath, `$[?(@.origin == 'named')].index`}, "2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}

	_, _, err = execute(t, "query", "--target", "document", dbPath, "$")
	assert.Error(t, err)
	_, _, err = execute(t, "query", "--target", "graph", path, "$")
	assert.Error(t, err)
}

func TestFormatMessage(t *testing.T) {
	m := diag.Message{Text: "named node missing not found", Severity: diag.Error, Keyword: "beams", Module: "cab"}
	assert.Equal(t, "ERROR [cab/beams] named node missing not found", formatMessage(m, false))

	styled := formatMessage(m, true)
	assert.Contains(t, styled, "ERROR")
	assert.Contains(t, styled, "named node missing not found")
}
