package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pushLevel = `
name: push
colors:
  blue: ["0", "A"]
initial: |
  ++++++
  +0A  +
  ++++++
goal: |
  ++++++
  +   A+
  ++++++
`

func TestBenchmarksEveryAlgorithm(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "push.yaml"), []byte(pushLevel), 0o644))
	out := filepath.Join(t.TempDir(), "nested", "results.csv")

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input", in, "--output", out, "--workers", "2"})
	require.NoError(t, cmd.Execute())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per solver")

	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}
	var solvers []string
	for _, row := range rows[1:] {
		solvers = append(solvers, row[col["solver"]])
		assert.Equal(t, "true", row[col["success"]])
		assert.Equal(t, "true", row[col["verified"]])
		assert.Equal(t, "2", row[col["makespan"]])
	}
	assert.Equal(t, []string{"CBS", "Prioritized", "Joint"}, solvers)
	assert.Contains(t, stdout.String(), "BENCHMARK SUMMARY")
}

func TestMissingLevelsFail(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input", t.TempDir()})
	assert.Error(t, cmd.Execute())
}
