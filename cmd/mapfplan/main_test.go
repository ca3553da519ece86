package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
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

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSolvePrintsPlan(t *testing.T) {
	lvl := writeFile(t, "push.yaml", pushLevel)
	metricsPath := filepath.Join(t.TempDir(), "metrics.prom")

	for _, alg := range []string{"cbs", "prioritized", "joint"} {
		t.Run(alg, func(t *testing.T) {
			out, _, err := execute(t, "solve", lvl, "--algorithm", alg, "--check", "--metrics-out", metricsPath)
			require.NoError(t, err)
			assert.Equal(t, "Push(E,E)\nPush(E,E)\n", out)

			data, err := os.ReadFile(metricsPath)
			require.NoError(t, err)
			assert.Contains(t, string(data), "mapf_runs_total")
		})
	}
}

func TestSolveShowWritesFramesToStderr(t *testing.T) {
	lvl := writeFile(t, "push.yaml", pushLevel)
	out, errOut, err := execute(t, "solve", lvl, "--show", "--frontier", "bfs")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Contains(t, errOut, "+  0A+")
	assert.Contains(t, errOut, "solver finished")
}

func TestSolveConfigFile(t *testing.T) {
	lvl := writeFile(t, "push.yaml", pushLevel)
	cfg := writeFile(t, "planner.toml", "[planner]\nalgorithm = \"joint\"\n[log]\nformat = \"json\"\n")
	_, errOut, err := execute(t, "solve", lvl, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, errOut, `"solver":"Joint"`)
}

func TestSolveRejectsBadFlags(t *testing.T) {
	lvl := writeFile(t, "push.yaml", pushLevel)
	_, _, err := execute(t, "solve", lvl, "--algorithm", "astar")
	assert.Error(t, err)
	_, _, err = execute(t, "solve", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSolveFailureIsAnError(t *testing.T) {
	lvl := writeFile(t, "blocked.yaml", `
name: blocked
colors:
  blue: ["0"]
initial: |
  ++++++
  +0 + +
  ++++++
goal: |
  ++++++
  +  +0+
  ++++++
`)
	_, _, err := execute(t, "solve", lvl, "--max-time", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "infeasible")
}

func TestValidate(t *testing.T) {
	lvl := writeFile(t, "push.yaml", pushLevel)
	out, _, err := execute(t, "validate", lvl)
	require.NoError(t, err)
	assert.Contains(t, out, `Level "push": 3x6, 1 agents, 1 boxes, 1 box goals`)
	assert.Contains(t, out, "agent 0 (blue): 1 boxes, 1 box goals")
}

func TestShow(t *testing.T) {
	lvl := writeFile(t, "push.yaml", pushLevel)

	out, _, err := execute(t, "show", lvl)
	require.NoError(t, err)
	assert.Equal(t, "++++++\n+0A a+\n++++++\n", out)

	plan := writeFile(t, "plan.txt", "Push(E,E)\nPush(E,E)\n")
	out, _, err = execute(t, "show", lvl, plan)
	require.NoError(t, err)
	assert.Contains(t, out, "step 2/2  Push(E,E)\n++++++\n+  0A+")

	bad := writeFile(t, "bad.txt", "Move(W)\n")
	_, _, err = execute(t, "show", lvl, bad)
	assert.Error(t, err)
}
