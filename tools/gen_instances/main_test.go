package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-hospital/internal/level"
)

func TestScalingSweepWritesLoadableLevels(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--scaling", "--rows", "12", "--cols", "16", "--walls", "0.1", "-o", dir})
	require.NoError(t, cmd.Execute())

	paths := strings.Fields(out.String())
	require.Len(t, paths, len(scalingAgents))
	for i, path := range paths {
		assert.Equal(t, dir, filepath.Dir(path))
		l, err := level.Load(path)
		require.NoError(t, err, path)
		assert.Len(t, l.Agents, scalingAgents[i])
	}
}

func TestBadParamsFail(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--agents", "0", "-o", t.TempDir()})
	assert.Error(t, cmd.Execute())
}
