package level

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGenerateBuildsValidLevel(t *testing.T) {
	p := GenParams{Seed: 7, Rows: 9, Cols: 12, Agents: 3, Colors: 2, Boxes: 2, WallDensity: 0.2, AgentGoals: true}
	spec, err := Generate(p)
	require.NoError(t, err)

	l, err := spec.Build()
	require.NoError(t, err)
	assert.Equal(t, 9, l.Rows)
	assert.Equal(t, 12, l.Cols)
	assert.Len(t, l.Agents, 3)
	assert.Len(t, l.Boxes, 6)
	assert.Len(t, l.BoxGoals, 6)
	assert.Len(t, l.AgentGoals, 3)
	assert.Equal(t, l.Agents[0].Color, l.Agents[2].Color, "agents cycle through colors")
}

func TestGenerateIsDeterministic(t *testing.T) {
	p := GenParams{Seed: 42, Rows: 8, Cols: 8, Agents: 2, Colors: 2, Boxes: 1, WallDensity: 0.3}
	a, err := Generate(p)
	require.NoError(t, err)
	b, err := Generate(p)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	p.Seed++
	c, err := Generate(p)
	require.NoError(t, err)
	assert.NotEqual(t, a.Initial, c.Initial)
}

func TestGenerateKeepsFreeCellsConnected(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		spec, err := Generate(GenParams{Seed: seed, Rows: 7, Cols: 7, Agents: 1, Boxes: 1, WallDensity: 0.9})
		require.NoError(t, err)

		g := newGenGrid(7, 7)
		for r, row := range strings.Split(strings.TrimRight(spec.Initial, "\n"), "\n") {
			for c := range row {
				if row[c] != '+' {
					g.cells[r*7+c] = ' '
				} else {
					g.cells[r*7+c] = '+'
				}
			}
		}
		assert.True(t, g.connected(), "seed %d split the level:\n%s", seed, spec.Initial)
	}
}

func TestGenerateRoundTripsThroughYAML(t *testing.T) {
	spec, err := Generate(GenParams{Seed: 3, Rows: 6, Cols: 10, Agents: 2, Colors: 2, Boxes: 1, WallDensity: 0.1})
	require.NoError(t, err)
	data, err := yaml.Marshal(spec)
	require.NoError(t, err)

	l, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, spec.Name, l.Name)
	assert.Len(t, l.Boxes, 2)
}

func TestGenerateRejects(t *testing.T) {
	cases := map[string]GenParams{
		"no agents":   {Rows: 5, Cols: 5},
		"too many":    {Rows: 5, Cols: 5, Agents: 11},
		"tiny":        {Rows: 2, Cols: 5, Agents: 1},
		"overcrowded": {Rows: 4, Cols: 4, Agents: 2, Boxes: 3},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Generate(p)
			assert.ErrorIs(t, err, ErrGenerate)
		})
	}
}
