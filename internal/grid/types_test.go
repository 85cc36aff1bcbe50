package grid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Equal(t, 20, DefaultConfig().CellCount())

	for name, cfg := range map[string]Config{
		"zero rows":     {Rows: 0, Cols: 5, Min: 1, Max: 10},
		"zero cols":     {Rows: 4, Cols: 0, Min: 1, Max: 10},
		"min is empty":  {Rows: 4, Cols: 5, Min: 0, Max: 10},
		"max below min": {Rows: 4, Cols: 5, Min: 10, Max: 9},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
			_, err := New(cfg, nil, Hooks{})
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigIndex(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0, cfg.Index(0, 0))
	assert.Equal(t, 7, cfg.Index(1, 2))
	assert.Equal(t, 19, cfg.Index(3, 4))
	assert.Equal(t, -1, cfg.Index(4, 0))
	assert.Equal(t, -1, cfg.Index(0, 5))
	assert.Equal(t, -1, cfg.Index(-1, 0))
}

func TestStatsSummary(t *testing.T) {
	var s Stats
	assert.Equal(t,
		"You won 0 out of 0 games and lost 0 out of 0 games, with 0 successful placements, an average of 0.00 per game.",
		s.Summary())

	s.record(true, 20)
	s.record(false, 7)
	s.record(false, 4)
	assert.InDelta(t, 31.0/3.0, s.Average(), 1e-9)
	assert.Equal(t,
		"You won 1 out of 3 games and lost 2 out of 3 games, with 31 successful placements, an average of 10.33 per game.",
		s.Summary())
}

func TestSnapshotJSON(t *testing.T) {
	g := newTestGame(t, row(2), draws(4))
	g.StartNewGame()

	b, err := json.Marshal(g.Snapshot())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "in_progress", m["state"])
	assert.EqualValues(t, 4, m["current"])
	assert.NotContains(t, m, "impossible")

	var back Snapshot
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, g.Snapshot(), back)

	var o Outcome
	require.NoError(t, json.Unmarshal([]byte(`"loss"`), &o))
	assert.Equal(t, Loss, o)
	assert.Error(t, json.Unmarshal([]byte(`"draw"`), &o))
}
