package records

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/numbergame/internal/auth"
	"github.com/robalobadob/numbergame/internal/database"
)

func TestRoundLifecycleAndStats(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	defer db.Close()

	users := auth.NewUsers(db)
	u, err := users.Create(ctx, "alice", "password1")
	require.NoError(t, err)

	st := NewStore(db)
	owner := Owner{UserID: u.ID}
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	play := func(id string, won bool, placements, impossible int, at time.Time) {
		require.NoError(t, st.StartRound(ctx, Round{ID: id, SessionID: "s1", Owner: owner, Mode: "classic", StartedAt: at}))
		for i := 0; i < placements; i++ {
			require.NoError(t, st.RecordPlacement(ctx, id))
		}
		require.NoError(t, st.FinishRound(ctx, Result{
			ID: id, Owner: owner, Won: won, Placements: placements, Impossible: impossible, FinishedAt: at.Add(time.Minute),
		}))
	}
	play("g1", true, 20, 0, start)
	play("g2", true, 20, 0, start.Add(time.Hour))
	play("g3", false, 6, 512, start.Add(2*time.Hour))

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.GamesPlayed)
	assert.Equal(t, 2, got.Wins)
	assert.Equal(t, 1, got.Losses)
	assert.Equal(t, 46, got.TotalPlacements)
	assert.Equal(t, 0, got.Streak)
	assert.Equal(t, 2, got.BestStreak)

	rows, err := st.RecentGames(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "g3", rows[0].ID)
	assert.Equal(t, "lost", rows[0].Status)
	assert.Equal(t, 512, rows[0].Impossible)
	assert.Equal(t, "won", rows[2].Status)
	assert.Zero(t, rows[2].Impossible)

	require.NoError(t, st.StartRound(ctx, Round{ID: "g4", SessionID: "s1", Owner: owner, Mode: "classic", StartedAt: start.Add(3 * time.Hour)}))
	require.NoError(t, st.AbandonRound(ctx, "g4"))
	rows, err = st.RecentGames(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "abandoned", rows[0].Status)
	rows, err = st.RecentGames(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "g3", rows[1].ID)

	// Placements on a closed round are ignored.
	require.NoError(t, st.RecordPlacement(ctx, "g3"))
	rows, err = st.RecentGames(ctx, u.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, rows[1].Placements)
}

func TestClaimAnonGames(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	defer db.Close()

	u, err := auth.NewUsers(db).Create(ctx, "bob", "password1")
	require.NoError(t, err)
	st := NewStore(db)

	anon := Owner{AnonID: "anon-1"}
	require.NoError(t, st.StartRound(ctx, Round{ID: "a1", SessionID: "s", Owner: anon, Mode: "classic", StartedAt: time.Now()}))
	require.NoError(t, st.FinishRound(ctx, Result{ID: "a1", Owner: anon, Won: false, Placements: 3, Impossible: 7, FinishedAt: time.Now()}))

	n, err := st.ClaimAnonGames(ctx, "anon-1", u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rows, err := st.RecentGames(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a1", rows[0].ID)

	n, err = st.ClaimAnonGames(ctx, "", u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
