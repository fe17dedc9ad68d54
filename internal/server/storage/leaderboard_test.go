package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboard_RecordRound(t *testing.T) {
	t.Parallel()

	client, _ := newTestRedis(t)
	lm := NewLeaderboardManager(client)
	ctx := context.Background()

	rounds := []*RoundRecord{
		{RoomCode: "123456", TeamNames: [2]string{"Red", "Blue"}, TeamTricks: [2]int{8, 5}, Winner: 1, TrumpMakingTeam: 1},
		{RoomCode: "123456", TeamNames: [2]string{"Red", "Blue"}, TeamTricks: [2]int{13, 0}, Winner: 1, TrumpMakingTeam: 1, Bonus: "coat", BonusTeam: 2},
		{RoomCode: "123456", TeamNames: [2]string{"Red", "Blue"}, TeamTricks: [2]int{0, 13}, Winner: 2, TrumpMakingTeam: 1, Bonus: "talent", BonusTeam: 1},
	}
	for _, rec := range rounds {
		require.NoError(t, lm.RecordRound(ctx, rec))
	}

	red, err := lm.GetTeamStats(ctx, "Red")
	require.NoError(t, err)
	require.NotNil(t, red)
	assert.Equal(t, 3, red.Rounds)
	assert.Equal(t, 2, red.RoundWins)
	assert.Equal(t, 0, red.Coats)
	assert.Equal(t, 1, red.Talents)
	assert.NotZero(t, red.LastPlayedAt)
	assert.InDelta(t, 66.67, red.WinRate(), 0.01)

	blue, err := lm.GetTeamStats(ctx, "Blue")
	require.NoError(t, err)
	assert.Equal(t, 1, blue.RoundWins)
	assert.Equal(t, 1, blue.Coats)
	assert.Equal(t, 0, blue.Talents)

	missing, err := lm.GetTeamStats(ctx, "Green")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLeaderboard_Ranking(t *testing.T) {
	t.Parallel()

	client, _ := newTestRedis(t)
	lm := NewLeaderboardManager(client)
	ctx := context.Background()

	record := func(names [2]string, winner int) {
		require.NoError(t, lm.RecordRound(ctx, &RoundRecord{TeamNames: names, Winner: winner}))
	}
	record([2]string{"Lions", "Tigers"}, 1)
	record([2]string{"Lions", "Tigers"}, 1)
	record([2]string{"Lions", "Tigers"}, 2)
	record([2]string{"Bears", "Wolves"}, 2)
	record([2]string{"Bears", "Wolves"}, 2)
	record([2]string{"Bears", "Wolves"}, 2)

	entries, err := lm.GetLeaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "Wolves", entries[0].TeamName)
	assert.Equal(t, 3, entries[0].RoundWins)
	assert.Equal(t, "Lions", entries[1].TeamName)

	daily, err := lm.GetDailyLeaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, daily, 4)

	rank, err := lm.GetTeamRank(ctx, "Lions")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)

	rank, err = lm.GetTeamRank(ctx, "Nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), rank)

	empty, err := lm.GetLeaderboard(ctx, 0)
	assert.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLeaderboard_RoundHistory(t *testing.T) {
	t.Parallel()

	client, mr := newTestRedis(t)
	lm := NewLeaderboardManager(client)
	ctx := context.Background()

	for i := range maxHistoryPerRoom + 5 {
		require.NoError(t, lm.RecordRound(ctx, &RoundRecord{
			RoomCode:   "654321",
			TeamNames:  [2]string{"Red", "Blue"},
			Winner:     1,
			Dealer:     i % 4,
			NextDealer: (i + 1) % 4,
		}))
	}

	assert.Equal(t, roomExpiration, mr.TTL("history:654321"))

	history, err := lm.GetRoundHistory(ctx, "654321", 0)
	require.NoError(t, err)
	assert.Len(t, history, maxHistoryPerRoom)
	// 新的在前
	assert.Equal(t, (maxHistoryPerRoom+4)%4, history[0].Dealer)
	assert.NotZero(t, history[0].PlayedAt)

	latest, err := lm.GetRoundHistory(ctx, "654321", 3)
	require.NoError(t, err)
	assert.Len(t, latest, 3)
}
