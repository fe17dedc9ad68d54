//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/kaat-color/internal/server/storage"
)

// MockLeaderboard 实现 handler.Leaderboard 的 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) RecordRound(ctx context.Context, rec *storage.RoundRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockLeaderboard) GetLeaderboard(ctx context.Context, limit int) ([]*storage.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboard) GetDailyLeaderboard(ctx context.Context, limit int) ([]*storage.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboard) GetTeamRank(ctx context.Context, teamName string) (int64, error) {
	args := m.Called(ctx, teamName)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaderboard) GetRoundHistory(ctx context.Context, roomCode string, limit int) ([]*storage.RoundRecord, error) {
	args := m.Called(ctx, roomCode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.RoundRecord), args.Error(1)
}
