package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	teamStatsKey     = "team:stats:"
	leaderboardKey   = "leaderboard:round_wins"
	dailyLeaderboard = "leaderboard:daily:"
	historyKeyPrefix = "history:"

	// 每个房间保留的局数
	maxHistoryPerRoom = 20
)

// RoundRecord 一局结算记录
type RoundRecord struct {
	RoomCode        string    `json:"room_code"`
	TeamNames       [2]string `json:"team_names"`
	TeamTricks      [2]int    `json:"team_tricks"`
	Winner          int       `json:"winner"` // 1 或 2
	TrumpMakingTeam int       `json:"trump_making_team"`
	Bonus           string    `json:"bonus,omitempty"` // coat / talent
	BonusTeam       int       `json:"bonus_team,omitempty"`
	Dealer          int       `json:"dealer"`
	NextDealer      int       `json:"next_dealer"`
	PlayedAt        int64     `json:"played_at"`
}

// TeamStats 队伍统计（以队名为键）
type TeamStats struct {
	TeamName     string `json:"team_name"`
	Rounds       int    `json:"rounds"`
	RoundWins    int    `json:"round_wins"`
	Coats        int    `json:"coats"`
	Talents      int    `json:"talents"`
	LastPlayedAt int64  `json:"last_played_at"`
}

// WinRate 胜率（百分比）
func (s *TeamStats) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.RoundWins) / float64(s.Rounds) * 100
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank int
	TeamStats
}

// LeaderboardManager 排行榜管理器
type LeaderboardManager struct {
	redis *redis.Client
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client}
}

// RecordRound 记录一局结果：两队统计、排行榜和房间历史
func (lm *LeaderboardManager) RecordRound(ctx context.Context, rec *RoundRecord) error {
	if rec.PlayedAt == 0 {
		rec.PlayedAt = time.Now().Unix()
	}

	today := time.Now().Format("2006-01-02")
	dailyKey := dailyLeaderboard + today

	pipe := lm.redis.TxPipeline()
	for i, name := range rec.TeamNames {
		if name == "" {
			continue
		}
		team := i + 1
		key := teamStatsKey + name
		pipe.HSet(ctx, key, "team_name", name, "last_played_at", rec.PlayedAt)
		pipe.HIncrBy(ctx, key, "rounds", 1)

		won := int64(0)
		if rec.Winner == team {
			won = 1
		}
		pipe.HIncrBy(ctx, key, "round_wins", won)
		pipe.ZIncrBy(ctx, leaderboardKey, float64(won), name)
		pipe.ZIncrBy(ctx, dailyKey, float64(won), name)

		if rec.BonusTeam == team {
			switch rec.Bonus {
			case "coat":
				pipe.HIncrBy(ctx, key, "coats", 1)
			case "talent":
				pipe.HIncrBy(ctx, key, "talents", 1)
			}
		}
	}
	// 每日榜保留两天
	pipe.Expire(ctx, dailyKey, 48*time.Hour)

	if rec.RoomCode != "" {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("序列化对局记录失败: %w", err)
		}
		historyKey := historyKeyPrefix + rec.RoomCode
		pipe.LPush(ctx, historyKey, data)
		pipe.LTrim(ctx, historyKey, 0, maxHistoryPerRoom-1)
		pipe.Expire(ctx, historyKey, roomExpiration)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// GetTeamStats 获取队伍统计，未上榜返回 nil
func (lm *LeaderboardManager) GetTeamStats(ctx context.Context, teamName string) (*TeamStats, error) {
	data, err := lm.redis.HGetAll(ctx, teamStatsKey+teamName).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	atoi := func(key string) int {
		n, _ := strconv.Atoi(data[key])
		return n
	}
	lastPlayed, _ := strconv.ParseInt(data["last_played_at"], 10, 64)

	return &TeamStats{
		TeamName:     data["team_name"],
		Rounds:       atoi("rounds"),
		RoundWins:    atoi("round_wins"),
		Coats:        atoi("coats"),
		Talents:      atoi("talents"),
		LastPlayedAt: lastPlayed,
	}, nil
}

// GetLeaderboard 获取总排行榜（按胜局数从高到低）
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	return lm.getLeaderboard(ctx, leaderboardKey, limit)
}

// GetDailyLeaderboard 获取当日排行榜
func (lm *LeaderboardManager) GetDailyLeaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	return lm.getLeaderboard(ctx, dailyLeaderboard+time.Now().Format("2006-01-02"), limit)
}

func (lm *LeaderboardManager) getLeaderboard(ctx context.Context, key string, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	results, err := lm.redis.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(results))
	for i, result := range results {
		name, ok := result.Member.(string)
		if !ok {
			continue
		}

		stats, err := lm.GetTeamStats(ctx, name)
		if err != nil || stats == nil {
			continue
		}

		entries = append(entries, &LeaderboardEntry{Rank: i + 1, TeamStats: *stats})
	}
	return entries, nil
}

// GetTeamRank 获取队伍排名，未上榜返回 -1
func (lm *LeaderboardManager) GetTeamRank(ctx context.Context, teamName string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, teamName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}

// GetRoundHistory 获取房间最近的对局记录（新的在前）
func (lm *LeaderboardManager) GetRoundHistory(ctx context.Context, roomCode string, limit int) ([]*RoundRecord, error) {
	if limit <= 0 || limit > maxHistoryPerRoom {
		limit = maxHistoryPerRoom
	}

	items, err := lm.redis.LRange(ctx, historyKeyPrefix+roomCode, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*RoundRecord, 0, len(items))
	for _, item := range items {
		var rec RoundRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		records = append(records, &rec)
	}
	return records, nil
}
