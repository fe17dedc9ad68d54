package handler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/types"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
	defaultHistoryLimit     = 5
	maxHistoryLimit         = 20
	queryTimeout            = 3 * time.Second
)

// handleGetLeaderboard 获取队伍排行榜
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, msg *protocol.Message) {
	limit, daily := defaultLeaderboardLimit, false
	if payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg); err == nil {
		if payload.Limit > 0 {
			limit = min(payload.Limit, maxLeaderboardLimit)
		}
		daily = payload.Daily
	}

	entries := []protocol.LeaderboardEntry{}
	if h.leaderboard != nil {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		query := h.leaderboard.GetLeaderboard
		if daily {
			query = h.leaderboard.GetDailyLeaderboard
		}
		stats, err := query(ctx, limit)
		if err != nil {
			logrus.WithError(err).Warn("获取排行榜失败")
			client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取排行榜失败"))
			return
		}
		for _, e := range stats {
			entries = append(entries, protocol.LeaderboardEntry{
				Rank:      e.Rank,
				TeamName:  e.TeamName,
				RoundWins: e.RoundWins,
				Coats:     e.Coats,
				Talents:   e.Talents,
				Rounds:    e.Rounds,
				WinRate:   e.WinRate(),
			})
		}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{
		Entries: entries,
		Daily:   daily,
	}))
}

// handleGetHistory 当前房间最近的对局和两队总榜名次
func (h *Handler) handleGetHistory(client types.ClientInterface, msg *protocol.Message) {
	r := h.currentRoom(client)
	if r == nil {
		return
	}

	limit := defaultHistoryLimit
	if payload, err := codec.ParsePayload[protocol.GetHistoryPayload](msg); err == nil && payload.Limit > 0 {
		limit = min(payload.Limit, maxHistoryLimit)
	}

	result := protocol.HistoryResultPayload{
		RoomCode:  r.Code,
		Rounds:    []protocol.HistoryEntry{},
		TeamNames: r.GetTeamNames(),
		TeamRanks: [2]int64{-1, -1},
	}
	if h.leaderboard != nil {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		records, err := h.leaderboard.GetRoundHistory(ctx, r.Code, limit)
		if err != nil {
			logrus.WithError(err).WithField("room", r.Code).Warn("获取对局记录失败")
			client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取对局记录失败"))
			return
		}
		for _, rec := range records {
			result.Rounds = append(result.Rounds, protocol.HistoryEntry{
				TeamNames:  rec.TeamNames,
				TeamTricks: rec.TeamTricks,
				Winner:     rec.Winner,
				Bonus:      rec.Bonus,
				BonusTeam:  rec.BonusTeam,
				PlayedAt:   rec.PlayedAt,
			})
		}
		for i, name := range result.TeamNames {
			if rank, err := h.leaderboard.GetTeamRank(ctx, name); err == nil {
				result.TeamRanks[i] = rank
			}
		}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgHistoryResult, result))
}

// handleGetRoomList 获取可加入的房间列表
func (h *Handler) handleGetRoomList(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomListResult, protocol.RoomListResultPayload{
		Rooms: h.roomManager.GetRoomList(),
	}))
}
