package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/apperrors"
	"github.com/palemoky/kaat-color/internal/game/engine"
	"github.com/palemoky/kaat-color/internal/game/room"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/protocol/convert"
	"github.com/palemoky/kaat-color/internal/server/storage"
)

// Start 开始新游戏：比分清零、随机选庄并发牌
func (gs *GameSession) Start() error {
	if !gs.room.IsFull() {
		return apperrors.ErrNeedFourPlayers
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.stopTimer()
	gs.stopped = false
	gs.engine.StartNewGame(gs.room.SeatNames(), gs.room.GetTeamNames())
	gs.roundNumber = 1
	gs.room.SetState(room.RoomStatePlaying)

	snap := gs.engine.Snapshot()
	gs.room.Broadcast(codec.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{
		Players:   gs.room.GetAllPlayersInfo(),
		TeamNames: snap.TeamNames,
		Dealer:    snap.Round.Dealer,
	}))
	gs.broadcastState(snap)
	gs.startTurnTimer()

	logrus.WithFields(logrus.Fields{"room": gs.room.Code, "dealer": snap.Round.Dealer}).Info("🎮 新游戏开始")
	return nil
}

// NewRound 由当前庄家重新发牌，比分保留
func (gs *GameSession) NewRound() error {
	if !gs.room.IsFull() {
		return apperrors.ErrNeedFourPlayers
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.stopped {
		return apperrors.ErrGameNotStart
	}
	if err := gs.engine.StartNewRound(); err != nil {
		return err
	}
	gs.stopTimer()
	gs.roundNumber++
	gs.room.SetState(room.RoomStatePlaying)

	snap := gs.engine.Snapshot()
	gs.room.Broadcast(codec.MustNewMessage(protocol.MsgNewRoundStarted, protocol.NewRoundStartedPayload{
		Dealer:      snap.Round.Dealer,
		RoundNumber: gs.roundNumber,
	}))
	gs.broadcastState(snap)
	gs.startTurnTimer()

	logrus.WithFields(logrus.Fields{"room": gs.room.Code, "round": gs.roundNumber, "dealer": snap.Round.Dealer}).Info("🃏 新一局开始")
	return nil
}

// Stop 终止牌局并停止计时器
func (gs *GameSession) Stop() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.stopped = true
	gs.stopTimer()
}

// finishRound 广播本局结算并记录到排行榜，调用方持有 gs.mu
func (gs *GameSession) finishRound(snap engine.Snapshot) {
	res := snap.LastResult
	if res == nil {
		return
	}
	gs.room.SetState(room.RoomStateRoundEnd)

	payload := convert.RoundResultToPayload(res, snap.Scores, snap.TeamNames)
	gs.room.Broadcast(codec.MustNewMessage(protocol.MsgRoundResult, payload))

	logrus.WithFields(logrus.Fields{
		"room":        gs.room.Code,
		"team_tricks": res.TeamTricks,
		"winner":      payload.WinnerName,
		"bonus":       payload.Bonus,
	}).Info("🏁 本局结束")

	gs.recordRound(payload, snap.TeamNames)
}

func (gs *GameSession) recordRound(p *protocol.RoundResultPayload, names [2]string) {
	if gs.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	rec := &storage.RoundRecord{
		RoomCode:        gs.room.Code,
		TeamNames:       names,
		TeamTricks:      p.TeamTricks,
		Winner:          p.Winner,
		TrumpMakingTeam: p.TrumpMakingTeam,
		Bonus:           p.Bonus,
		BonusTeam:       p.BonusTeam,
		Dealer:          p.Dealer,
		NextDealer:      p.NextDealer,
		PlayedAt:        time.Now().Unix(),
	}
	if err := gs.recorder.RecordRound(ctx, rec); err != nil {
		logrus.WithError(err).WithField("room", gs.room.Code).Warn("记录本局结果失败")
	}
}
