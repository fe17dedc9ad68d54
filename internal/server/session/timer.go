package session

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/game/engine"
)

// --- 超时控制 ---

// startTurnTimer 为当前出牌座位计时，调用方持有 gs.mu
// 轮到掉线玩家时改为离线等待。
func (gs *GameSession) startTurnTimer() {
	if gs.stopped || gs.engine.State() != engine.GameStatePlaying {
		return
	}
	seat := gs.engine.CurrentPlayer()
	offline := !gs.room.IsOnline(gs.room.SeatIDs()[seat])

	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()

	gs.timerSeq++
	gs.remainingTime = gs.turnTimeout
	if offline {
		gs.armOfflineTimer(seat)
		return
	}
	gs.armTurnTimer(gs.turnTimeout)
}

// armTurnTimer 调用方持有 gs.timerMu
func (gs *GameSession) armTurnTimer(d time.Duration) {
	if gs.turnTimeout <= 0 {
		return
	}
	seq := gs.timerSeq
	gs.timerStartTime = time.Now()
	gs.remainingTime = d
	gs.turnTimer = time.AfterFunc(d, func() {
		gs.handleTimeout(seq)
	})
}

// armOfflineTimer 调用方持有 gs.timerMu
func (gs *GameSession) armOfflineTimer(seat int) {
	if gs.offlineTimeout <= 0 {
		return
	}
	seq := gs.timerSeq
	gs.offlineTimer = time.AfterFunc(gs.offlineTimeout, func() {
		gs.handleTimeout(seq)
	})
	logrus.WithFields(logrus.Fields{"room": gs.room.Code, "seat": seat, "wait": gs.offlineTimeout}).Info("⏸️ 玩家离线，等待重连")
}

// handleTimeout 超时后替当前玩家出牌
func (gs *GameSession) handleTimeout(seq uint64) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.timerMu.Lock()
	stale := seq != gs.timerSeq
	gs.timerMu.Unlock()
	if stale || gs.stopped || gs.engine.State() != engine.GameStatePlaying {
		return
	}

	seat := gs.engine.CurrentPlayer()
	before := gs.engine.Snapshot()
	snap, err := gs.engine.AutoPlay()
	if err != nil {
		logrus.WithError(err).WithField("room", gs.room.Code).Warn("超时自动出牌失败")
		return
	}
	logrus.WithFields(logrus.Fields{
		"room": gs.room.Code,
		"seat": seat,
		"hand": card.Format(before.Players[seat].Hand),
	}).Info("⏰ 出牌超时，自动出牌")
	gs.afterPlay(before, snap, seat)
}

// stopTimer 停止所有计时器，调用方持有 gs.mu
func (gs *GameSession) stopTimer() {
	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()

	gs.timerSeq++
	if gs.turnTimer != nil {
		gs.turnTimer.Stop()
		gs.turnTimer = nil
	}
	if gs.offlineTimer != nil {
		gs.offlineTimer.Stop()
		gs.offlineTimer = nil
	}
}

// --- 离线处理 ---

// PlayerOffline 玩家掉线，正轮到该玩家时暂停出牌计时并开始离线等待
func (gs *GameSession) PlayerOffline(playerID string) {
	seat := gs.room.SeatOf(playerID)
	if seat < 0 {
		return
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.stopped || gs.engine.State() != engine.GameStatePlaying || gs.engine.CurrentPlayer() != seat {
		return
	}

	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()

	// 暂停计时器，计算剩余时间
	if gs.turnTimer != nil {
		gs.turnTimer.Stop()
		gs.turnTimer = nil
		gs.remainingTime = max(time.Until(gs.timerStartTime.Add(gs.remainingTime)), 0)
	}
	gs.timerSeq++
	gs.armOfflineTimer(seat)
}

// PlayerOnline 玩家重连，正轮到该玩家时恢复剩余的出牌计时
func (gs *GameSession) PlayerOnline(playerID string) {
	seat := gs.room.SeatOf(playerID)
	if seat < 0 {
		return
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()

	// 离线计时只属于当前出牌座位，其他座位重连不影响
	if gs.stopped || gs.engine.State() != engine.GameStatePlaying || gs.engine.CurrentPlayer() != seat {
		return
	}

	if gs.offlineTimer != nil {
		gs.offlineTimer.Stop()
		gs.offlineTimer = nil
	}

	gs.timerSeq++
	remaining := gs.remainingTime
	if remaining <= 0 {
		remaining = gs.turnTimeout
	}
	gs.armTurnTimer(remaining)
	if gs.turnTimeout > 0 {
		logrus.WithFields(logrus.Fields{"room": gs.room.Code, "seat": seat, "remaining": remaining}).Info("▶️ 玩家重连，恢复计时")
	}
}
