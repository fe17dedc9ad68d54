package session

import (
	"sync"
	"time"

	"github.com/palemoky/kaat-color/internal/apperrors"
	"github.com/palemoky/kaat-color/internal/game/engine"
	"github.com/palemoky/kaat-color/internal/game/room"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/protocol/convert"
)

// GameSession 一个房间内的牌局，串行化对引擎的所有调用
type GameSession struct {
	room     *room.Room
	engine   *engine.Engine
	recorder RoundRecorder

	turnTimeout    time.Duration
	offlineTimeout time.Duration
	roundNumber    int
	stopped        bool

	// 超时控制
	turnTimer      *time.Timer
	offlineTimer   *time.Timer
	timerSeq       uint64        // 每次重新计时加一，旧计时器触发时据此作废
	remainingTime  time.Duration // 暂停时剩余的时间
	timerStartTime time.Time
	timerMu        sync.Mutex

	mu sync.Mutex
}

// NewGameSession 创建游戏会话，recorder 可为 nil
func NewGameSession(r *room.Room, recorder RoundRecorder, opts Options) *GameSession {
	return &GameSession{
		room:           r,
		engine:         engine.New(opts.EngineOptions...),
		recorder:       recorder,
		turnTimeout:    opts.TurnTimeout,
		offlineTimeout: opts.OfflineTimeout,
	}
}

// RoundNumber 本场游戏已开始的局数
func (gs *GameSession) RoundNumber() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.roundNumber
}

// HandlePlay 玩家打出手牌中第 cardIndex 张
func (gs *GameSession) HandlePlay(playerID string, cardIndex int) error {
	seat := gs.room.SeatOf(playerID)
	if seat < 0 {
		return apperrors.ErrNotInRoom
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.stopped {
		return apperrors.ErrGameNotStart
	}

	before := gs.engine.Snapshot()
	snap, err := gs.engine.AttemptPlay(seat, cardIndex)
	if err != nil {
		return err
	}
	gs.afterPlay(before, snap, seat)
	return nil
}

// UpdateNames 修改队名和玩家名并同步到引擎，空串保持不变
func (gs *GameSession) UpdateNames(teamNames [2]string, playerNames [room.MaxPlayers]string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.room.Rename(teamNames, playerNames)
	gs.engine.SetNames(gs.room.SeatNames(), gs.room.GetTeamNames())
	gs.broadcastState(gs.engine.Snapshot())
}

// State 返回 seat 视角的牌局快照
func (gs *GameSession) State(seat int) *protocol.GameStateDTO {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.stateFor(gs.engine.Snapshot(), seat)
}

// afterPlay 广播一次出牌带来的事件和新状态，调用方持有 gs.mu
func (gs *GameSession) afterPlay(before, snap engine.Snapshot, seat int) {
	gs.stopTimer()

	if before.Round.TrumpSuit != snap.Round.TrumpSuit {
		gs.room.Broadcast(gs.trumpMessage(snap, seat))
	}
	if out := gs.engine.LastTrick(); out != nil && out.Banked > 0 {
		gs.room.Broadcast(codec.MustNewMessage(protocol.MsgTricksBanked, protocol.TricksBankedPayload{
			Seat:       out.Winner,
			PlayerName: snap.Players[out.Winner].Name,
			Count:      out.Banked,
			EndOfRound: snap.State == engine.GameStateRoundEnd,
		}))
	}

	gs.broadcastState(snap)

	if snap.State == engine.GameStateRoundEnd {
		gs.finishRound(snap)
		return
	}
	gs.startTurnTimer()
}

func (gs *GameSession) trumpMessage(snap engine.Snapshot, seat int) *protocol.Message {
	return codec.MustNewMessage(protocol.MsgTrumpDiscovered, protocol.TrumpDiscoveredPayload{
		Suit:       int(snap.Round.TrumpSuit),
		Symbol:     snap.Round.TrumpSuit.String(),
		Seat:       seat,
		PlayerName: snap.Players[seat].Name,
		Team:       int(snap.Round.TrumpMakingTeam),
	})
}

// broadcastState 给每个在线座位发送只含自己手牌的快照
func (gs *GameSession) broadcastState(snap engine.Snapshot) {
	for seat, client := range gs.room.SeatClients() {
		if client == nil {
			continue
		}
		client.SendMessage(codec.MustNewMessage(protocol.MsgGameState, gs.stateFor(snap, seat)))
	}
}

// stateFor 转换快照并补充房间里的玩家 ID 和在线状态
func (gs *GameSession) stateFor(snap engine.Snapshot, seat int) *protocol.GameStateDTO {
	dto := convert.SnapshotToDTO(snap, seat)
	ids := gs.room.SeatIDs()
	for i := range dto.Players {
		dto.Players[i].ID = ids[i]
		dto.Players[i].Online = ids[i] != "" && gs.room.IsOnline(ids[i])
	}
	return dto
}
