package client

import (
	"fmt"
	"slices"

	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/game/rule"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/protocol/convert"
)

// maxEvents 保留的最近事件条数
const maxEvents = 8

// GameState 客户端维护的房间与牌局状态，由服务器消息驱动
type GameState struct {
	RoomCode    string
	Self        protocol.PlayerInfo
	Players     []protocol.PlayerInfo // 按座位排序
	TeamNames   [2]string
	RoundNumber int

	// 最近一次 game_state 快照
	Snapshot   *protocol.GameStateDTO
	Hand       []card.Card
	LastResult *protocol.RoundResultPayload

	RoomList         []protocol.RoomListItem
	Leaderboard      []protocol.LeaderboardEntry
	LeaderboardDaily bool
	History          *protocol.HistoryResultPayload // 当前房间的对局记录
	LastError        *protocol.ErrorPayload

	// 最近的牌局事件，新的在后
	Events []string

	CardCounter *CardCounter
}

// NewGameState 创建客户端状态
func NewGameState() *GameState {
	return &GameState{
		Self:        protocol.PlayerInfo{Seat: -1},
		CardCounter: NewCardCounter(),
	}
}

// Reset 回到大厅时清空房间和牌局
func (gs *GameState) Reset() {
	*gs = GameState{
		Self:        protocol.PlayerInfo{Seat: -1},
		RoomList:         gs.RoomList,
		Leaderboard:      gs.Leaderboard,
		LeaderboardDaily: gs.LeaderboardDaily,
		CardCounter:      gs.CardCounter,
	}
	gs.CardCounter.Reset()
}

// InRoom 是否在房间中
func (gs *GameState) InRoom() bool {
	return gs.RoomCode != ""
}

// Phase 当前牌局阶段，没有快照时为空
func (gs *GameState) Phase() string {
	if gs.Snapshot == nil {
		return ""
	}
	return gs.Snapshot.Phase
}

// IsMyTurn 是否轮到自己出牌
func (gs *GameState) IsMyTurn() bool {
	s := gs.Snapshot
	return s != nil && s.Phase == "playing" && s.Seat >= 0 && s.CurrentSeat == s.Seat
}

// IsLegal 手牌下标 idx 是否可出
func (gs *GameState) IsLegal(idx int) bool {
	return gs.Snapshot != nil && slices.Contains(gs.Snapshot.LegalMoves, idx)
}

// TrumpSuit 已确定的主牌花色
func (gs *GameState) TrumpSuit() card.Suit {
	if gs.Snapshot == nil {
		return card.NoSuit
	}
	return card.Suit(gs.Snapshot.TrumpSuit)
}

// TrickLeader 当前墩暂时领先的座位，空墩返回 -1
func (gs *GameState) TrickLeader() int {
	if gs.Snapshot == nil {
		return -1
	}
	return rule.TrickWinner(convert.InfosToPlays(gs.Snapshot.CurrentTrick), gs.TrumpSuit())
}

// PlayerAt 返回座位上的玩家
func (gs *GameState) PlayerAt(seat int) (protocol.PlayerInfo, bool) {
	for _, p := range gs.Players {
		if p.Seat == seat {
			return p, true
		}
	}
	return protocol.PlayerInfo{}, false
}

// SeatName 座位上玩家的名字，空位返回 "Seat N"
func (gs *GameState) SeatName(seat int) string {
	if p, ok := gs.PlayerAt(seat); ok && p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Seat %d", seat+1)
}

// TeamName 队伍 1 或 2 的名字
func (gs *GameState) TeamName(team int) string {
	if team < 1 || team > 2 {
		return ""
	}
	if name := gs.TeamNames[team-1]; name != "" {
		return name
	}
	return fmt.Sprintf("Team %d", team)
}

// Apply 根据服务器消息更新状态，未知类型忽略
func (gs *GameState) Apply(msg *protocol.Message) error {
	switch msg.Type {
	case protocol.MsgConnected:
		p, err := codec.ParsePayload[protocol.ConnectedPayload](msg)
		if err != nil {
			return err
		}
		gs.Self.ID, gs.Self.Name = p.PlayerID, p.PlayerName

	case protocol.MsgReconnected:
		p, err := codec.ParsePayload[protocol.ReconnectedPayload](msg)
		if err != nil {
			return err
		}
		gs.Self.ID, gs.Self.Name = p.PlayerID, p.PlayerName
		gs.RoomCode = p.RoomCode
		if p.GameState != nil {
			gs.applySnapshot(p.GameState)
		}
		gs.addEvent("🔄 已重新连接")

	case protocol.MsgRoomCreated:
		p, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
		if err != nil {
			return err
		}
		gs.enterRoom(p.RoomCode, p.Player, []protocol.PlayerInfo{p.Player})

	case protocol.MsgRoomJoined:
		p, err := codec.ParsePayload[protocol.RoomJoinedPayload](msg)
		if err != nil {
			return err
		}
		gs.enterRoom(p.RoomCode, p.Player, p.Players)
		gs.TeamNames = p.TeamNames

	case protocol.MsgPlayerJoined:
		p, err := codec.ParsePayload[protocol.PlayerJoinedPayload](msg)
		if err != nil {
			return err
		}
		gs.upsertPlayer(p.Player)
		gs.addEvent(fmt.Sprintf("👤 %s 加入了房间", p.Player.Name))

	case protocol.MsgPlayerLeft:
		p, err := codec.ParsePayload[protocol.PlayerLeftPayload](msg)
		if err != nil {
			return err
		}
		gs.Players = slices.DeleteFunc(gs.Players, func(info protocol.PlayerInfo) bool { return info.ID == p.PlayerID })
		gs.addEvent(fmt.Sprintf("👋 %s 离开了房间", p.PlayerName))

	case protocol.MsgPlayerOffline:
		p, err := codec.ParsePayload[protocol.PlayerOfflinePayload](msg)
		if err != nil {
			return err
		}
		gs.setOnline(p.PlayerID, false)
		gs.addEvent(fmt.Sprintf("📴 %s 掉线了", p.PlayerName))

	case protocol.MsgPlayerOnline:
		p, err := codec.ParsePayload[protocol.PlayerOnlinePayload](msg)
		if err != nil {
			return err
		}
		gs.setOnline(p.PlayerID, true)
		gs.addEvent(fmt.Sprintf("📶 %s 回来了", p.PlayerName))

	case protocol.MsgTeamNamesUpdated:
		p, err := codec.ParsePayload[protocol.TeamNamesUpdatedPayload](msg)
		if err != nil {
			return err
		}
		gs.TeamNames = p.TeamNames
		gs.setPlayers(p.Players)

	case protocol.MsgGameStarted:
		p, err := codec.ParsePayload[protocol.GameStartedPayload](msg)
		if err != nil {
			return err
		}
		gs.setPlayers(p.Players)
		gs.TeamNames = p.TeamNames
		gs.RoundNumber = 1
		gs.startRound()
		gs.addEvent(fmt.Sprintf("🎴 新游戏开始，%s 发牌", gs.SeatName(p.Dealer)))

	case protocol.MsgNewRoundStarted:
		p, err := codec.ParsePayload[protocol.NewRoundStartedPayload](msg)
		if err != nil {
			return err
		}
		gs.RoundNumber = p.RoundNumber
		gs.startRound()
		gs.addEvent(fmt.Sprintf("🎴 第 %d 局，%s 发牌", p.RoundNumber, gs.SeatName(p.Dealer)))

	case protocol.MsgGameState:
		p, err := codec.ParsePayload[protocol.GameStateDTO](msg)
		if err != nil {
			return err
		}
		gs.applySnapshot(p)

	case protocol.MsgTrumpDiscovered:
		p, err := codec.ParsePayload[protocol.TrumpDiscoveredPayload](msg)
		if err != nil {
			return err
		}
		gs.addEvent(fmt.Sprintf("👑 %s 垫出 %s，主牌确定，%s 为定主方", p.PlayerName, p.Symbol, gs.TeamName(p.Team)))

	case protocol.MsgTricksBanked:
		p, err := codec.ParsePayload[protocol.TricksBankedPayload](msg)
		if err != nil {
			return err
		}
		gs.addEvent(fmt.Sprintf("💰 %s 收下 %d 墩", p.PlayerName, p.Count))

	case protocol.MsgRoundResult:
		p, err := codec.ParsePayload[protocol.RoundResultPayload](msg)
		if err != nil {
			return err
		}
		gs.LastResult = p
		gs.addEvent(fmt.Sprintf("🏆 %s 赢得本局 (%d:%d)", p.WinnerName, p.TeamTricks[0], p.TeamTricks[1]))

	case protocol.MsgRoomListResult:
		p, err := codec.ParsePayload[protocol.RoomListResultPayload](msg)
		if err != nil {
			return err
		}
		gs.RoomList = p.Rooms

	case protocol.MsgLeaderboardResult:
		p, err := codec.ParsePayload[protocol.LeaderboardResultPayload](msg)
		if err != nil {
			return err
		}
		gs.Leaderboard = p.Entries
		gs.LeaderboardDaily = p.Daily

	case protocol.MsgHistoryResult:
		p, err := codec.ParsePayload[protocol.HistoryResultPayload](msg)
		if err != nil {
			return err
		}
		if p.RoomCode == gs.RoomCode {
			gs.History = p
		}

	case protocol.MsgError:
		p, err := codec.ParsePayload[protocol.ErrorPayload](msg)
		if err != nil {
			return err
		}
		gs.LastError = p
	}
	return nil
}

func (gs *GameState) enterRoom(code string, self protocol.PlayerInfo, players []protocol.PlayerInfo) {
	gs.RoomCode = code
	gs.Self = self
	gs.Snapshot = nil
	gs.Hand = nil
	gs.LastResult = nil
	gs.History = nil
	gs.Events = nil
	gs.setPlayers(players)
	gs.CardCounter.Reset()
}

func (gs *GameState) startRound() {
	gs.LastResult = nil
	gs.CardCounter.Reset()
}

// applySnapshot 采用服务器快照，并把桌面上出现的牌记入记牌器
func (gs *GameState) applySnapshot(s *protocol.GameStateDTO) {
	gs.Snapshot = s
	gs.Hand = convert.InfosToCards(s.Hand)
	if len(s.Players) > 0 {
		gs.setPlayers(s.Players)
	}
	if s.Seat >= 0 {
		gs.Self.Seat = s.Seat
	}
	if s.LastResult != nil {
		gs.LastResult = s.LastResult
	}
	for _, play := range s.CurrentTrick {
		gs.CardCounter.Observe(convert.InfoToCard(play.Card))
	}
	for _, play := range s.LastTrick {
		gs.CardCounter.Observe(convert.InfoToCard(play.Card))
	}
}

func (gs *GameState) setPlayers(players []protocol.PlayerInfo) {
	gs.Players = slices.Clone(players)
	slices.SortFunc(gs.Players, func(a, b protocol.PlayerInfo) int { return a.Seat - b.Seat })
	for _, p := range gs.Players {
		if p.ID != "" && p.ID == gs.Self.ID {
			gs.Self = p
		}
	}
}

func (gs *GameState) upsertPlayer(p protocol.PlayerInfo) {
	players := slices.DeleteFunc(gs.Players, func(info protocol.PlayerInfo) bool { return info.ID == p.ID || info.Seat == p.Seat })
	gs.setPlayers(append(players, p))
}

func (gs *GameState) setOnline(playerID string, online bool) {
	for i := range gs.Players {
		if gs.Players[i].ID == playerID {
			gs.Players[i].Online = online
		}
	}
}

func (gs *GameState) addEvent(event string) {
	gs.Events = append(gs.Events, event)
	if len(gs.Events) > maxEvents {
		gs.Events = slices.Delete(gs.Events, 0, len(gs.Events)-maxEvents)
	}
}
