package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/protocol/convert"
)

func apply(t *testing.T, gs *GameState, msgType protocol.MessageType, payload any) {
	t.Helper()
	require.NoError(t, gs.Apply(codec.MustNewMessage(msgType, payload)))
}

func seatedPlayers() []protocol.PlayerInfo {
	return []protocol.PlayerInfo{
		{ID: "p2", Name: "Cid", Seat: 2, Team: 1, Online: true},
		{ID: "p0", Name: "Ana", Seat: 0, Team: 1, Online: true},
		{ID: "p3", Name: "Dee", Seat: 3, Team: 2, Online: true},
		{ID: "p1", Name: "Ben", Seat: 1, Team: 2, Online: true},
	}
}

func TestGameState_RoomLifecycle(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	assert.False(t, gs.InRoom())
	assert.Equal(t, -1, gs.Self.Seat)

	apply(t, gs, protocol.MsgConnected, protocol.ConnectedPayload{PlayerID: "p0", PlayerName: "Brave Ace"})
	assert.Equal(t, "p0", gs.Self.ID)

	self := protocol.PlayerInfo{ID: "p0", Name: "Ana", Seat: 0, Team: 1, Online: true}
	apply(t, gs, protocol.MsgRoomCreated, protocol.RoomCreatedPayload{RoomCode: "123456", Player: self})
	assert.True(t, gs.InRoom())
	assert.Equal(t, "123456", gs.RoomCode)
	assert.Equal(t, self, gs.Self)
	require.Len(t, gs.Players, 1)

	apply(t, gs, protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: protocol.PlayerInfo{ID: "p1", Name: "Ben", Seat: 1, Team: 2, Online: true},
	})
	require.Len(t, gs.Players, 2)
	assert.Equal(t, "Ben", gs.SeatName(1))
	assert.Equal(t, "Seat 3", gs.SeatName(2))
	assert.Contains(t, gs.Events[len(gs.Events)-1], "Ben")

	apply(t, gs, protocol.MsgPlayerOffline, protocol.PlayerOfflinePayload{PlayerID: "p1", PlayerName: "Ben", Timeout: 120})
	p, ok := gs.PlayerAt(1)
	require.True(t, ok)
	assert.False(t, p.Online)

	apply(t, gs, protocol.MsgPlayerOnline, protocol.PlayerOnlinePayload{PlayerID: "p1", PlayerName: "Ben"})
	p, _ = gs.PlayerAt(1)
	assert.True(t, p.Online)

	apply(t, gs, protocol.MsgTeamNamesUpdated, protocol.TeamNamesUpdatedPayload{
		TeamNames: [2]string{"Red", "Blue"},
		Players: []protocol.PlayerInfo{
			{ID: "p1", Name: "Benny", Seat: 1, Team: 2, Online: true},
			{ID: "p0", Name: "Ana", Seat: 0, Team: 1, Online: true},
		},
	})
	assert.Equal(t, "Red", gs.TeamName(1))
	assert.Equal(t, "Blue", gs.TeamName(2))
	assert.Equal(t, "Benny", gs.SeatName(1))
	assert.Equal(t, 0, gs.Players[0].Seat)

	apply(t, gs, protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{PlayerID: "p1", PlayerName: "Benny"})
	assert.Len(t, gs.Players, 1)

	gs.RoomList = []protocol.RoomListItem{{RoomCode: "654321"}}
	gs.Reset()
	assert.False(t, gs.InRoom())
	assert.Empty(t, gs.Players)
	assert.Len(t, gs.RoomList, 1)
	assert.NotNil(t, gs.CardCounter)
}

func TestGameState_RoomJoined(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	gs.CardCounter.Observe(card.MustParse("AS")...)

	apply(t, gs, protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomCode:  "123456",
		Player:    protocol.PlayerInfo{ID: "p3", Name: "Dee", Seat: 3, Team: 2},
		Players:   seatedPlayers(),
		TeamNames: [2]string{"Team 1", "Team 2"},
	})

	assert.Equal(t, 3, gs.Self.Seat)
	require.Len(t, gs.Players, 4)
	for i, p := range gs.Players {
		assert.Equal(t, i, p.Seat)
	}
	assert.Zero(t, gs.CardCounter.Total())
	assert.Equal(t, "", gs.TeamName(0))
}

func TestGameState_GameFlow(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	apply(t, gs, protocol.MsgConnected, protocol.ConnectedPayload{PlayerID: "p1", PlayerName: "Ben"})
	apply(t, gs, protocol.MsgGameStarted, protocol.GameStartedPayload{
		Players:   seatedPlayers(),
		TeamNames: [2]string{"Red", "Blue"},
		Dealer:    0,
	})
	assert.Equal(t, 1, gs.RoundNumber)
	assert.Equal(t, 1, gs.Self.Seat)
	assert.Contains(t, gs.Events[len(gs.Events)-1], "Ana")

	hand := card.MustParse("AS", "KS", "2H")
	dto := &protocol.GameStateDTO{
		Phase:       "playing",
		Seat:        1,
		Players:     seatedPlayers(),
		Hand:        convert.CardsToInfos(hand),
		LegalMoves:  []int{0, 1},
		CurrentSeat: 1,
		TrumpSuit:   -1,
		LeadSuit:    int(card.Spade),
		CurrentTrick: []protocol.TrickPlayInfo{
			{Seat: 0, Card: convert.CardToInfo(card.MustParse("QS")[0])},
		},
		LastTrick: []protocol.TrickPlayInfo{
			{Seat: 0, Card: convert.CardToInfo(card.MustParse("2C")[0])},
			{Seat: 1, Card: convert.CardToInfo(card.MustParse("3C")[0])},
		},
	}
	apply(t, gs, protocol.MsgGameState, dto)

	assert.Equal(t, "playing", gs.Phase())
	assert.Equal(t, hand, gs.Hand)
	assert.True(t, gs.IsMyTurn())
	assert.True(t, gs.IsLegal(1))
	assert.False(t, gs.IsLegal(2))
	assert.Equal(t, card.NoSuit, gs.TrumpSuit())
	assert.Equal(t, 0, gs.TrickLeader())
	assert.Equal(t, 3, gs.CardCounter.Total())

	dto.CurrentSeat = 2
	dto.TrumpSuit = int(card.Heart)
	apply(t, gs, protocol.MsgGameState, dto)
	assert.False(t, gs.IsMyTurn())
	assert.Equal(t, card.Heart, gs.TrumpSuit())
	assert.Equal(t, 3, gs.CardCounter.Total())

	apply(t, gs, protocol.MsgTrumpDiscovered, protocol.TrumpDiscoveredPayload{
		Suit: int(card.Heart), Symbol: "♥", Seat: 2, PlayerName: "Cid", Team: 1,
	})
	assert.Contains(t, gs.Events[len(gs.Events)-1], "Red")

	apply(t, gs, protocol.MsgTricksBanked, protocol.TricksBankedPayload{Seat: 2, PlayerName: "Cid", Count: 3})
	assert.Contains(t, gs.Events[len(gs.Events)-1], "3")

	result := protocol.RoundResultPayload{
		TeamTricks: [2]int{7, 6}, Winner: 1, WinnerName: "Red", TrumpMakingTeam: 1, NextDealer: 0,
	}
	apply(t, gs, protocol.MsgRoundResult, result)
	require.NotNil(t, gs.LastResult)
	assert.Equal(t, 1, gs.LastResult.Winner)

	apply(t, gs, protocol.MsgNewRoundStarted, protocol.NewRoundStartedPayload{Dealer: 0, RoundNumber: 2})
	assert.Equal(t, 2, gs.RoundNumber)
	assert.Nil(t, gs.LastResult)
	assert.Zero(t, gs.CardCounter.Total())
}

func TestGameState_Reconnected(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	apply(t, gs, protocol.MsgReconnected, protocol.ReconnectedPayload{
		PlayerID:   "p2",
		PlayerName: "Cid",
		RoomCode:   "123456",
		GameState: &protocol.GameStateDTO{
			Phase:      "round_end",
			Seat:       2,
			Players:    seatedPlayers(),
			LastResult: &protocol.RoundResultPayload{Winner: 2},
		},
	})

	assert.Equal(t, "123456", gs.RoomCode)
	assert.Equal(t, 2, gs.Self.Seat)
	assert.Equal(t, "Cid", gs.Self.Name)
	assert.Equal(t, "round_end", gs.Phase())
	require.NotNil(t, gs.LastResult)
	assert.Equal(t, 2, gs.LastResult.Winner)
}

func TestGameState_QueriesAndErrors(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	apply(t, gs, protocol.MsgRoomListResult, protocol.RoomListResultPayload{
		Rooms: []protocol.RoomListItem{{RoomCode: "111111", PlayerCount: 2, MaxPlayers: 4}},
	})
	apply(t, gs, protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{
		Entries: []protocol.LeaderboardEntry{{Rank: 1, TeamName: "Red", RoundWins: 3}},
	})
	require.NoError(t, gs.Apply(codec.NewErrorMessage(protocol.ErrCodeNotYourTurn)))
	require.NoError(t, gs.Apply(codec.MustNewMessage(protocol.MsgPong, nil)))

	assert.Len(t, gs.RoomList, 1)
	assert.Equal(t, "Red", gs.Leaderboard[0].TeamName)
	require.NotNil(t, gs.LastError)
	assert.Equal(t, protocol.ErrCodeNotYourTurn, gs.LastError.Code)
}

func TestGameState_History(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	apply(t, gs, protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{Daily: true})
	assert.True(t, gs.LeaderboardDaily)

	apply(t, gs, protocol.MsgRoomCreated, protocol.RoomCreatedPayload{RoomCode: "123456", Player: protocol.PlayerInfo{ID: "p0", Seat: 0, Team: 1}})

	// 其他房间的记录忽略
	apply(t, gs, protocol.MsgHistoryResult, protocol.HistoryResultPayload{RoomCode: "999999"})
	assert.Nil(t, gs.History)

	apply(t, gs, protocol.MsgHistoryResult, protocol.HistoryResultPayload{
		RoomCode: "123456",
		Rounds:   []protocol.HistoryEntry{{TeamTricks: [2]int{7, 6}, Winner: 1}},
	})
	require.NotNil(t, gs.History)
	assert.Len(t, gs.History.Rounds, 1)

	gs.Reset()
	assert.Nil(t, gs.History)
	assert.True(t, gs.LeaderboardDaily)
}

func TestGameState_InvalidPayload(t *testing.T) {
	t.Parallel()

	types := []protocol.MessageType{
		protocol.MsgRoomCreated,
		protocol.MsgGameState,
		protocol.MsgRoundResult,
		protocol.MsgError,
	}
	for _, msgType := range types {
		t.Run(string(msgType), func(t *testing.T) {
			t.Parallel()
			gs := NewGameState()
			err := gs.Apply(&protocol.Message{Type: msgType, Payload: []byte(`"oops"`)})
			assert.Error(t, err)
		})
	}
}

func TestGameState_EventsCapped(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	for i := range maxEvents + 3 {
		apply(t, gs, protocol.MsgTricksBanked, protocol.TricksBankedPayload{PlayerName: "Ana", Count: i + 2})
	}
	require.Len(t, gs.Events, maxEvents)
	assert.Contains(t, gs.Events[maxEvents-1], "12")
}
