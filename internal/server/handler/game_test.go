package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/kaat-color/internal/game/engine"
	"github.com/palemoky/kaat-color/internal/game/room"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/server/storage"
	"github.com/palemoky/kaat-color/internal/testutil"
)

// playOne 当前玩家通过消息打出第一张可出的牌
func (e *testEnv) playOne(t *testing.T, clients [room.MaxPlayers]*testutil.SimpleClient) *protocol.GameStateDTO {
	t.Helper()
	seat := lastPayload[protocol.GameStateDTO](t, clients[0], protocol.MsgGameState).CurrentSeat
	view := lastPayload[protocol.GameStateDTO](t, clients[seat], protocol.MsgGameState)
	require.NotEmpty(t, view.LegalMoves)

	e.send(clients[seat], protocol.MsgPlayCard, protocol.PlayCardPayload{CardIndex: view.LegalMoves[0]})
	require.Zero(t, lastErrorCode(t, clients[seat]))
	return lastPayload[protocol.GameStateDTO](t, clients[0], protocol.MsgGameState)
}

func TestHandleStartGame_Errors(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	c := e.connect("p1", "Ana")

	e.send(c, protocol.MsgStartGame, nil)
	assert.Equal(t, protocol.ErrCodeNotInRoom, lastErrorCode(t, c))

	e.send(c, protocol.MsgCreateRoom, protocol.CreateRoomPayload{})
	e.send(c, protocol.MsgStartGame, nil)
	assert.Equal(t, protocol.ErrCodeNeedFourPlayers, lastErrorCode(t, c))
	assert.Nil(t, e.h.GetGameSession(c.GetRoom()))
}

func TestHandleStartGame(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	code, clients := e.fullRoom(t)
	e.send(clients[2], protocol.MsgStartGame, nil)

	require.NotNil(t, e.h.GetGameSession(code))
	assert.Equal(t, room.RoomStatePlaying, e.rm.GetRoom(code).GetState())

	for seat, c := range clients {
		started := lastPayload[protocol.GameStartedPayload](t, c, protocol.MsgGameStarted)
		assert.Equal(t, 0, started.Dealer)
		assert.Len(t, started.Players, room.MaxPlayers)

		state := lastPayload[protocol.GameStateDTO](t, c, protocol.MsgGameState)
		assert.Equal(t, seat, state.Seat)
		assert.Len(t, state.Hand, engine.TricksPerRound)
		assert.Equal(t, 1, state.CurrentSeat, "庄家下家先出")
		assert.Equal(t, -1, state.TrumpSuit)
	}
}

func TestHandlePlayCard_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		seat     int
		index    func(state *protocol.GameStateDTO) int
		wantCode int
	}{
		{
			name:     "out of turn",
			seat:     2,
			index:    func(*protocol.GameStateDTO) int { return 0 },
			wantCode: protocol.ErrCodeNotYourTurn,
		},
		{
			name:     "index out of range",
			seat:     1,
			index:    func(s *protocol.GameStateDTO) int { return len(s.Hand) },
			wantCode: protocol.ErrCodeInvalidCardIndex,
		},
		{
			name:     "negative index",
			seat:     1,
			index:    func(*protocol.GameStateDTO) int { return -1 },
			wantCode: protocol.ErrCodeInvalidCardIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEnv(t, nil)
			_, clients := e.fullRoom(t)
			e.send(clients[0], protocol.MsgStartGame, nil)

			c := clients[tt.seat]
			before := lastPayload[protocol.GameStateDTO](t, c, protocol.MsgGameState)
			e.send(c, protocol.MsgPlayCard, protocol.PlayCardPayload{CardIndex: tt.index(before)})

			assert.Equal(t, tt.wantCode, lastErrorCode(t, c))
			after := lastPayload[protocol.GameStateDTO](t, c, protocol.MsgGameState)
			assert.Equal(t, before, after, "拒绝出牌不广播新状态")
		})
	}
}

func TestHandlePlayCard_NoGame(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	_, clients := e.fullRoom(t)
	e.send(clients[1], protocol.MsgPlayCard, protocol.PlayCardPayload{CardIndex: 0})

	assert.Equal(t, protocol.ErrCodeGameNotStart, lastErrorCode(t, clients[1]))
}

func TestHandleGameFlow_FullRound(t *testing.T) {
	t.Parallel()

	var recorded *storage.RoundRecord
	e := newTestEnv(t, func(_ *testutil.MockServer, lb *testutil.MockLeaderboard) {
		lb.On("RecordRound", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { recorded = args.Get(1).(*storage.RoundRecord) }).
			Return(nil).Once()
	})
	code, clients := e.fullRoom(t)
	e.send(clients[0], protocol.MsgStartGame, nil)

	state := lastPayload[protocol.GameStateDTO](t, clients[0], protocol.MsgGameState)
	for plays := 0; state.Phase != "round_end"; plays++ {
		require.Less(t, plays, room.MaxPlayers*engine.TricksPerRound)
		state = e.playOne(t, clients)
	}

	result := lastPayload[protocol.RoundResultPayload](t, clients[3], protocol.MsgRoundResult)
	assert.Equal(t, engine.TricksPerRound, result.TeamTricks[0]+result.TeamTricks[1])
	assert.Contains(t, []int{1, 2}, result.Winner)
	assert.Equal(t, room.RoomStateRoundEnd, e.rm.GetRoom(code).GetState())

	banked := 0
	for _, msg := range clients[1].MessagesOfType(protocol.MsgTricksBanked) {
		p, err := codec.ParsePayload[protocol.TricksBankedPayload](msg)
		require.NoError(t, err)
		banked += p.Count
	}
	assert.Equal(t, engine.TricksPerRound, banked)

	require.NotNil(t, recorded)
	assert.Equal(t, code, recorded.RoomCode)
	assert.Equal(t, result.Winner, recorded.Winner)

	// 本局结束后不能再出牌
	e.send(clients[0], protocol.MsgPlayCard, protocol.PlayCardPayload{CardIndex: 0})
	assert.Equal(t, protocol.ErrCodeRoundNotActive, lastErrorCode(t, clients[0]))

	e.send(clients[0], protocol.MsgStartNewRound, nil)
	next := lastPayload[protocol.NewRoundStartedPayload](t, clients[2], protocol.MsgNewRoundStarted)
	assert.Equal(t, 2, next.RoundNumber)
	assert.Equal(t, result.NextDealer, next.Dealer)

	state = lastPayload[protocol.GameStateDTO](t, clients[2], protocol.MsgGameState)
	assert.Equal(t, "playing", state.Phase)
	assert.Len(t, state.Hand, engine.TricksPerRound)
}

func TestHandleStartNewRound_NoGame(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	_, clients := e.fullRoom(t)
	e.send(clients[0], protocol.MsgStartNewRound, nil)

	assert.Equal(t, protocol.ErrCodeGameNotStart, lastErrorCode(t, clients[0]))
}

func TestHandleGetState(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	_, clients := e.fullRoom(t)

	e.send(clients[1], protocol.MsgGetState, nil)
	assert.Equal(t, protocol.ErrCodeGameNotStart, lastErrorCode(t, clients[1]))

	e.send(clients[0], protocol.MsgStartGame, nil)
	clients[1].Reset()
	e.send(clients[1], protocol.MsgGetState, nil)

	require.Len(t, clients[1].SentMessages(), 1)
	state := lastPayload[protocol.GameStateDTO](t, clients[1], protocol.MsgGameState)
	assert.Equal(t, 1, state.Seat)
	assert.NotEmpty(t, state.LegalMoves)
	for i, p := range state.Players {
		assert.Equal(t, clients[i].GetID(), p.ID)
		assert.True(t, p.Online)
	}
}
