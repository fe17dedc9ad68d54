package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/kaat-color/internal/apperrors"
	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/game/engine"
	"github.com/palemoky/kaat-color/internal/game/room"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/server/session"
	"github.com/palemoky/kaat-color/internal/testutil"
)

type testEnv struct {
	h           *Handler
	rm          *room.RoomManager
	sm          *session.SessionManager
	server      *testutil.MockServer
	leaderboard *testutil.MockLeaderboard
}

// newTestEnv 创建处理器，setup 可在默认期望之前注册更具体的期望
func newTestEnv(t *testing.T, setup func(srv *testutil.MockServer, lb *testutil.MockLeaderboard)) *testEnv {
	t.Helper()

	srv := new(testutil.MockServer)
	lb := new(testutil.MockLeaderboard)
	if setup != nil {
		setup(srv, lb)
	}
	srv.On("IsMaintenanceMode").Return(false).Maybe()
	srv.On("GetClientByID", mock.Anything).Return(nil).Maybe()
	srv.On("RegisterClient", mock.Anything, mock.Anything).Maybe()
	srv.On("UnregisterClient", mock.Anything).Maybe()
	lb.On("RecordRound", mock.Anything, mock.Anything).Return(nil).Maybe()

	rm := room.NewRoomManager(nil, room.Options{})
	sm := session.NewSessionManager(nil)
	t.Cleanup(rm.Close)
	t.Cleanup(sm.Close)

	h := NewHandler(HandlerDeps{
		Server:         srv,
		RoomManager:    rm,
		Leaderboard:    lb,
		SessionManager: sm,
		GameOptions: session.Options{
			EngineOptions: []engine.Option{
				engine.WithShuffler(card.NewSeededShuffler(11)),
				engine.WithDealerPicker(func() int { return 0 }),
			},
		},
	})
	return &testEnv{h: h, rm: rm, sm: sm, server: srv, leaderboard: lb}
}

// connect 模拟新连接
func (e *testEnv) connect(id, name string) *testutil.SimpleClient {
	c := testutil.NewSimpleClient(id, name)
	e.h.HandleConnect(c)
	return c
}

func (e *testEnv) send(c *testutil.SimpleClient, msgType protocol.MessageType, payload any) {
	e.h.Handle(c, codec.MustNewMessage(msgType, payload))
}

// fullRoom 四名玩家依次创建、加入同一房间
func (e *testEnv) fullRoom(t *testing.T) (string, [room.MaxPlayers]*testutil.SimpleClient) {
	t.Helper()

	var clients [room.MaxPlayers]*testutil.SimpleClient
	for i := range clients {
		clients[i] = e.connect(fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i))
	}
	e.send(clients[0], protocol.MsgCreateRoom, protocol.CreateRoomPayload{})
	created := lastPayload[protocol.RoomCreatedPayload](t, clients[0], protocol.MsgRoomCreated)

	for _, c := range clients[1:] {
		e.send(c, protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: created.RoomCode})
		require.Equal(t, created.RoomCode, c.GetRoom())
	}
	return created.RoomCode, clients
}

// lastPayload 解析客户端最近一条指定类型的消息
func lastPayload[T any](t *testing.T, c *testutil.SimpleClient, msgType protocol.MessageType) *T {
	t.Helper()
	msgs := c.MessagesOfType(msgType)
	require.NotEmpty(t, msgs, "没有收到 %s", msgType)
	payload, err := codec.ParsePayload[T](msgs[len(msgs)-1])
	require.NoError(t, err)
	return payload
}

// lastErrorCode 最近一条错误消息的错误码，没有错误时为 0
func lastErrorCode(t *testing.T, c *testutil.SimpleClient) int {
	t.Helper()
	if len(c.MessagesOfType(protocol.MsgError)) == 0 {
		return 0
	}
	return lastPayload[protocol.ErrorPayload](t, c, protocol.MsgError).Code
}

func TestHandle_UnknownType(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	c := testutil.NewSimpleClient("p1", "Player1")
	e.h.Handle(c, &protocol.Message{Type: "bid"})

	assert.Equal(t, protocol.ErrCodeInvalidMsg, lastErrorCode(t, c))
}

func TestHandle_Ping(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	c := testutil.NewSimpleClient("p1", "Player1")
	e.send(c, protocol.MsgPing, protocol.PingPayload{Timestamp: 12345})

	pong := lastPayload[protocol.PongPayload](t, c, protocol.MsgPong)
	assert.Equal(t, int64(12345), pong.ClientTimestamp)
	assert.Positive(t, pong.ServerTimestamp)
}

func TestHandleConnect(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	c := e.connect("p1", "Player1")

	connected := lastPayload[protocol.ConnectedPayload](t, c, protocol.MsgConnected)
	assert.Equal(t, "p1", connected.PlayerID)
	assert.Equal(t, "Player1", connected.PlayerName)
	assert.NotEmpty(t, connected.ReconnectToken)
	assert.Same(t, e.sm.GetSession("p1"), e.sm.GetSessionByToken(connected.ReconnectToken))
}

func TestHandle_InvalidPayload(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	c := e.connect("p1", "Player1")

	for _, msgType := range []protocol.MessageType{
		protocol.MsgJoinRoom,
		protocol.MsgPlayCard,
		protocol.MsgUpdateTeamNames,
		protocol.MsgReconnect,
	} {
		c.Reset()
		e.h.Handle(c, &protocol.Message{Type: msgType, Payload: []byte(`"oops"`)})
		assert.Equal(t, protocol.ErrCodeInvalidMsg, lastErrorCode(t, c), msgType)
	}
}

func TestSendError(t *testing.T) {
	t.Parallel()

	c := new(testutil.MockClient)
	// 只有未归类的错误才读取玩家名写日志
	c.On("GetName").Return("Ana").Once()
	c.On("SendMessage", mock.MatchedBy(func(m *protocol.Message) bool {
		return m.Type == protocol.MsgError
	})).Twice()

	sendError(c, errors.New("boom"))
	sendError(c, apperrors.ErrRoomFull)
	c.AssertExpectations(t)
}
