package handler

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/apperrors"
	"github.com/palemoky/kaat-color/internal/game/room"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/server/session"
	"github.com/palemoky/kaat-color/internal/server/storage"
	"github.com/palemoky/kaat-color/internal/types"
)

// Leaderboard 排行榜读写
type Leaderboard interface {
	session.RoundRecorder
	GetLeaderboard(ctx context.Context, limit int) ([]*storage.LeaderboardEntry, error)
	GetDailyLeaderboard(ctx context.Context, limit int) ([]*storage.LeaderboardEntry, error)
	GetTeamRank(ctx context.Context, teamName string) (int64, error)
	GetRoundHistory(ctx context.Context, roomCode string, limit int) ([]*storage.RoundRecord, error)
}

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server         types.ServerInterface
	RoomManager    *room.RoomManager
	Leaderboard    Leaderboard
	SessionManager *session.SessionManager
	GameOptions    session.Options
}

// Handler 消息处理器
type Handler struct {
	server         types.ServerInterface
	roomManager    *room.RoomManager
	leaderboard    Leaderboard
	sessionManager *session.SessionManager
	gameOptions    session.Options
	handlers       map[protocol.MessageType]handlerFunc
	games          map[string]*session.GameSession
	gamesMu        sync.RWMutex
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:         deps.Server,
		roomManager:    deps.RoomManager,
		leaderboard:    deps.Leaderboard,
		sessionManager: deps.SessionManager,
		gameOptions:    deps.GameOptions,
		games:          make(map[string]*session.GameSession),
	}
	h.initHandlers()
	return h
}

// GetGameSession 获取房间的游戏会话
func (h *Handler) GetGameSession(roomCode string) *session.GameSession {
	h.gamesMu.RLock()
	defer h.gamesMu.RUnlock()
	return h.games[roomCode]
}

// getOrCreateGameSession 获取房间的游戏会话，没有则创建
func (h *Handler) getOrCreateGameSession(r *room.Room) *session.GameSession {
	h.gamesMu.Lock()
	defer h.gamesMu.Unlock()

	gs, ok := h.games[r.Code]
	if !ok {
		gs = session.NewGameSession(r, h.leaderboard, h.gameOptions)
		h.games[r.Code] = gs
	}
	return gs
}

// stopGame 终止并删除房间的游戏会话
func (h *Handler) stopGame(roomCode string) {
	h.gamesMu.Lock()
	gs, ok := h.games[roomCode]
	delete(h.games, roomCode)
	h.gamesMu.Unlock()

	if ok {
		gs.Stop()
	}
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing:      h.handlePing,
		protocol.MsgReconnect: h.handleReconnect,

		// 房间操作
		protocol.MsgCreateRoom:      h.handleCreateRoom,
		protocol.MsgJoinRoom:        h.handleJoinRoom,
		protocol.MsgLeaveRoom:       func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveRoom(c) },
		protocol.MsgUpdateTeamNames: h.handleUpdateTeamNames,

		// 游戏操作
		protocol.MsgStartGame:     func(c types.ClientInterface, _ *protocol.Message) { h.handleStartGame(c) },
		protocol.MsgStartNewRound: func(c types.ClientInterface, _ *protocol.Message) { h.handleStartNewRound(c) },
		protocol.MsgPlayCard:      h.handlePlayCard,
		protocol.MsgGetState:      func(c types.ClientInterface, _ *protocol.Message) { h.handleGetState(c) },

		// 信息查询
		protocol.MsgGetRoomList:    func(c types.ClientInterface, _ *protocol.Message) { h.handleGetRoomList(c) },
		protocol.MsgGetLeaderboard: h.handleGetLeaderboard,
		protocol.MsgGetHistory:     h.handleGetHistory,
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	logrus.WithFields(logrus.Fields{
		"type":    msg.Type,
		"player":  client.GetName(),
		"id":      client.GetID(),
		"payload": len(msg.Payload),
	}).Warn("⚠️ 未知消息类型")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// sendError 把错误转换为 error 消息发给客户端
func sendError(client types.ClientInterface, err error) {
	if apperrors.CodeOf(err) == protocol.ErrCodeUnknown {
		logrus.WithError(err).WithField("player", client.GetName()).Warn("未归类的错误")
	}
	client.SendMessage(codec.ErrorMessageFrom(err))
}
