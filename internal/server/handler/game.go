package handler

import (
	"github.com/palemoky/kaat-color/internal/apperrors"
	"github.com/palemoky/kaat-color/internal/game/room"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/server/session"
	"github.com/palemoky/kaat-color/internal/types"
)

// currentRoom 获取客户端所在房间，不在房间时发送错误
func (h *Handler) currentRoom(client types.ClientInterface) *room.Room {
	r := h.roomManager.GetRoom(client.GetRoom())
	if r == nil {
		sendError(client, apperrors.ErrNotInRoom)
	}
	return r
}

// currentGame 获取客户端所在房间的牌局，没有牌局时发送错误
func (h *Handler) currentGame(client types.ClientInterface) (*room.Room, *session.GameSession) {
	r := h.currentRoom(client)
	if r == nil {
		return nil, nil
	}
	gs := h.GetGameSession(r.Code)
	if gs == nil {
		sendError(client, apperrors.ErrGameNotStart)
		return nil, nil
	}
	return r, gs
}

// handleStartGame 开始新游戏，比分清零，牌局中也可重新开始
func (h *Handler) handleStartGame(client types.ClientInterface) {
	r := h.currentRoom(client)
	if r == nil {
		return
	}
	if !r.IsFull() {
		sendError(client, apperrors.ErrNeedFourPlayers)
		return
	}

	if err := h.getOrCreateGameSession(r).Start(); err != nil {
		sendError(client, err)
		return
	}
	h.roomManager.SaveRoom(r)
}

// handleStartNewRound 开始新一局，比分保留
func (h *Handler) handleStartNewRound(client types.ClientInterface) {
	_, gs := h.currentGame(client)
	if gs == nil {
		return
	}
	if err := gs.NewRound(); err != nil {
		sendError(client, err)
	}
}

// handlePlayCard 处理出牌
func (h *Handler) handlePlayCard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PlayCardPayload](msg)
	if err != nil {
		sendError(client, apperrors.ErrInvalidMsg)
		return
	}
	_, gs := h.currentGame(client)
	if gs == nil {
		return
	}
	if err := gs.HandlePlay(client.GetID(), payload.CardIndex); err != nil {
		sendError(client, err)
	}
}

// handleGetState 发送当前牌局快照
func (h *Handler) handleGetState(client types.ClientInterface) {
	r, gs := h.currentGame(client)
	if gs == nil {
		return
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgGameState, gs.State(r.SeatOf(client.GetID()))))
}
