package handler

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/apperrors"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// HandleConnect 为新连接创建会话并下发重连令牌
func (h *Handler) HandleConnect(client types.ClientInterface) {
	sess := h.sessionManager.CreateSession(client.GetID(), client.GetName())

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:       client.GetID(),
		PlayerName:     client.GetName(),
		ReconnectToken: sess.ReconnectToken,
	}))
}

// handleReconnect 处理断线重连：新连接接管原玩家 ID
func (h *Handler) handleReconnect(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ReconnectPayload](msg)
	if err != nil {
		sendError(client, apperrors.ErrInvalidMsg)
		return
	}

	if !h.sessionManager.CanReconnect(payload.Token, payload.PlayerID) {
		sendError(client, apperrors.ErrReconnectFailed)
		return
	}
	sess := h.sessionManager.GetSession(payload.PlayerID)
	if sess == nil {
		sendError(client, apperrors.ErrReconnectFailed)
		return
	}
	name, roomCode, _ := sess.Snapshot()

	// 丢弃新连接自己的临时会话
	if tempID := client.GetID(); tempID != payload.PlayerID {
		h.server.UnregisterClient(tempID)
		h.sessionManager.DeleteSession(tempID)
	}

	// 旧连接可能还没断开
	if old := h.server.GetClientByID(payload.PlayerID); old != nil && old != client {
		old.Close()
	}

	client.SetID(payload.PlayerID)
	client.SetName(name)
	h.server.RegisterClient(payload.PlayerID, client)
	h.sessionManager.SetOnline(payload.PlayerID)

	resp := protocol.ReconnectedPayload{
		PlayerID:   payload.PlayerID,
		PlayerName: name,
	}
	if roomCode != "" {
		h.restoreRoom(client, roomCode, &resp)
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgReconnected, resp))

	logrus.WithFields(logrus.Fields{"player": name, "id": payload.PlayerID, "room": resp.RoomCode}).Info("🔄 玩家重连成功")
}

// restoreRoom 把重连的玩家放回原座位，牌局进行中时附带当前快照
func (h *Handler) restoreRoom(client types.ClientInterface, roomCode string, resp *protocol.ReconnectedPayload) {
	r, err := h.roomManager.ReconnectPlayer(roomCode, client)
	if err != nil {
		logrus.WithError(err).WithField("room", roomCode).Info("房间已不存在，重连回到大厅")
		h.sessionManager.SetRoom(client.GetID(), "")
		return
	}
	resp.RoomCode = roomCode

	if gs := h.GetGameSession(roomCode); gs != nil {
		gs.PlayerOnline(client.GetID())
		resp.GameState = gs.State(r.SeatOf(client.GetID()))
	}
}

// HandleDisconnect 连接断开：牌局中的玩家保留座位等待重连，否则离开房间
func (h *Handler) HandleDisconnect(client types.ClientInterface) {
	// 已被新连接接管
	if current := h.server.GetClientByID(client.GetID()); current != nil && current != client {
		return
	}

	h.sessionManager.SetOffline(client.GetID())

	roomCode := client.GetRoom()
	if roomCode == "" {
		return
	}
	r := h.roomManager.GetRoom(roomCode)
	if r == nil {
		return
	}

	if !r.GetState().InGame() {
		h.leaveRoom(client)
		return
	}

	if removed := h.roomManager.NotifyPlayerOffline(client); removed {
		h.stopGame(roomCode)
		return
	}
	if gs := h.GetGameSession(roomCode); gs != nil {
		gs.PlayerOffline(client.GetID())
	}
}
