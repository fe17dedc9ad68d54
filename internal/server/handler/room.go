package handler

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/apperrors"
	"github.com/palemoky/kaat-color/internal/game/room"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/types"
)

// maxNameLength 玩家名和队名的最大字符数
const maxNameLength = 20

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		sendError(client, apperrors.ErrMaintenance)
		return
	}
	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		sendError(client, apperrors.ErrInvalidMsg)
		return
	}

	// 如果已在房间中，先离开
	h.leaveRoom(client)
	h.rename(client, payload.PlayerName)

	r, err := h.roomManager.CreateRoom(client)
	if err != nil {
		sendError(client, err)
		return
	}
	h.sessionManager.SetRoom(client.GetID(), r.Code)

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode: r.Code,
		Player:   r.GetPlayerInfo(client.GetID()),
	}))
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		sendError(client, apperrors.ErrMaintenance)
		return
	}
	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil || payload.RoomCode == "" {
		sendError(client, apperrors.ErrInvalidMsg)
		return
	}

	if current := client.GetRoom(); current != "" && current != payload.RoomCode {
		h.leaveRoom(client)
	}
	h.rename(client, payload.PlayerName)

	r, err := h.roomManager.JoinRoom(client, payload.RoomCode)
	if err != nil {
		sendError(client, err)
		return
	}
	h.sessionManager.SetRoom(client.GetID(), r.Code)

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomCode:  r.Code,
		Player:    r.GetPlayerInfo(client.GetID()),
		Players:   r.GetAllPlayersInfo(),
		TeamNames: r.GetTeamNames(),
	}))
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	if client.GetRoom() == "" {
		sendError(client, apperrors.ErrNotInRoom)
		return
	}
	h.leaveRoom(client)
}

// leaveRoom 离开当前房间，牌局进行中时终止牌局，房间回到等待状态
func (h *Handler) leaveRoom(client types.ClientInterface) {
	roomCode := client.GetRoom()
	if roomCode == "" {
		return
	}

	r := h.roomManager.LeaveRoom(client)
	h.sessionManager.SetRoom(client.GetID(), "")
	if r == nil {
		return
	}

	if h.GetGameSession(roomCode) != nil {
		h.stopGame(roomCode)
		if r.GetState() != room.RoomStateEnded {
			r.SetState(room.RoomStateWaiting)
			logrus.WithFields(logrus.Fields{"room": roomCode, "player": client.GetName()}).Info("🛑 玩家离开，牌局终止")
		}
	}
}

// handleUpdateTeamNames 修改队名和各座位玩家名
func (h *Handler) handleUpdateTeamNames(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.UpdateTeamNamesPayload](msg)
	if err != nil {
		sendError(client, apperrors.ErrInvalidMsg)
		return
	}
	r := h.roomManager.GetRoom(client.GetRoom())
	if r == nil {
		sendError(client, apperrors.ErrNotInRoom)
		return
	}

	var teamNames [2]string
	for i, name := range payload.TeamNames {
		teamNames[i] = cleanName(name)
	}
	var playerNames [room.MaxPlayers]string
	for i, name := range payload.PlayerNames {
		playerNames[i] = cleanName(name)
	}

	if gs := h.GetGameSession(r.Code); gs != nil {
		gs.UpdateNames(teamNames, playerNames)
	} else {
		r.Rename(teamNames, playerNames)
	}

	for seat, id := range r.SeatIDs() {
		if id != "" && playerNames[seat] != "" {
			h.sessionManager.SetName(id, playerNames[seat])
		}
	}
	h.roomManager.SaveRoom(r)

	r.Broadcast(codec.MustNewMessage(protocol.MsgTeamNamesUpdated, protocol.TeamNamesUpdatedPayload{
		TeamNames: r.GetTeamNames(),
		Players:   r.GetAllPlayersInfo(),
	}))
}

// rename 按请求修改玩家名，空名保持原值
func (h *Handler) rename(client types.ClientInterface, name string) {
	if name = cleanName(name); name == "" {
		return
	}
	client.SetName(name)
	h.sessionManager.SetName(client.GetID(), name)
}

// cleanName 去掉首尾空白并截断
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}
	return name
}
