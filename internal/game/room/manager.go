package room

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/apperrors"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/types"
)

// CreateRoom 创建房间，创建者坐 0 号位
func (rm *RoomManager) CreateRoom(client types.ClientInterface) (*Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	code := rm.generateRoomCode()
	now := time.Now()
	room := &Room{
		Code:      code,
		State:     RoomStateWaiting,
		Players:   make(map[string]*RoomPlayer, MaxPlayers),
		TeamNames: rm.teamNames,
		CreatedAt: now,
		ActiveAt:  now,
	}
	room.addPlayer(client, 0)
	rm.rooms[code] = room

	rm.persist(room)

	logrus.WithFields(logrus.Fields{"room": code, "player": client.GetName()}).Info("🏠 房间已创建")

	return room, nil
}

// JoinRoom 加入房间，坐第一个空座位
func (rm *RoomManager) JoinRoom(client types.ClientInterface, code string) (*Room, error) {
	rm.mu.RLock()
	room, exists := rm.rooms[code]
	rm.mu.RUnlock()
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if _, already := room.Players[client.GetID()]; already {
		return room, nil
	}
	if room.State == RoomStateEnded {
		return nil, apperrors.ErrRoomNotFound
	}
	if room.State.InGame() {
		return nil, apperrors.ErrGameStarted
	}

	seat := room.freeSeat()
	if seat < 0 {
		return nil, apperrors.ErrRoomFull
	}
	room.addPlayer(client, seat)

	logrus.WithFields(logrus.Fields{"room": code, "player": client.GetName(), "seat": seat}).Info("👤 玩家加入房间")

	// 通知房间内其他玩家
	room.broadcastExcept(client.GetID(), codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: room.playerInfo(client.GetID()),
	}))

	rm.persist(room)

	return room, nil
}

// LeaveRoom 离开房间，返回离开前所在的房间；房间空了会被解散
func (rm *RoomManager) LeaveRoom(client types.ClientInterface) *Room {
	roomCode := client.GetRoom()
	if roomCode == "" {
		return nil
	}
	client.SetRoom("")

	rm.mu.RLock()
	room, exists := rm.rooms[roomCode]
	rm.mu.RUnlock()
	if !exists {
		return nil
	}

	room.mu.Lock()
	player := room.removePlayer(client.GetID())
	if player == nil {
		room.mu.Unlock()
		return nil
	}

	room.broadcastExcept(client.GetID(), codec.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
		PlayerID:   client.GetID(),
		PlayerName: client.GetName(),
	}))

	empty := len(room.Players) == 0
	if empty {
		room.State = RoomStateEnded
	}
	room.mu.Unlock()

	logrus.WithFields(logrus.Fields{"room": roomCode, "player": client.GetName(), "seat": player.Seat}).Info("👋 玩家离开房间")

	if empty {
		rm.removeRoom(roomCode)
		logrus.WithField("room", roomCode).Info("🏠 房间已解散")
	} else {
		rm.persist(room)
	}
	return room
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// SaveRoom 把房间当前状态同步到 Redis
func (rm *RoomManager) SaveRoom(room *Room) {
	rm.persist(room)
}

// GetRoomList 获取可加入的房间列表
func (rm *RoomManager) GetRoomList() []protocol.RoomListItem {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	rooms := make([]protocol.RoomListItem, 0, len(rm.rooms))
	for code, room := range rm.rooms {
		room.mu.RLock()
		// 只返回等待中且未满的房间
		if room.State == RoomStateWaiting && len(room.Players) < MaxPlayers {
			rooms = append(rooms, protocol.RoomListItem{
				RoomCode:    code,
				PlayerCount: len(room.Players),
				MaxPlayers:  MaxPlayers,
				State:       room.State.String(),
			})
		}
		room.mu.RUnlock()
	}
	return rooms
}

// GetRoomByPlayerID 通过玩家 ID 获取房间
func (rm *RoomManager) GetRoomByPlayerID(playerID string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	for _, room := range rm.rooms {
		room.mu.RLock()
		_, exists := room.Players[playerID]
		room.mu.RUnlock()
		if exists {
			return room
		}
	}
	return nil
}

// GetActiveGamesCount 获取进行中的牌局数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		room.mu.RLock()
		// 局间等待不计入
		if room.State == RoomStatePlaying {
			count++
		}
		room.mu.RUnlock()
	}
	return count
}

// removeRoom 从内存和 Redis 删除房间
func (rm *RoomManager) removeRoom(code string) {
	rm.mu.Lock()
	delete(rm.rooms, code)
	rm.mu.Unlock()
	rm.unpersist(code)
}

// unpersist 异步删除 Redis 中的房间
func (rm *RoomManager) unpersist(code string) {
	if rm.redisStore == nil {
		return
	}
	go func() {
		rm.persistMu.Lock()
		defer rm.persistMu.Unlock()
		if err := rm.redisStore.DeleteRoom(context.Background(), code); err != nil {
			logrus.WithError(err).WithField("room", code).Warn("删除 Redis 房间失败")
		}
	}()
}

// persist 异步保存房间目录数据，已删除的房间不再写入
func (rm *RoomManager) persist(room *Room) {
	if rm.redisStore == nil {
		return
	}
	go func() {
		rm.persistMu.Lock()
		defer rm.persistMu.Unlock()
		if rm.GetRoom(room.Code) != room {
			return
		}
		if err := rm.redisStore.SaveRoom(context.Background(), room.ToRoomData()); err != nil {
			logrus.WithError(err).WithField("room", room.Code).Warn("保存房间到 Redis 失败")
		}
	}()
}

// purgeStale 删除 Redis 中残留的房间目录
func (rm *RoomManager) purgeStale() {
	if rm.redisStore == nil {
		return
	}
	ctx := context.Background()
	codes, err := rm.redisStore.GetAllRoomCodes(ctx)
	if err != nil {
		logrus.WithError(err).Warn("读取 Redis 房间列表失败")
		return
	}
	for _, code := range codes {
		if err := rm.redisStore.DeleteRoom(ctx, code); err != nil {
			logrus.WithError(err).WithField("room", code).Warn("删除 Redis 房间失败")
		}
	}
	if len(codes) > 0 {
		logrus.WithField("count", len(codes)).Info("🧹 已清理残留房间")
	}
}
