package room

import (
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/apperrors"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/types"
)

// cleanupInterval 房间清理间隔
const cleanupInterval = time.Minute

// NotifyPlayerOffline 标记玩家掉线并通知房间内其他玩家
// 所有玩家都掉线时删除房间，返回 true。
func (rm *RoomManager) NotifyPlayerOffline(client types.ClientInterface) (removed bool) {
	roomCode := client.GetRoom()
	if roomCode == "" {
		return false
	}

	rm.mu.RLock()
	room, exists := rm.rooms[roomCode]
	rm.mu.RUnlock()
	if !exists {
		return false
	}

	room.mu.Lock()
	player, exists := room.Players[client.GetID()]
	if !exists {
		room.mu.Unlock()
		return false
	}
	player.Offline = true

	allOffline := true
	for _, p := range room.Players {
		if !p.Offline {
			allOffline = false
			break
		}
	}

	if allOffline {
		room.State = RoomStateEnded
		room.mu.Unlock()
		logrus.WithField("room", roomCode).Info("🧹 房间所有玩家已断开连接，清理房间")
		rm.removeRoom(roomCode)
		return true
	}

	room.broadcastExcept(client.GetID(), codec.MustNewMessage(protocol.MsgPlayerOffline, protocol.PlayerOfflinePayload{
		PlayerID:   client.GetID(),
		PlayerName: client.GetName(),
		Timeout:    int(rm.offlineTimeout.Seconds()),
	}))
	room.mu.Unlock()

	logrus.WithFields(logrus.Fields{"room": roomCode, "player": client.GetName()}).Info("📴 玩家掉线")
	return false
}

// ReconnectPlayer 用新连接替换房间中的玩家，并通知其他玩家
func (rm *RoomManager) ReconnectPlayer(roomCode string, client types.ClientInterface) (*Room, error) {
	rm.mu.RLock()
	room, exists := rm.rooms[roomCode]
	rm.mu.RUnlock()
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	player, exists := room.Players[client.GetID()]
	if !exists {
		room.mu.Unlock()
		return nil, apperrors.ErrNotInRoom
	}

	player.Client = client
	player.Offline = false
	client.SetRoom(roomCode)

	room.broadcastExcept(client.GetID(), codec.MustNewMessage(protocol.MsgPlayerOnline, protocol.PlayerOnlinePayload{
		PlayerID:   client.GetID(),
		PlayerName: client.GetName(),
	}))
	room.mu.Unlock()

	logrus.WithFields(logrus.Fields{"room": roomCode, "player": client.GetName()}).Info("📶 玩家重连到房间")

	return room, nil
}

// generateRoomCode 生成房间号，调用方持有 rm.mu
func (rm *RoomManager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := rm.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// cleanupLoop 定期清理超时房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rm.cleanup(time.Now())
		case <-rm.done:
			return
		}
	}
}

// cleanup 清理空闲超时的等待中房间
func (rm *RoomManager) cleanup(now time.Time) {
	if rm.roomTimeout <= 0 {
		return
	}

	rm.mu.Lock()
	var expired []string
	for code, room := range rm.rooms {
		room.mu.Lock()
		if room.State == RoomStateWaiting && now.Sub(room.ActiveAt) > rm.roomTimeout {
			room.State = RoomStateEnded
			room.broadcastExcept("", codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "房间超时已关闭"))
			for _, p := range room.Players {
				p.Client.SetRoom("")
			}
			delete(rm.rooms, code)
			expired = append(expired, code)
		}
		room.mu.Unlock()
	}
	rm.mu.Unlock()

	for _, code := range expired {
		logrus.WithField("room", code).Info("🏠 房间超时已清理")
		rm.unpersist(code)
	}
}
