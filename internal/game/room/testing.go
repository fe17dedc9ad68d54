//go:build !production

package room

import (
	"time"

	"github.com/palemoky/kaat-color/internal/game/engine"
	"github.com/palemoky/kaat-color/internal/types"
)

// NewMockRoom 创建测试用的 Room，clients 依次入座
func NewMockRoom(code string, clients ...types.ClientInterface) *Room {
	now := time.Now()
	room := &Room{
		Code:      code,
		State:     RoomStateWaiting,
		Players:   make(map[string]*RoomPlayer, MaxPlayers),
		TeamNames: engine.DefaultTeamNames,
		CreatedAt: now,
		ActiveAt:  now,
	}
	for seat, client := range clients {
		if seat >= MaxPlayers {
			break
		}
		room.addPlayer(client, seat)
	}
	return room
}

// AddRoomForTest 添加房间用于测试
func (rm *RoomManager) AddRoomForTest(room *Room) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rooms[room.Code] = room
}
