package room

import (
	"github.com/palemoky/kaat-color/internal/server/storage"
)

// ToRoomData 将 Room 转换为可序列化的 RoomData
func (r *Room) ToRoomData() *storage.RoomData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.toRoomData()
}

func (r *Room) toRoomData() *storage.RoomData {
	data := &storage.RoomData{
		Code:      r.Code,
		State:     int(r.State),
		Players:   make([]storage.PlayerData, 0, len(r.Players)),
		TeamNames: r.TeamNames,
		CreatedAt: r.CreatedAt.Unix(),
	}

	for _, id := range r.Seats {
		player, ok := r.Players[id]
		if !ok {
			continue
		}
		data.Players = append(data.Players, storage.PlayerData{
			ID:   id,
			Name: player.Client.GetName(),
			Seat: player.Seat,
			Team: int(player.Team),
		})
	}
	return data
}
