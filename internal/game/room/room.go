package room

import (
	"sync"
	"time"

	"github.com/palemoky/kaat-color/internal/game/engine"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/server/storage"
	"github.com/palemoky/kaat-color/internal/types"
)

const (
	roomCodeLength = 6            // 房间号长度
	roomCodeChars  = "0123456789" // 房间号字符集

	// MaxPlayers 房间座位数
	MaxPlayers = engine.NumSeats
)

// RoomPlayer 房间中的玩家
type RoomPlayer struct {
	Client  types.ClientInterface
	Seat    int         // 座位号 0-3
	Team    engine.Team // 由座位奇偶决定
	Offline bool        // 掉线等待重连
}

// Room 游戏房间
type Room struct {
	Code      string                 // 房间号
	State     RoomState              // 房间状态
	Players   map[string]*RoomPlayer // 玩家列表
	Seats     [MaxPlayers]string     // 按座位的玩家 ID，空串表示空位
	TeamNames [2]string
	CreatedAt time.Time
	ActiveAt  time.Time // 最近一次加入或状态变化

	mu sync.RWMutex
}

// RoomManager 房间管理器
type RoomManager struct {
	redisStore     *storage.RedisStore
	roomTimeout    time.Duration
	offlineTimeout time.Duration
	teamNames      [2]string
	rooms          map[string]*Room
	mu             sync.RWMutex
	persistMu      sync.Mutex // 串行化 Redis 写入
	done           chan struct{}
	closeOnce      sync.Once
}

// Options 房间管理器配置
type Options struct {
	RoomTimeout    time.Duration // 等待中房间的空闲超时
	OfflineTimeout time.Duration // 掉线等待重连时长，用于通知
	TeamNames      [2]string     // 新房间的默认队名
}

// NewRoomManager 创建房间管理器，rs 为 nil 时不写 Redis
func NewRoomManager(rs *storage.RedisStore, opts Options) *RoomManager {
	teamNames := engine.DefaultTeamNames
	for i, name := range opts.TeamNames {
		if name != "" {
			teamNames[i] = name
		}
	}

	rm := &RoomManager{
		redisStore:     rs,
		roomTimeout:    opts.RoomTimeout,
		offlineTimeout: opts.OfflineTimeout,
		teamNames:      teamNames,
		rooms:          make(map[string]*Room),
		done:           make(chan struct{}),
	}

	// 上次运行留下的房间目录已没有对应的牌局
	rm.purgeStale()

	// 启动房间清理协程
	go rm.cleanupLoop()

	return rm
}

// Close 停止清理协程
func (rm *RoomManager) Close() {
	rm.closeOnce.Do(func() { close(rm.done) })
}

// --- Room 方法 ---

// Broadcast 广播消息给房间内所有在线玩家
func (r *Room) Broadcast(msg *protocol.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.broadcastExcept("", msg)
}

func (r *Room) broadcastExcept(excludeID string, msg *protocol.Message) {
	for id, player := range r.Players {
		if id != excludeID && !player.Offline {
			player.Client.SendMessage(msg)
		}
	}
}

// SeatClients 返回按座位排列的在线客户端，空位或掉线为 nil
func (r *Room) SeatClients() [MaxPlayers]types.ClientInterface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var clients [MaxPlayers]types.ClientInterface
	for seat, id := range r.Seats {
		if player, ok := r.Players[id]; ok && !player.Offline {
			clients[seat] = player.Client
		}
	}
	return clients
}

// SeatNames 返回按座位排列的玩家名，空位为空串
func (r *Room) SeatNames() [MaxPlayers]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names [MaxPlayers]string
	for seat, id := range r.Seats {
		if player, ok := r.Players[id]; ok {
			names[seat] = player.Client.GetName()
		}
	}
	return names
}

// SeatIDs 返回按座位排列的玩家 ID
func (r *Room) SeatIDs() [MaxPlayers]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Seats
}

// SeatOf 返回玩家座位，不在房间返回 -1
func (r *Room) SeatOf(playerID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if player, ok := r.Players[playerID]; ok {
		return player.Seat
	}
	return -1
}

// IsOnline 玩家是否在线
func (r *Room) IsOnline(playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	player, ok := r.Players[playerID]
	return ok && !player.Offline
}

// PlayerCount 返回房间人数
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Players)
}

// IsFull 座位是否已满
func (r *Room) IsFull() bool {
	return r.PlayerCount() >= MaxPlayers
}

// GetState 获取房间状态
func (r *Room) GetState() RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.State
}

// SetState 设置房间状态
func (r *Room) SetState(state RoomState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.State = state
	r.ActiveAt = time.Now()
}

// GetTeamNames 获取队名
func (r *Room) GetTeamNames() [2]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.TeamNames
}

// Rename 修改队名和座位上的玩家名，空串保持不变
func (r *Room) Rename(teamNames [2]string, playerNames [MaxPlayers]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, name := range teamNames {
		if name != "" {
			r.TeamNames[i] = name
		}
	}
	for seat, name := range playerNames {
		if player, ok := r.Players[r.Seats[seat]]; ok && name != "" {
			player.Client.SetName(name)
		}
	}
}

// GetPlayerInfo 获取玩家信息
func (r *Room) GetPlayerInfo(playerID string) protocol.PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playerInfo(playerID)
}

func (r *Room) playerInfo(playerID string) protocol.PlayerInfo {
	player, ok := r.Players[playerID]
	if !ok {
		return protocol.PlayerInfo{ID: playerID, Seat: -1}
	}
	return protocol.PlayerInfo{
		ID:     playerID,
		Name:   player.Client.GetName(),
		Seat:   player.Seat,
		Team:   int(player.Team),
		Online: !player.Offline,
	}
}

// GetAllPlayersInfo 按座位顺序获取所有玩家信息
func (r *Room) GetAllPlayersInfo() []protocol.PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]protocol.PlayerInfo, 0, len(r.Players))
	for _, id := range r.Seats {
		if _, ok := r.Players[id]; ok {
			infos = append(infos, r.playerInfo(id))
		}
	}
	return infos
}

// freeSeat 返回第一个空座位，已满返回 -1
func (r *Room) freeSeat() int {
	for seat, id := range r.Seats {
		if id == "" {
			return seat
		}
	}
	return -1
}

// addPlayer 入座，调用方持有锁
func (r *Room) addPlayer(client types.ClientInterface, seat int) *RoomPlayer {
	player := &RoomPlayer{
		Client: client,
		Seat:   seat,
		Team:   engine.TeamOf(seat),
	}
	r.Players[client.GetID()] = player
	r.Seats[seat] = client.GetID()
	r.ActiveAt = time.Now()
	client.SetRoom(r.Code)
	return player
}

// removePlayer 离座，调用方持有锁
func (r *Room) removePlayer(playerID string) *RoomPlayer {
	player, ok := r.Players[playerID]
	if !ok {
		return nil
	}
	delete(r.Players, playerID)
	r.Seats[player.Seat] = ""
	return player
}
