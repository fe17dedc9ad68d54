package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgReconnect MessageType = "reconnect" // 断线重连
	MsgPing      MessageType = "ping"      // 心跳 ping

	// 房间操作
	MsgCreateRoom      MessageType = "create_room"       // 创建房间
	MsgJoinRoom        MessageType = "join_room"         // 加入房间
	MsgLeaveRoom       MessageType = "leave_room"        // 离开房间
	MsgUpdateTeamNames MessageType = "update_team_names" // 修改队名和玩家名

	// 游戏操作
	MsgStartGame     MessageType = "start_game"      // 开始新游戏（比分清零）
	MsgStartNewRound MessageType = "start_new_round" // 开始新一局
	MsgPlayCard      MessageType = "play_card"       // 出牌
	MsgGetState      MessageType = "get_state"       // 拉取当前牌局

	// 查询
	MsgGetRoomList    MessageType = "get_room_list"   // 获取房间列表
	MsgGetLeaderboard MessageType = "get_leaderboard" // 获取排行榜
	MsgGetHistory     MessageType = "get_history"     // 获取本房间最近对局
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected     MessageType = "connected"      // 连接成功
	MsgReconnected   MessageType = "reconnected"    // 重连成功
	MsgPong          MessageType = "pong"           // 心跳 pong
	MsgPlayerOffline MessageType = "player_offline" // 玩家掉线通知
	MsgPlayerOnline  MessageType = "player_online"  // 玩家上线通知

	// 房间相关
	MsgRoomCreated      MessageType = "room_created"       // 房间创建成功
	MsgRoomJoined       MessageType = "room_joined"        // 加入房间成功
	MsgPlayerJoined     MessageType = "player_joined"      // 其他玩家加入
	MsgPlayerLeft       MessageType = "player_left"        // 玩家离开
	MsgTeamNamesUpdated MessageType = "team_names_updated" // 队名已更新

	// 游戏流程
	MsgGameStarted     MessageType = "game_started"      // 新游戏开始
	MsgNewRoundStarted MessageType = "new_round_started" // 新一局开始
	MsgGameState       MessageType = "game_state"        // 牌局快照（按座位隐藏他人手牌）
	MsgTrumpDiscovered MessageType = "trump_discovered"  // 主牌确定
	MsgTricksBanked    MessageType = "tricks_banked"     // 连赢两墩入账
	MsgRoundResult     MessageType = "round_result"      // 本局结算

	// 查询结果
	MsgRoomListResult    MessageType = "room_list_result"   // 房间列表结果
	MsgLeaderboardResult MessageType = "leaderboard_result" // 排行榜结果
	MsgHistoryResult     MessageType = "history_result"     // 对局记录结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
