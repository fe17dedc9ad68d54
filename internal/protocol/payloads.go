package protocol

// --- 客户端请求 Payloads ---

// ReconnectPayload 断线重连请求
type ReconnectPayload struct {
	Token    string `json:"token"`     // 重连令牌
	PlayerID string `json:"player_id"` // 玩家 ID
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	PlayerName string `json:"player_name,omitempty"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name,omitempty"`
}

// PlayCardPayload 出牌请求，CardIndex 为手牌中的下标
type PlayCardPayload struct {
	CardIndex int `json:"card_index"`
}

// UpdateTeamNamesPayload 修改队名和玩家名，空字符串表示不修改
type UpdateTeamNamesPayload struct {
	TeamNames   [2]string `json:"team_names"`
	PlayerNames [4]string `json:"player_names"`
}

// GetLeaderboardPayload 获取排行榜请求，Daily 为 true 时只统计当天
type GetLeaderboardPayload struct {
	Limit int  `json:"limit"`
	Daily bool `json:"daily,omitempty"`
}

// GetHistoryPayload 获取当前房间最近的对局
type GetHistoryPayload struct {
	Limit int `json:"limit"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	ReconnectToken string `json:"reconnect_token"` // 重连令牌
}

// ReconnectedPayload 重连成功响应
type ReconnectedPayload struct {
	PlayerID   string        `json:"player_id"`
	PlayerName string        `json:"player_name"`
	RoomCode   string        `json:"room_code,omitempty"`  // 如果在房间中
	GameState  *GameStateDTO `json:"game_state,omitempty"` // 如果在游戏中
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// PlayerOfflinePayload 玩家掉线通知
type PlayerOfflinePayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Timeout    int    `json:"timeout"` // 等待重连超时（秒）
}

// PlayerOnlinePayload 玩家上线通知
type PlayerOnlinePayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomCode string     `json:"room_code"`
	Player   PlayerInfo `json:"player"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	RoomCode  string       `json:"room_code"`
	Player    PlayerInfo   `json:"player"`
	Players   []PlayerInfo `json:"players"` // 房间内所有玩家
	TeamNames [2]string    `json:"team_names"`
}

// PlayerJoinedPayload 其他玩家加入通知
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

// PlayerLeftPayload 玩家离开通知
type PlayerLeftPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// TeamNamesUpdatedPayload 队名更新通知
type TeamNamesUpdatedPayload struct {
	TeamNames [2]string    `json:"team_names"`
	Players   []PlayerInfo `json:"players"`
}

// GameStartedPayload 新游戏开始通知
type GameStartedPayload struct {
	Players   []PlayerInfo `json:"players"` // 按座位顺序排列
	TeamNames [2]string    `json:"team_names"`
	Dealer    int          `json:"dealer"`
}

// NewRoundStartedPayload 新一局开始通知
type NewRoundStartedPayload struct {
	Dealer      int `json:"dealer"`
	RoundNumber int `json:"round_number"`
}

// TrumpDiscoveredPayload 主牌确定通知
type TrumpDiscoveredPayload struct {
	Suit       int    `json:"suit"`
	Symbol     string `json:"symbol"`
	Seat       int    `json:"seat"`
	PlayerName string `json:"player_name"`
	Team       int    `json:"team"`
}

// TricksBankedPayload 墩数入账通知
type TricksBankedPayload struct {
	Seat       int    `json:"seat"`
	PlayerName string `json:"player_name"`
	Count      int    `json:"count"`
	EndOfRound bool   `json:"end_of_round"` // 第 13 墩后的剩余结算
}

// RoundResultPayload 本局结算通知
type RoundResultPayload struct {
	TeamTricks      [2]int           `json:"team_tricks"`
	Winner          int              `json:"winner"` // 1 或 2
	WinnerName      string           `json:"winner_name"`
	TrumpMakingTeam int              `json:"trump_making_team"` // 0 表示未确定主牌
	Bonus           string           `json:"bonus,omitempty"`   // coat / talent
	BonusTeam       int              `json:"bonus_team,omitempty"`
	Dealer          int              `json:"dealer"`
	NextDealer      int              `json:"next_dealer"`
	Teams           [2]TeamScoreInfo `json:"teams"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// LeaderboardResultPayload 排行榜结果
type LeaderboardResultPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
	Daily   bool               `json:"daily,omitempty"`
}

// HistoryResultPayload 房间对局记录，新的在前
type HistoryResultPayload struct {
	RoomCode  string         `json:"room_code"`
	Rounds    []HistoryEntry `json:"rounds"`
	TeamNames [2]string      `json:"team_names"`
	TeamRanks [2]int64       `json:"team_ranks"` // 总榜名次，-1 表示未上榜
}

// HistoryEntry 一局记录
type HistoryEntry struct {
	TeamNames  [2]string `json:"team_names"`
	TeamTricks [2]int    `json:"team_tricks"`
	Winner     int       `json:"winner"`
	Bonus      string    `json:"bonus,omitempty"`
	BonusTeam  int       `json:"bonus_team,omitempty"`
	PlayedAt   int64     `json:"played_at"`
}

// LeaderboardEntry 排行榜条目（以队名统计）
type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	TeamName  string  `json:"team_name"`
	RoundWins int     `json:"round_wins"`
	Coats     int     `json:"coats"`
	Talents   int     `json:"talents"`
	Rounds    int     `json:"rounds"`
	WinRate   float64 `json:"win_rate"`
}

// RoomListResultPayload 房间列表结果
type RoomListResultPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomCode    string `json:"room_code"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	State       string `json:"state"`
}

// --- 通用数据结构 ---

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Seat       int    `json:"seat"` // 座位号 0-3
	Team       int    `json:"team"` // 1: 座位 0、2；2: 座位 1、3
	CardsCount int    `json:"cards_count"`
	TricksWon  int    `json:"tricks_won"`
	Online     bool   `json:"online"`
}

// CardInfo 牌信息
type CardInfo struct {
	Suit  int `json:"suit"`  // 花色: 0=黑桃, 1=红心, 2=梅花, 3=方块
	Rank  int `json:"rank"`  // 点数: 2-14 (J=11, Q=12, K=13, A=14)
	Color int `json:"color"` // 颜色: 0=黑, 1=红
}

// TrickPlayInfo 一墩中的一张出牌
type TrickPlayInfo struct {
	Seat int      `json:"seat"`
	Card CardInfo `json:"card"`
}

// TeamScoreInfo 队伍比分
type TeamScoreInfo struct {
	Name      string `json:"name"`
	Tricks    int    `json:"tricks"` // 本局已入账墩数
	RoundWins int    `json:"round_wins"`
	Coats     int    `json:"coats"`
	Talents   int    `json:"talents"`
}

// GameStateDTO 牌局快照，只包含接收者自己的手牌
type GameStateDTO struct {
	Phase            string              `json:"phase"`   // waiting / playing / round_end
	Accrual          string              `json:"accrual"` // pre_trump / post_trump
	Seat             int                 `json:"seat"`    // 接收者座位，-1 表示旁观
	Players          []PlayerInfo        `json:"players"`
	Hand             []CardInfo          `json:"hand"`
	LegalMoves       []int               `json:"legal_moves"` // 可出牌在 Hand 中的下标
	CurrentSeat      int                 `json:"current_seat"`
	Dealer           int                 `json:"dealer"`
	TrumpSuit        int                 `json:"trump_suit"` // -1 表示未确定
	TrumpMakingTeam  int                 `json:"trump_making_team"`
	LeadSuit         int                 `json:"lead_suit"`
	CurrentTrick     []TrickPlayInfo     `json:"current_trick"`
	LastTrick        []TrickPlayInfo     `json:"last_trick"`
	TrickNumber      int                 `json:"trick_number"`
	StackedTricks    int                 `json:"stacked_tricks"`
	FreshTricks      int                 `json:"fresh_tricks"`
	ConsecutiveSeat  int                 `json:"consecutive_seat"`
	ConsecutiveCount int                 `json:"consecutive_count"`
	LastTrickWinner  int                 `json:"last_trick_winner"`
	Teams            [2]TeamScoreInfo    `json:"teams"`
	LastResult       *RoundResultPayload `json:"last_result,omitempty"`
}
