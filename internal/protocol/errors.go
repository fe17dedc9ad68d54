package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomFull          = 2002
	ErrCodeNotInRoom         = 2003
	ErrCodeGameStarted       = 2004 // 游戏已开始
	ErrCodeNeedFourPlayers   = 2005 // 人数不足
	ErrCodeGameNotStart      = 3001
	ErrCodeNotYourTurn       = 3002
	ErrCodeInvalidCardIndex  = 3003
	ErrCodeIllegalMove       = 3004
	ErrCodeRoundNotActive    = 3005
	ErrCodeReconnectFailed   = 4001
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRateLimit:         "请求过于频繁",
	ErrCodeRoomNotFound:      "房间不存在",
	ErrCodeRoomFull:          "房间已满",
	ErrCodeNotInRoom:         "您不在房间中",
	ErrCodeGameStarted:       "游戏已开始",
	ErrCodeNeedFourPlayers:   "需要 4 名玩家才能开始",
	ErrCodeGameNotStart:      "游戏尚未开始",
	ErrCodeNotYourTurn:       "还没轮到您",
	ErrCodeInvalidCardIndex:  "无效的牌序号",
	ErrCodeIllegalMove:       "有领出花色时必须跟牌",
	ErrCodeRoundNotActive:    "本局已结束，请开始新一局",
	ErrCodeReconnectFailed:   "重连失败",
	ErrCodeServerMaintenance: "服务器维护中",
}
