package room

// RoomState 房间状态
type RoomState int

const (
	RoomStateWaiting  RoomState = iota // 等待玩家
	RoomStatePlaying                   // 出牌中
	RoomStateRoundEnd                  // 本局结束，等待开始新一局
	RoomStateEnded                     // 已关闭，等待清理
)

func (s RoomState) String() string {
	switch s {
	case RoomStateWaiting:
		return "waiting"
	case RoomStatePlaying:
		return "playing"
	case RoomStateRoundEnd:
		return "round_end"
	case RoomStateEnded:
		return "ended"
	}
	return "unknown"
}

// InGame 牌局是否进行中（含局间等待）
func (s RoomState) InGame() bool {
	return s == RoomStatePlaying || s == RoomStateRoundEnd
}
