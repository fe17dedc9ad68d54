package apperrors

import (
	"errors"

	"github.com/palemoky/kaat-color/internal/protocol"
)

// GameError 游戏错误（引擎、房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrInvalidMsg      = newError(protocol.ErrCodeInvalidMsg)
	ErrRateLimit       = newError(protocol.ErrCodeRateLimit)
	ErrRoomNotFound    = newError(protocol.ErrCodeRoomNotFound)
	ErrRoomFull        = newError(protocol.ErrCodeRoomFull)
	ErrNotInRoom       = newError(protocol.ErrCodeNotInRoom)
	ErrGameStarted     = newError(protocol.ErrCodeGameStarted)
	ErrNeedFourPlayers = newError(protocol.ErrCodeNeedFourPlayers)
	ErrReconnectFailed = newError(protocol.ErrCodeReconnectFailed)
	ErrMaintenance     = newError(protocol.ErrCodeServerMaintenance)

	// 引擎拒绝出牌的原因，拒绝时状态不变
	ErrGameNotStart     = newError(protocol.ErrCodeGameNotStart)
	ErrOutOfTurn        = newError(protocol.ErrCodeNotYourTurn)
	ErrInvalidCardIndex = newError(protocol.ErrCodeInvalidCardIndex)
	ErrIllegalMove      = newError(protocol.ErrCodeIllegalMove)
	ErrRoundNotActive   = newError(protocol.ErrCodeRoundNotActive)
)

// CodeOf 返回错误对应的错误码，非 GameError 返回 ErrCodeUnknown
func CodeOf(err error) int {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return protocol.ErrCodeUnknown
}
