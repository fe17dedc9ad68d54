package session

import (
	"context"
	"time"

	"github.com/palemoky/kaat-color/internal/game/engine"
	"github.com/palemoky/kaat-color/internal/server/storage"
)

// recordTimeout 写入排行榜的超时
const recordTimeout = 5 * time.Second

// RoundRecorder 本局结果的记录方，通常为排行榜
type RoundRecorder interface {
	RecordRound(ctx context.Context, rec *storage.RoundRecord) error
}

// Options 游戏会话配置
type Options struct {
	TurnTimeout    time.Duration // 出牌超时，0 表示不限时
	OfflineTimeout time.Duration // 轮到掉线玩家时的等待时长，0 表示一直等待
	EngineOptions  []engine.Option
}
