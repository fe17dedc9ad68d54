// Package sound 客户端音效。素材目录下按音效名放置 mp3 或 wav 文件，缺失的音效静默跳过。
package sound

// Cue 音效名，对应素材文件名（不含扩展名）
type Cue string

const (
	CueJoin  Cue = "join"  // 有人入座
	CueDeal  Cue = "deal"  // 发牌
	CueTurn  Cue = "turn"  // 轮到自己
	CuePlay  Cue = "play"  // 自己出牌
	CueTrump Cue = "trump" // 主牌确定
	CueBank  Cue = "bank"  // 收墩入账
	CueWin   Cue = "win"
	CueLose  Cue = "lose"
)

// DefaultDir 默认素材目录
const DefaultDir = "assets/sounds"
