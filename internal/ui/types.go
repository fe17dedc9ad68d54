// Package ui implements the bubbletea terminal client.
package ui

import (
	"github.com/palemoky/kaat-color/internal/protocol"
)

// Phase 界面阶段
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseLobby
	PhaseRoomList
	PhaseLeaderboard
	PhaseRules
	PhaseWaiting
	PhaseGame // 出牌与局间结算
)

// inputMode 输入框当前用途
type inputMode int

const (
	inputNone      inputMode = iota
	inputMenu                // 大厅选项或房间号
	inputRoomCode            // 加入房间
	inputRoomPick            // 房间列表序号
	inputTeamNames           // 修改队名 "队1,队2"
)

// NotificationType 系统通知类型，按优先级排列
type NotificationType int

const (
	NotifyError            NotificationType = iota // 错误信息（临时）
	NotifyRateLimit                                // 限频提示（临时）
	NotifyReconnecting                             // 重连中（持久）
	NotifyReconnectSuccess                         // 重连成功（临时）
	NotifyMaintenance                              // 维护通知（持久）
	NotifyInfo                                     // 一般提示（临时）
)

// Notification 系统通知
type Notification struct {
	Message   string
	Type      NotificationType
	Temporary bool // 3 秒后自动消失
	seq       int
}

// --- Tea Messages ---

// ServerMessage wraps a protocol message for tea.Msg.
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg indicates successful connection.
type ConnectedMsg struct{}

// ConnectionErrorMsg indicates a connection error.
type ConnectionErrorMsg struct {
	Err error
}

// ReconnectingMsg indicates reconnection in progress.
type ReconnectingMsg struct {
	Attempt  int
	MaxTries int
}

// ReconnectSuccessMsg indicates successful reconnection.
type ReconnectSuccessMsg struct{}

// ClearNotificationMsg clears a temporary notification.
type ClearNotificationMsg struct {
	Type NotificationType
	seq  int // 只清除同一条通知
}
