package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/sound"
)

// handleServerMessage 先更新客户端状态，再处理阶段切换和提示
func (m *Model) handleServerMessage(msg *protocol.Message) tea.Cmd {
	wasMyTurn := m.state.IsMyTurn()
	if err := m.state.Apply(msg); err != nil {
		logrus.WithError(err).WithField("type", msg.Type).Warn("无法解析服务器消息")
		return nil
	}
	m.playCue(msg.Type, wasMyTurn)

	switch msg.Type {
	case protocol.MsgReconnected:
		switch {
		case !m.state.InRoom():
			m.state.Reset()
			m.enterLobby()
		case m.state.Phase() == "playing" || m.state.Phase() == "round_end":
			m.enterGame()
		default:
			m.enterWaiting()
		}

	case protocol.MsgRoomCreated, protocol.MsgRoomJoined:
		m.enterWaiting()

	case protocol.MsgPlayerLeft:
		if m.phase == PhaseGame {
			m.state.Snapshot = nil
			m.enterWaiting()
			return m.notify(NotifyInfo, "有玩家离开，牌局终止", true)
		}

	case protocol.MsgGameStarted, protocol.MsgNewRoundStarted:
		m.showHelp = false
		m.enterGame()
		m.cursor = 0

	case protocol.MsgGameState:
		if phase := m.state.Phase(); phase == "playing" || phase == "round_end" {
			m.enterGame()
			m.fixCursor()
		}

	case protocol.MsgRoomListResult:
		m.phase = PhaseRoomList
		m.setInputMode(inputRoomPick, "输入序号或房间号")

	case protocol.MsgLeaderboardResult:
		m.phase = PhaseLeaderboard
		m.setInputMode(inputNone, "")

	case protocol.MsgError:
		return m.handleError(m.state.LastError)
	}
	return nil
}

// playCue 按消息类型播放音效
func (m *Model) playCue(t protocol.MessageType, wasMyTurn bool) {
	switch t {
	case protocol.MsgRoomJoined, protocol.MsgPlayerJoined:
		m.sound.Play(sound.CueJoin)
	case protocol.MsgGameStarted, protocol.MsgNewRoundStarted:
		m.sound.Play(sound.CueDeal)
	case protocol.MsgGameState, protocol.MsgReconnected:
		if !wasMyTurn && m.state.IsMyTurn() {
			m.sound.Play(sound.CueTurn)
		}
	case protocol.MsgTrumpDiscovered:
		m.sound.Play(sound.CueTrump)
	case protocol.MsgTricksBanked:
		m.sound.Play(sound.CueBank)
	case protocol.MsgRoundResult:
		if r := m.state.LastResult; r != nil && r.Winner == m.state.Self.Team {
			m.sound.Play(sound.CueWin)
		} else {
			m.sound.Play(sound.CueLose)
		}
	}
}

// handleError 按错误码选择通知类型
func (m *Model) handleError(e *protocol.ErrorPayload) tea.Cmd {
	if e == nil {
		return nil
	}
	switch e.Code {
	case protocol.ErrCodeServerMaintenance:
		return m.notify(NotifyMaintenance, "🔧 "+e.Message, false)
	case protocol.ErrCodeRateLimit:
		return m.notify(NotifyRateLimit, "⚠️ "+e.Message, true)
	case protocol.ErrCodeReconnectFailed:
		// 服务器已不认识旧身份，回到大厅
		m.state.Reset()
		m.enterLobby()
	}
	return m.notify(NotifyError, fmt.Sprintf("❌ %s", e.Message), true)
}

// fixCursor 光标越界时收回；轮到自己且光标处不可出时移到第一张可出的牌
func (m *Model) fixCursor() {
	n := len(m.state.Hand)
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor, 0), n-1)
	if m.state.IsMyTurn() && !m.state.IsLegal(m.cursor) {
		if moves := m.state.Snapshot.LegalMoves; len(moves) > 0 {
			m.cursor = moves[0]
		}
	}
}
