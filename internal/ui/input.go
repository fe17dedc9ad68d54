package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/sound"
	"github.com/palemoky/kaat-color/internal/ui/view"
)

// 大厅菜单项下标
const (
	menuCreateRoom = iota
	menuJoinRoom
	menuRoomList
	menuLeaderboard
	menuRules
)

// handleKey 返回 true 表示按键已处理，不再交给输入框
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.conn.Close()
		return true, tea.Quit
	}

	switch m.phase {
	case PhaseConnecting:
		if msg.Type == tea.KeyEsc {
			m.conn.Close()
			return true, tea.Quit
		}
		return true, nil
	case PhaseLobby:
		return m.handleLobbyKey(msg)
	case PhaseRoomList:
		return m.handleRoomListKey(msg)
	case PhaseLeaderboard:
		switch {
		case msg.Type == tea.KeyEsc:
			m.enterLobby()
		case msg.String() == "d":
			return true, m.sendResult(m.fetchLeaderboard(!m.state.LeaderboardDaily))
		}
		return true, nil
	case PhaseRules:
		if msg.Type == tea.KeyEsc {
			m.enterLobby()
		}
		return true, nil
	case PhaseWaiting:
		return m.handleWaitingKey(msg)
	case PhaseGame:
		return m.handleGameKey(msg)
	}
	return false, nil
}

func (m *Model) handleLobbyKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.inputMode == inputRoomCode {
			m.enterLobby()
			return true, nil
		}
		m.conn.Close()
		return true, tea.Quit
	case tea.KeyUp:
		m.selected = (m.selected + len(view.MenuItems) - 1) % len(view.MenuItems)
		return true, nil
	case tea.KeyDown:
		m.selected = (m.selected + 1) % len(view.MenuItems)
		return true, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if isRoomCode(value) {
			return true, m.sendResult(m.conn.JoinRoom(value, ""))
		}
		if m.inputMode == inputRoomCode {
			return true, m.notify(NotifyError, "房间号为 6 位数字", true)
		}
		choice := m.selected
		if value != "" {
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > len(view.MenuItems) {
				return true, m.notify(NotifyError, "无效的选项", true)
			}
			choice = n - 1
			m.selected = choice
		}
		return true, m.selectMenu(choice)
	}
	return false, nil
}

func (m *Model) selectMenu(choice int) tea.Cmd {
	switch choice {
	case menuCreateRoom:
		return m.sendResult(m.conn.CreateRoom(""))
	case menuJoinRoom:
		m.setInputMode(inputRoomCode, "输入 6 位房间号")
	case menuRoomList:
		return m.sendResult(m.conn.GetRoomList())
	case menuLeaderboard:
		return m.sendResult(m.fetchLeaderboard(m.state.LeaderboardDaily))
	case menuRules:
		m.phase = PhaseRules
		m.setInputMode(inputNone, "")
	}
	return nil
}

func (m *Model) fetchLeaderboard(daily bool) error {
	if daily {
		return m.conn.GetDailyLeaderboard(leaderboardLimit)
	}
	return m.conn.GetLeaderboard(leaderboardLimit)
}

func (m *Model) handleRoomListKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.enterLobby()
		return true, nil
	case msg.String() == "r":
		return true, m.sendResult(m.conn.GetRoomList())
	case msg.Type == tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if isRoomCode(value) {
			return true, m.sendResult(m.conn.JoinRoom(value, ""))
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > len(m.state.RoomList) {
			return true, m.notify(NotifyError, "无效的房间序号", true)
		}
		return true, m.sendResult(m.conn.JoinRoom(m.state.RoomList[n-1].RoomCode, ""))
	}
	return false, nil
}

func (m *Model) handleWaitingKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.inputMode == inputTeamNames {
		switch msg.Type {
		case tea.KeyEsc:
			m.setInputMode(inputNone, "")
			return true, nil
		case tea.KeyEnter:
			names, ok := parseTeamNames(m.input.Value())
			m.setInputMode(inputNone, "")
			if !ok {
				return true, m.notify(NotifyError, "格式: 队名1,队名2", true)
			}
			return true, m.sendResult(m.conn.UpdateTeamNames(names, [4]string{}))
		}
		return false, nil
	}

	switch {
	case msg.Type == tea.KeyEsc:
		return true, m.leaveRoom()
	case msg.String() == "s":
		return true, m.sendResult(m.conn.StartGame())
	case msg.String() == "t":
		m.setInputMode(inputTeamNames, "队名1,队名2")
		m.input.SetValue(fmt.Sprintf("%s,%s", m.state.TeamName(1), m.state.TeamName(2)))
		return true, nil
	case msg.String() == "r":
		return true, m.sendResult(m.conn.GetHistory(historyLimit))
	}
	return true, nil
}

func (m *Model) handleGameKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.showHelp {
		if msg.Type == tea.KeyEsc || msg.String() == "h" {
			m.showHelp = false
		}
		return true, nil
	}

	roundEnd := m.state.Phase() == "round_end"
	switch {
	case msg.Type == tea.KeyEsc:
		return true, m.leaveRoom()
	case msg.Type == tea.KeyLeft:
		m.moveCursor(-1)
	case msg.Type == tea.KeyRight:
		m.moveCursor(1)
	case msg.Type == tea.KeyEnter:
		return true, m.playSelected()
	case msg.String() == "c":
		m.showCounter = !m.showCounter
	case msg.String() == "h":
		m.showHelp = true
	case msg.String() == "r":
		return true, m.sendResult(m.conn.GetState())
	case msg.String() == "n" && roundEnd:
		return true, m.sendResult(m.conn.StartNewRound())
	case msg.String() == "g" && roundEnd:
		return true, m.sendResult(m.conn.StartGame())
	}
	return true, nil
}

func (m *Model) moveCursor(delta int) {
	n := len(m.state.Hand)
	if n == 0 {
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

// playSelected 出光标处的牌，本地先校验轮次和跟牌
func (m *Model) playSelected() tea.Cmd {
	if !m.state.IsMyTurn() {
		return m.notify(NotifyError, "还没轮到你出牌", true)
	}
	if !m.state.IsLegal(m.cursor) {
		lead := card.Suit(m.state.Snapshot.LeadSuit)
		return m.notify(NotifyError, fmt.Sprintf("必须跟出 %s", lead), true)
	}
	if err := m.conn.PlayCard(m.cursor); err != nil {
		return m.sendResult(err)
	}
	m.sound.Play(sound.CuePlay)
	return nil
}

func (m *Model) leaveRoom() tea.Cmd {
	err := m.conn.LeaveRoom()
	m.state.Reset()
	m.enterLobby()
	return m.sendResult(err)
}

func isRoomCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseTeamNames 解析 "队名1,队名2"，某一项为空表示不修改
func parseTeamNames(s string) ([2]string, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]string{}, false
	}
	names := [2]string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}
	if names[0] == "" && names[1] == "" {
		return names, false
	}
	return names, true
}
