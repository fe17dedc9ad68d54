package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/kaat-color/internal/client"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/sound"
	"github.com/palemoky/kaat-color/internal/ui/common"
	"github.com/palemoky/kaat-color/internal/ui/view"
)

const (
	notificationTTL  = 3 * time.Second
	leaderboardLimit = 10
	historyLimit     = 5
)

// Conn 界面用到的客户端操作
type Conn interface {
	Connect() error
	Close()
	Receive() (*protocol.Message, error)
	StartHeartbeat()
	IsConnected() bool
	GetLatency() int64

	CreateRoom(name string) error
	JoinRoom(roomCode, name string) error
	LeaveRoom() error
	UpdateTeamNames(teamNames [2]string, playerNames [4]string) error
	StartGame() error
	StartNewRound() error
	PlayCard(idx int) error
	GetState() error
	GetRoomList() error
	GetLeaderboard(limit int) error
	GetDailyLeaderboard(limit int) error
	GetHistory(limit int) error
}

// SoundPlayer 播放音效
type SoundPlayer interface {
	Play(cue sound.Cue)
}

type silent struct{}

func (silent) Play(sound.Cue) {}

// Model 在线模式主模型
type Model struct {
	conn   Conn
	state  *client.GameState
	phase  Phase
	events chan tea.Msg // 客户端回调转发
	sound  SoundPlayer

	input     textinput.Model
	inputMode inputMode

	selected    int // 大厅菜单
	cursor      int // 手牌光标
	showCounter bool
	showHelp    bool

	notifications map[NotificationType]*Notification
	notifySeq     int
	fatal         string

	width  int
	height int
}

// New 创建模型并接管客户端回调，sfx 为 nil 时不播放音效
func New(c *client.Client, sfx SoundPlayer) *Model {
	m := newModel(c)
	if sfx != nil {
		m.sound = sfx
	}
	c.OnReconnecting = func(attempt, maxTries int) {
		m.forward(ReconnectingMsg{Attempt: attempt, MaxTries: maxTries})
	}
	c.OnReconnect = func() {
		m.forward(ReconnectSuccessMsg{})
	}
	c.OnClose = func() {
		m.forward(ConnectionErrorMsg{Err: client.ErrClosed})
	}
	return m
}

func newModel(conn Conn) *Model {
	ti := textinput.New()
	ti.CharLimit = 40
	ti.Width = 30

	return &Model{
		conn:          conn,
		state:         client.NewGameState(),
		phase:         PhaseConnecting,
		events:        make(chan tea.Msg, 10),
		sound:         silent{},
		input:         ti,
		notifications: make(map[NotificationType]*Notification),
	}
}

// forward 非阻塞投递回调消息
func (m *Model) forward(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

// Init 连接服务器
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.connect(), m.listenForEvents(), textinput.Blink)
}

func (m *Model) connect() tea.Cmd {
	return func() tea.Msg {
		if err := m.conn.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

func (m *Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.conn.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

// Update handles tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case ConnectedMsg:
		m.fatal = ""
		m.conn.StartHeartbeat()
		m.enterLobby()
		cmds = append(cmds, m.listenForMessages())

	case ConnectionErrorMsg:
		m.fatal = fmt.Sprintf("无法连接到服务器: %v", msg.Err)
		m.phase = PhaseConnecting
		m.setInputMode(inputNone, "")

	case ReconnectingMsg:
		m.notify(NotifyReconnecting, fmt.Sprintf("🔄 正在重连 (%d/%d)...", msg.Attempt, msg.MaxTries), false)
		cmds = append(cmds, m.listenForEvents())

	case ReconnectSuccessMsg:
		m.clearNotification(NotifyReconnecting)
		cmds = append(cmds, m.notify(NotifyReconnectSuccess, "✅ 重连成功！", true), m.listenForEvents())

	case ClearNotificationMsg:
		if n, ok := m.notifications[msg.Type]; ok && n.seq == msg.seq {
			delete(m.notifications, msg.Type)
		}

	case ServerMessage:
		cmds = append(cmds, m.handleServerMessage(msg.Msg))
		if m.conn.IsConnected() {
			cmds = append(cmds, m.listenForMessages())
		}

	case tea.KeyMsg:
		handled, cmd := m.handleKey(msg)
		cmds = append(cmds, cmd)
		if handled {
			return m, tea.Batch(cmds...)
		}
	}

	if m.inputMode != inputNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View renders the model.
func (m *Model) View() string {
	var content string
	switch m.phase {
	case PhaseConnecting:
		content = m.connectingView()
	case PhaseLobby:
		content = view.LobbyView(view.LobbyData{
			Width:      m.width,
			PlayerName: m.state.Self.Name,
			Selected:   m.selected,
			Input:      m.input.View(),
		})
	case PhaseRoomList:
		content = view.RoomListView(m.width, m.state.RoomList, m.input.View())
	case PhaseLeaderboard:
		content = view.LeaderboardView(m.width, m.state.Leaderboard, m.state.LeaderboardDaily)
	case PhaseRules:
		content = view.RulesView(m.width, 0)
	case PhaseWaiting:
		input := ""
		if m.inputMode == inputTeamNames {
			input = m.input.View()
		}
		content = view.WaitingView(m.width, m.state, input, "")
	case PhaseGame:
		content = view.GameView(view.GameData{
			Width:       m.width,
			State:       m.state,
			Cursor:      m.cursor,
			ShowCounter: m.showCounter,
			ShowHelp:    m.showHelp,
		})
	}

	return common.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, content, m.statusBar()))
}

func (m *Model) connectingView() string {
	if m.fatal != "" {
		return common.ErrorStyle.Render(m.fatal) + "\n\n按 ESC 退出"
	}
	return "正在连接服务器..."
}

// statusBar 当前最高优先级的通知和延迟
func (m *Model) statusBar() string {
	var parts []string
	if n := m.currentNotification(); n != nil {
		style := common.WarnStyle
		switch n.Type {
		case NotifyReconnectSuccess:
			style = common.SuccessStyle
		case NotifyError:
			style = common.ErrorStyle
		}
		parts = append(parts, style.Render(n.Message))
	}
	if m.phase != PhaseConnecting && m.conn.IsConnected() {
		parts = append(parts, common.HintStyle.Render(fmt.Sprintf("延迟 %dms", m.conn.GetLatency())))
	}
	return strings.Join(parts, "  ")
}

// notify 设置通知，临时通知返回定时清除命令
func (m *Model) notify(t NotificationType, message string, temporary bool) tea.Cmd {
	m.notifySeq++
	seq := m.notifySeq
	m.notifications[t] = &Notification{Message: message, Type: t, Temporary: temporary, seq: seq}
	if !temporary {
		return nil
	}
	return tea.Tick(notificationTTL, func(time.Time) tea.Msg {
		return ClearNotificationMsg{Type: t, seq: seq}
	})
}

func (m *Model) clearNotification(t NotificationType) {
	delete(m.notifications, t)
}

func (m *Model) currentNotification() *Notification {
	for t := NotifyError; t <= NotifyInfo; t++ {
		if n, ok := m.notifications[t]; ok {
			return n
		}
	}
	return nil
}

// setInputMode 切换输入框用途，inputNone 时失焦
func (m *Model) setInputMode(mode inputMode, placeholder string) {
	m.inputMode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	if mode == inputNone {
		m.input.Blur()
		return
	}
	m.input.Focus()
}

func (m *Model) enterLobby() {
	m.phase = PhaseLobby
	m.showHelp = false
	m.setInputMode(inputMenu, "输入选项 (1-5) 或房间号")
}

func (m *Model) enterWaiting() {
	m.phase = PhaseWaiting
	m.showHelp = false
	m.setInputMode(inputNone, "")
}

func (m *Model) enterGame() {
	if m.phase != PhaseGame {
		m.cursor = 0
	}
	m.phase = PhaseGame
	m.setInputMode(inputNone, "")
}

// sendResult 发送失败时提示
func (m *Model) sendResult(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return m.notify(NotifyError, fmt.Sprintf("发送失败: %v", err), true)
}
