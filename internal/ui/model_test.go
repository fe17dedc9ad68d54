package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/kaat-color/internal/game/card"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/protocol/convert"
	"github.com/palemoky/kaat-color/internal/sound"
)

type mockConn struct {
	mock.Mock
}

func (m *mockConn) Connect() error { return m.Called().Error(0) }
func (m *mockConn) Close() { m.Called() }
func (m *mockConn) Receive() (*protocol.Message, error) {
	args := m.Called()
	msg, _ := args.Get(0).(*protocol.Message)
	return msg, args.Error(1)
}
func (m *mockConn) StartHeartbeat() { m.Called() }
func (m *mockConn) IsConnected() bool { return m.Called().Bool(0) }
func (m *mockConn) GetLatency() int64 { return int64(m.Called().Int(0)) }
func (m *mockConn) LeaveRoom() error { return m.Called().Error(0) }
func (m *mockConn) StartGame() error { return m.Called().Error(0) }
func (m *mockConn) GetState() error { return m.Called().Error(0) }
func (m *mockConn) GetRoomList() error { return m.Called().Error(0) }
func (m *mockConn) StartNewRound() error {
	return m.Called().Error(0)
}
func (m *mockConn) CreateRoom(name string) error { return m.Called(name).Error(0) }
func (m *mockConn) JoinRoom(roomCode, name string) error {
	return m.Called(roomCode, name).Error(0)
}
func (m *mockConn) UpdateTeamNames(teamNames [2]string, playerNames [4]string) error {
	return m.Called(teamNames, playerNames).Error(0)
}
func (m *mockConn) PlayCard(idx int) error { return m.Called(idx).Error(0) }
func (m *mockConn) GetLeaderboard(limit int) error { return m.Called(limit).Error(0) }
func (m *mockConn) GetDailyLeaderboard(limit int) error {
	return m.Called(limit).Error(0)
}
func (m *mockConn) GetHistory(limit int) error { return m.Called(limit).Error(0) }

// newTestModel 返回已连接、位于大厅的模型
func newTestModel(t *testing.T, setup func(c *mockConn)) (*Model, *mockConn) {
	t.Helper()
	c := &mockConn{}
	if setup != nil {
		setup(c)
	}
	c.On("StartHeartbeat").Maybe()
	c.On("IsConnected").Return(false).Maybe()
	c.On("GetLatency").Return(0).Maybe()
	c.On("Close").Maybe()

	m := newModel(c)
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 60})
	m.Update(ConnectedMsg{})
	t.Cleanup(func() { c.AssertExpectations(t) })
	return m, c
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func serve(m *Model, msgType protocol.MessageType, payload any) tea.Cmd {
	_, cmd := m.Update(ServerMessage{Msg: codec.MustNewMessage(msgType, payload)})
	return cmd
}

func typeAndEnter(m *Model, s string) {
	m.Update(keyRunes(s))
	m.Update(key(tea.KeyEnter))
}

func players() []protocol.PlayerInfo {
	return []protocol.PlayerInfo{
		{ID: "p0", Name: "Ana", Seat: 0, Team: 1, Online: true},
		{ID: "p1", Name: "Ben", Seat: 1, Team: 2, Online: true},
		{ID: "p2", Name: "Cid", Seat: 2, Team: 1, Online: true},
		{ID: "p3", Name: "Dee", Seat: 3, Team: 2, Online: true},
	}
}

// snapshot 座位 0 的视角，座位 3 已领出黑桃
func snapshot(phase string, currentSeat int) *protocol.GameStateDTO {
	return &protocol.GameStateDTO{
		Phase:       phase,
		Seat:        0,
		Players:     players(),
		Hand:        convert.CardsToInfos(card.MustParse("AS", "KS", "2H")),
		LegalMoves:  []int{0, 1},
		CurrentSeat: currentSeat,
		Dealer:      2,
		TrumpSuit:   -1,
		LeadSuit:    int(card.Spade),
		CurrentTrick: []protocol.TrickPlayInfo{
			{Seat: 3, Card: convert.CardToInfo(card.MustParse("9S")[0])},
		},
		LastTrickWinner: -1,
		ConsecutiveSeat: -1,
	}
}

// enterGame 创建房间并开始游戏
func enterGame(m *Model, phase string, currentSeat int) {
	serve(m, protocol.MsgConnected, protocol.ConnectedPayload{PlayerID: "p0", PlayerName: "Ana"})
	serve(m, protocol.MsgRoomCreated, protocol.RoomCreatedPayload{RoomCode: "123456", Player: players()[0]})
	serve(m, protocol.MsgGameStarted, protocol.GameStartedPayload{Players: players(), TeamNames: [2]string{"Red", "Blue"}, Dealer: 2})
	serve(m, protocol.MsgGameState, snapshot(phase, currentSeat))
}

func TestModel_Connect(t *testing.T) {
	t.Parallel()

	m, c := newTestModel(t, nil)
	assert.Equal(t, PhaseLobby, m.phase)
	assert.Equal(t, inputMenu, m.inputMode)
	c.AssertCalled(t, "StartHeartbeat")

	m.Update(ConnectionErrorMsg{Err: errors.New("refused")})
	assert.Equal(t, PhaseConnecting, m.phase)
	assert.Contains(t, m.View(), "refused")

	_, cmd := m.Update(key(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	c.AssertCalled(t, "Close")
}

func TestModel_Init(t *testing.T) {
	t.Parallel()

	c := &mockConn{}
	c.On("Connect").Return(errors.New("dial failed")).Once()
	m := newModel(c)
	assert.NotNil(t, m.Init())

	msg := m.connect()()
	assert.Equal(t, ConnectionErrorMsg{Err: errors.New("dial failed")}, msg)
	c.AssertExpectations(t)
}

func TestModel_LobbyMenu(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		setup  func(c *mockConn)
		phase  Phase
		notify bool
	}{
		{"create room", "1", func(c *mockConn) { c.On("CreateRoom", "").Return(nil).Once() }, PhaseLobby, false},
		{"room list", "3", func(c *mockConn) { c.On("GetRoomList").Return(nil).Once() }, PhaseLobby, false},
		{"leaderboard", "4", func(c *mockConn) { c.On("GetLeaderboard", leaderboardLimit).Return(nil).Once() }, PhaseLobby, false},
		{"rules", "5", nil, PhaseRules, false},
		{"room code", "123456", func(c *mockConn) { c.On("JoinRoom", "123456", "").Return(nil).Once() }, PhaseLobby, false},
		{"invalid option", "9", nil, PhaseLobby, true},
		{"send failure", "1", func(c *mockConn) { c.On("CreateRoom", "").Return(errors.New("closed")).Once() }, PhaseLobby, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, _ := newTestModel(t, tt.setup)
			typeAndEnter(m, tt.input)

			assert.Equal(t, tt.phase, m.phase)
			_, hasError := m.notifications[NotifyError]
			assert.Equal(t, tt.notify, hasError)
			assert.Empty(t, m.input.Value())
		})
	}
}

func TestModel_LobbyNavigation(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, func(c *mockConn) {
		c.On("JoinRoom", "654321", "").Return(nil).Once()
	})

	m.Update(key(tea.KeyUp))
	assert.Equal(t, menuRules, m.selected)
	m.Update(key(tea.KeyDown))
	m.Update(key(tea.KeyDown))
	assert.Equal(t, menuJoinRoom, m.selected)

	m.Update(key(tea.KeyEnter))
	assert.Equal(t, inputRoomCode, m.inputMode)

	typeAndEnter(m, "12")
	assert.Contains(t, m.notifications[NotifyError].Message, "6 位")

	typeAndEnter(m, "654321")

	m.Update(key(tea.KeyEsc))
	assert.Equal(t, inputMenu, m.inputMode)
}

func TestModel_RoomList(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, func(c *mockConn) {
		c.On("GetRoomList").Return(nil).Once()
		c.On("JoinRoom", "222222", "").Return(nil).Once()
	})

	serve(m, protocol.MsgRoomListResult, protocol.RoomListResultPayload{Rooms: []protocol.RoomListItem{
		{RoomCode: "111111", PlayerCount: 1, MaxPlayers: 4},
		{RoomCode: "222222", PlayerCount: 3, MaxPlayers: 4},
	}})
	assert.Equal(t, PhaseRoomList, m.phase)
	assert.Contains(t, m.View(), "222222")

	m.Update(keyRunes("r"))
	assert.Empty(t, m.input.Value())

	typeAndEnter(m, "7")
	assert.Contains(t, m.notifications[NotifyError].Message, "序号")

	typeAndEnter(m, "2")

	m.Update(key(tea.KeyEsc))
	assert.Equal(t, PhaseLobby, m.phase)
}

func TestModel_LeaderboardAndRules(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, func(c *mockConn) {
		c.On("GetDailyLeaderboard", leaderboardLimit).Return(nil).Once()
		c.On("GetLeaderboard", leaderboardLimit).Return(nil).Once()
	})
	serve(m, protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{Entries: []protocol.LeaderboardEntry{
		{Rank: 1, TeamName: "Lions", RoundWins: 3, Rounds: 4, WinRate: 75},
	}})
	assert.Equal(t, PhaseLeaderboard, m.phase)
	assert.Contains(t, m.View(), "Lions")
	assert.Contains(t, m.View(), "总排行榜")

	m.Update(keyRunes("d"))
	serve(m, protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{Daily: true})
	assert.Contains(t, m.View(), "今日排行榜")
	m.Update(keyRunes("d"))

	m.Update(key(tea.KeyEsc))
	assert.Equal(t, PhaseLobby, m.phase)

	typeAndEnter(m, "5")
	assert.Equal(t, PhaseRules, m.phase)
	assert.Contains(t, m.View(), "【主牌】")
	m.Update(key(tea.KeyEsc))
	assert.Equal(t, PhaseLobby, m.phase)
}

func TestModel_WaitingRoom(t *testing.T) {
	t.Parallel()

	m, c := newTestModel(t, func(c *mockConn) {
		c.On("StartGame").Return(nil).Once()
		c.On("UpdateTeamNames", [2]string{"Red", "Blue"}, [4]string{}).Return(nil).Once()
		c.On("LeaveRoom").Return(nil).Once()
		c.On("GetHistory", historyLimit).Return(nil).Once()
	})

	serve(m, protocol.MsgConnected, protocol.ConnectedPayload{PlayerID: "p0", PlayerName: "Ana"})
	serve(m, protocol.MsgRoomCreated, protocol.RoomCreatedPayload{RoomCode: "123456", Player: players()[0]})
	assert.Equal(t, PhaseWaiting, m.phase)
	assert.Equal(t, inputNone, m.inputMode)
	assert.Contains(t, m.View(), "123456")

	m.Update(keyRunes("r"))
	serve(m, protocol.MsgHistoryResult, protocol.HistoryResultPayload{RoomCode: "123456", TeamRanks: [2]int64{-1, -1}})
	assert.Equal(t, PhaseWaiting, m.phase)
	assert.Contains(t, m.View(), "暂无记录")

	m.Update(keyRunes("s"))

	m.Update(keyRunes("t"))
	assert.Equal(t, inputTeamNames, m.inputMode)
	assert.Equal(t, "Team 1,Team 2", m.input.Value())
	m.input.SetValue("Red, Blue")
	m.Update(key(tea.KeyEnter))
	assert.Equal(t, inputNone, m.inputMode)

	m.Update(keyRunes("t"))
	m.input.SetValue("only-one")
	m.Update(key(tea.KeyEnter))
	assert.Contains(t, m.notifications[NotifyError].Message, "格式")

	m.Update(keyRunes("t"))
	m.Update(key(tea.KeyEsc))
	assert.Equal(t, PhaseWaiting, m.phase)

	m.Update(key(tea.KeyEsc))
	assert.Equal(t, PhaseLobby, m.phase)
	assert.False(t, m.state.InRoom())
	c.AssertNumberOfCalls(t, "UpdateTeamNames", 1)
}

func TestModel_PlayCard(t *testing.T) {
	t.Parallel()

	m, c := newTestModel(t, func(c *mockConn) {
		c.On("PlayCard", 1).Return(nil).Once()
	})
	enterGame(m, "playing", 0)

	assert.Equal(t, PhaseGame, m.phase)
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.View(), "轮到你出牌")

	m.Update(key(tea.KeyRight))
	m.Update(key(tea.KeyRight))
	assert.Equal(t, 2, m.cursor)

	// 2♥ 不能出：有黑桃必须跟
	m.Update(key(tea.KeyEnter))
	assert.Contains(t, m.notifications[NotifyError].Message, "♠")
	c.AssertNotCalled(t, "PlayCard", 2)

	m.Update(key(tea.KeyRight))
	assert.Equal(t, 0, m.cursor)
	m.Update(key(tea.KeyLeft))
	m.Update(key(tea.KeyLeft))
	assert.Equal(t, 1, m.cursor)
	m.Update(key(tea.KeyEnter))
}

func TestModel_NotMyTurn(t *testing.T) {
	t.Parallel()

	m, c := newTestModel(t, nil)
	enterGame(m, "playing", 1)

	m.Update(key(tea.KeyEnter))
	assert.Contains(t, m.notifications[NotifyError].Message, "还没轮到你")
	c.AssertNotCalled(t, "PlayCard", mock.Anything)

	// 局中 N、G 无效
	m.Update(keyRunes("n"))
	m.Update(keyRunes("g"))
	c.AssertNotCalled(t, "StartNewRound")
	c.AssertNotCalled(t, "StartGame")
}

func TestModel_CursorFollowsLegalMoves(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, nil)
	enterGame(m, "playing", 1)
	m.Update(key(tea.KeyLeft))
	assert.Equal(t, 2, m.cursor)

	// 轮到自己时光标从不可出的牌移到第一张可出的牌
	serve(m, protocol.MsgGameState, snapshot("playing", 0))
	assert.Equal(t, 0, m.cursor)

	short := snapshot("playing", 1)
	short.Hand = short.Hand[:1]
	short.LegalMoves = []int{0}
	m.cursor = 2
	serve(m, protocol.MsgGameState, short)
	assert.Equal(t, 0, m.cursor)
}

func TestModel_GameToggles(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, func(c *mockConn) {
		c.On("GetState").Return(nil).Once()
	})
	enterGame(m, "playing", 1)

	m.Update(keyRunes("c"))
	assert.True(t, m.showCounter)
	assert.Contains(t, m.View(), "外面还有")

	m.Update(keyRunes("h"))
	assert.True(t, m.showHelp)
	m.Update(key(tea.KeyRight))
	assert.Equal(t, 0, m.cursor)
	m.Update(key(tea.KeyEsc))
	assert.False(t, m.showHelp)
	assert.Equal(t, PhaseGame, m.phase)

	m.Update(keyRunes("r"))
}

func TestModel_RoundEnd(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, func(c *mockConn) {
		c.On("StartNewRound").Return(nil).Once()
		c.On("StartGame").Return(nil).Once()
	})
	enterGame(m, "playing", 0)

	serve(m, protocol.MsgRoundResult, protocol.RoundResultPayload{
		TeamTricks: [2]int{8, 5}, Winner: 1, WinnerName: "Red", TrumpMakingTeam: 1, NextDealer: 3,
	})
	end := snapshot("round_end", 0)
	end.Hand = nil
	end.LegalMoves = nil
	serve(m, protocol.MsgGameState, end)

	assert.Equal(t, PhaseGame, m.phase)
	assert.Contains(t, m.View(), "Red 赢得本局")

	m.Update(keyRunes("n"))
	m.Update(keyRunes("g"))

	serve(m, protocol.MsgNewRoundStarted, protocol.NewRoundStartedPayload{Dealer: 3, RoundNumber: 2})
	assert.Equal(t, PhaseGame, m.phase)
	assert.Nil(t, m.state.LastResult)
}

func TestModel_PlayerLeftAbortsGame(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, nil)
	enterGame(m, "playing", 1)

	cmd := serve(m, protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{PlayerID: "p3", PlayerName: "Dee"})
	assert.NotNil(t, cmd)
	assert.Equal(t, PhaseWaiting, m.phase)
	assert.Nil(t, m.state.Snapshot)
	assert.Contains(t, m.notifications[NotifyInfo].Message, "牌局终止")
}

func TestModel_LeaveGame(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, func(c *mockConn) {
		c.On("LeaveRoom").Return(nil).Once()
	})
	enterGame(m, "playing", 1)

	m.Update(key(tea.KeyEsc))
	assert.Equal(t, PhaseLobby, m.phase)
	assert.False(t, m.state.InRoom())
}

func TestModel_ServerErrors(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, nil)

	serve(m, protocol.MsgError, protocol.ErrorPayload{Code: protocol.ErrCodeServerMaintenance, Message: "服务器维护中"})
	n := m.notifications[NotifyMaintenance]
	require.NotNil(t, n)
	assert.False(t, n.Temporary)

	serve(m, protocol.MsgError, protocol.ErrorPayload{Code: protocol.ErrCodeRateLimit, Message: "太快了"})
	assert.True(t, m.notifications[NotifyRateLimit].Temporary)

	cmd := serve(m, protocol.MsgError, protocol.ErrorPayload{Code: protocol.ErrCodeNotYourTurn, Message: "还没轮到你"})
	assert.NotNil(t, cmd)
	first := m.notifications[NotifyError]
	require.NotNil(t, first)
	assert.Equal(t, first, m.currentNotification())
	assert.Contains(t, m.View(), "还没轮到你")

	serve(m, protocol.MsgError, protocol.ErrorPayload{Code: protocol.ErrCodeIllegalMove, Message: "必须跟牌"})
	second := m.notifications[NotifyError]

	// 旧的清除消息不影响新通知
	m.Update(ClearNotificationMsg{Type: NotifyError, seq: first.seq})
	assert.Equal(t, second, m.notifications[NotifyError])
	m.Update(ClearNotificationMsg{Type: NotifyError, seq: second.seq})
	assert.NotContains(t, m.notifications, NotifyError)
}

func TestModel_ReconnectFlow(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, nil)

	m.Update(ReconnectingMsg{Attempt: 2, MaxTries: 5})
	assert.Contains(t, m.notifications[NotifyReconnecting].Message, "2/5")

	m.Update(ReconnectSuccessMsg{})
	assert.NotContains(t, m.notifications, NotifyReconnecting)
	assert.True(t, m.notifications[NotifyReconnectSuccess].Temporary)

	serve(m, protocol.MsgReconnected, protocol.ReconnectedPayload{
		PlayerID: "p0", PlayerName: "Ana", RoomCode: "123456", GameState: snapshot("playing", 0),
	})
	assert.Equal(t, PhaseGame, m.phase)
	assert.Equal(t, "123456", m.state.RoomCode)

	serve(m, protocol.MsgError, protocol.ErrorPayload{Code: protocol.ErrCodeReconnectFailed, Message: "重连失败"})
	assert.Equal(t, PhaseLobby, m.phase)
	assert.False(t, m.state.InRoom())
}

func TestModel_ReconnectedToLobby(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, nil)
	serve(m, protocol.MsgReconnected, protocol.ReconnectedPayload{PlayerID: "p0", PlayerName: "Ana"})
	assert.Equal(t, PhaseLobby, m.phase)
}

func TestModel_InvalidServerMessage(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(ServerMessage{Msg: &protocol.Message{Type: protocol.MsgRoomCreated, Payload: []byte(`"oops"`)}})
	assert.Nil(t, cmd)
	assert.Equal(t, PhaseLobby, m.phase)
}

func TestModel_CtrlC(t *testing.T) {
	t.Parallel()

	m, c := newTestModel(t, nil)
	enterGame(m, "playing", 0)

	_, cmd := m.Update(key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	c.AssertCalled(t, "Close")
}

type recordSound struct {
	cues []sound.Cue
}

func (r *recordSound) Play(cue sound.Cue) { r.cues = append(r.cues, cue) }

func TestModel_SoundCues(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, func(c *mockConn) {
		c.On("PlayCard", 0).Return(nil).Once()
	})
	rec := &recordSound{}
	m.sound = rec

	enterGame(m, "playing", 1)
	assert.Equal(t, []sound.Cue{sound.CueDeal}, rec.cues)

	serve(m, protocol.MsgGameState, snapshot("playing", 0))
	serve(m, protocol.MsgGameState, snapshot("playing", 0))
	m.Update(key(tea.KeyEnter))
	serve(m, protocol.MsgTrumpDiscovered, protocol.TrumpDiscoveredPayload{Suit: int(card.Heart), Symbol: "♥", Seat: 1, Team: 2})
	serve(m, protocol.MsgTricksBanked, protocol.TricksBankedPayload{Seat: 1, Count: 2})
	serve(m, protocol.MsgRoundResult, protocol.RoundResultPayload{Winner: 2, WinnerName: "Blue"})

	assert.Equal(t, []sound.Cue{
		sound.CueDeal, sound.CueTurn, sound.CuePlay, sound.CueTrump, sound.CueBank, sound.CueLose,
	}, rec.cues)
}

func TestParseTeamNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  [2]string
		ok    bool
	}{
		{"Red,Blue", [2]string{"Red", "Blue"}, true},
		{" Red , ", [2]string{"Red", ""}, true},
		{",", [2]string{"", ""}, false},
		{"Red", [2]string{}, false},
		{"a,b,c", [2]string{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, ok := parseTeamNames(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsRoomCode(t *testing.T) {
	t.Parallel()

	assert.True(t, isRoomCode("012345"))
	assert.False(t, isRoomCode("12345"))
	assert.False(t, isRoomCode("12345a"))
	assert.False(t, isRoomCode(""))
}
