package client

import (
	"time"

	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
)

// --- 便捷方法 ---

// CreateRoom 创建房间，name 为空时沿用服务器分配的昵称
func (c *Client) CreateRoom(name string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		PlayerName: name,
	}))
}

// JoinRoom 加入房间
func (c *Client) JoinRoom(roomCode, name string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode:   roomCode,
		PlayerName: name,
	}))
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgLeaveRoom, nil))
}

// UpdateTeamNames 修改队名和玩家名，空串保持不变
func (c *Client) UpdateTeamNames(teamNames [2]string, playerNames [4]string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgUpdateTeamNames, protocol.UpdateTeamNamesPayload{
		TeamNames:   teamNames,
		PlayerNames: playerNames,
	}))
}

// StartGame 开始新游戏
func (c *Client) StartGame() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgStartGame, nil))
}

// StartNewRound 开始下一局
func (c *Client) StartNewRound() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgStartNewRound, nil))
}

// PlayCard 打出手牌中下标为 idx 的牌
func (c *Client) PlayCard(idx int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPlayCard, protocol.PlayCardPayload{
		CardIndex: idx,
	}))
}

// GetState 拉取当前牌局快照
func (c *Client) GetState() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetState, nil))
}

// GetRoomList 获取房间列表
func (c *Client) GetRoomList() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetRoomList, nil))
}

// GetLeaderboard 获取排行榜
func (c *Client) GetLeaderboard(limit int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{
		Limit: limit,
	}))
}

// GetDailyLeaderboard 获取当日排行榜
func (c *Client) GetDailyLeaderboard(limit int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{
		Limit: limit,
		Daily: true,
	}))
}

// GetHistory 获取当前房间最近的对局
func (c *Client) GetHistory(limit int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetHistory, protocol.GetHistoryPayload{Limit: limit}))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}
