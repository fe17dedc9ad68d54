package client

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/logger"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
)

// Reconnect 手动发送重连请求
func (c *Client) Reconnect() error {
	playerID, _, token := c.Identity()
	if token == "" || playerID == "" {
		return ErrNoReconnect
	}
	return c.SendMessage(codec.MustNewMessage(protocol.MsgReconnect, protocol.ReconnectPayload{
		Token:    token,
		PlayerID: playerID,
	}))
}

// StartHeartbeat 启动心跳检测
func (c *Client) StartHeartbeat() {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.IsConnected() && !c.IsReconnecting() {
					_ = c.Ping()
				}
			case <-c.done:
				return
			}
		}
	}()
}

// IsReconnecting 是否正在重连
func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}

func (c *Client) canReconnect() bool {
	_, _, token := c.Identity()
	return token != ""
}

// tryReconnect 指数退避重连，成功后由 MsgReconnected 通知 UI
func (c *Client) tryReconnect() {
	if !c.dialing.CompareAndSwap(false, true) {
		return
	}
	c.reconnecting.Store(true)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			c.reconnecting.Store(false)
		}
		c.dialing.Store(false)
	}()

	backoff := c.backoff
	for {
		attempt := int(c.attempts.Add(1))
		if attempt > maxReconnectAttempts {
			break
		}
		if c.OnReconnecting != nil {
			c.OnReconnecting(attempt, maxReconnectAttempts)
		}
		logrus.WithField("attempt", attempt).Info("🔄 尝试重连")

		select {
		case <-time.After(backoff):
		case <-c.done:
			c.reconnecting.Store(false)
			return
		}
		backoff = min(backoff*2, maxReconnectBackoff)

		conn, err := c.dial()
		if err != nil {
			logrus.WithError(err).Debug("重连失败")
			continue
		}

		// 新连接使用新的发送队列，丢弃断线期间积压的消息
		c.mu.Lock()
		c.send = make(chan []byte, sendBufferSize)
		c.mu.Unlock()
		c.start(conn)

		if err := c.Reconnect(); err != nil {
			_ = conn.Close()
			continue
		}
		return
	}

	logrus.Warn("❌ 重连失败，已达最大尝试次数")
	c.reconnecting.Store(false)
	c.shutdown()
}

// abandonReconnect 服务器拒绝重连，改用新连接的临时身份
func (c *Client) abandonReconnect() {
	c.mu.Lock()
	if p := c.pending; p != nil {
		c.playerID, c.playerName, c.reconnectToken = p.PlayerID, p.PlayerName, p.ReconnectToken
		c.pending = nil
	}
	c.mu.Unlock()

	c.reconnecting.Store(false)
	c.attempts.Store(0)
	logrus.Warn("服务器拒绝重连，以新身份继续")
}
