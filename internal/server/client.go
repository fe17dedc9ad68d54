package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096

	// 发送缓冲区大小
	sendBufferSize = 256

	// 超速警告超过该次数后断开
	maxRateWarnings = 5
)

// frame 待写出的 WebSocket 帧
type frame struct {
	kind int // websocket.TextMessage 或 websocket.BinaryMessage
	data []byte
}

// Client 代表一个连接的玩家
type Client struct {
	ID       string // 玩家 ID，重连后改为原玩家 ID
	Name     string // 玩家昵称
	RoomCode string // 当前所在房间
	IP       string // 客户端 IP 地址

	connID  string       // 连接 ID，整个连接期间不变
	format  codec.Format // 回复格式，跟随客户端最近一次发来的帧类型
	release func()       // 释放连接数信号量

	server *Server
	conn   *websocket.Conn
	send   chan frame

	mu     sync.RWMutex
	closed bool
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn, format codec.Format) *Client {
	id := uuid.New().String()
	return &Client{
		ID:     id,
		Name:   GenerateNickname(),
		connID: id,
		format: format,
		server: s,
		conn:   conn,
		send:   make(chan frame, sendBufferSize),
	}
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("player", c.GetName()).Warn("读取错误")
			}
			return
		}

		// 消息速率限制检查
		allowed, warning := c.server.messageLimiter.AllowMessage(c.connID)
		if !allowed {
			logrus.WithFields(logrus.Fields{"player": c.GetName(), "ip": c.IP}).Warn("⚠️ 客户端消息过于频繁")
			c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "消息发送过于频繁"))
			if c.server.messageLimiter.GetWarningCount(c.connID) > maxRateWarnings {
				logrus.WithField("player", c.GetName()).Warn("🚫 客户端因多次超速被断开连接")
				return
			}
			continue
		}
		if warning {
			c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "请求过于频繁，请放慢速度"))
		}

		format := codec.FormatJSON
		if kind == websocket.BinaryMessage {
			format = codec.FormatProtobuf
		}
		c.setFormat(format)

		msg, err := codec.Decode(data, format)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"player": c.GetName(), "format": format}).Debug("消息解析错误")
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(f.kind, f.data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 按客户端格式编码后放入发送队列
func (c *Client) SendMessage(msg *protocol.Message) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	data, err := codec.Encode(msg, c.format)
	if err != nil {
		logrus.WithError(err).WithField("type", msg.Type).Error("消息编码错误")
		return
	}
	f := frame{kind: websocket.TextMessage, data: data}
	if c.format == codec.FormatProtobuf {
		f.kind = websocket.BinaryMessage
	}

	select {
	case c.send <- f:
	default:
		// 发送缓冲区已满，断开慢客户端
		logrus.WithField("player", c.Name).Warn("客户端发送缓冲区已满")
		go c.Close()
	}
}

// handleDisconnect 处理断开连接
func (c *Client) handleDisconnect() {
	c.server.handler.HandleDisconnect(c)
	c.server.unregisterClient(c)
	c.server.messageLimiter.RemoveClient(c.connID)
	c.Close()
	if c.release != nil {
		c.release()
	}
	logrus.WithFields(logrus.Fields{"player": c.GetName(), "id": c.GetID()}).Info("❌ 玩家已断开")
}

// Close 关闭发送队列，WritePump 随后关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) setFormat(format codec.Format) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.format = format
}

// GetID 获取玩家 ID
func (c *Client) GetID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ID
}

// SetID 重连时改用原玩家 ID
func (c *Client) SetID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ID = id
}

// GetName 获取昵称
func (c *Client) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Name
}

// SetName 设置昵称
func (c *Client) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Name = name
}

// SetRoom 设置客户端所在房间
func (c *Client) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RoomCode = code
}

// GetRoom 获取客户端所在房间
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.RoomCode
}
