package client

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 心跳检测间隔
	heartbeatInterval = 5 * time.Second
	// 最大重连次数
	maxReconnectAttempts = 5
	// 首次重连间隔，之后指数退避
	reconnectInterval = 2 * time.Second
	// 重连间隔上限
	maxReconnectBackoff = 30 * time.Second
	// 握手超时
	handshakeTimeout = 10 * time.Second

	sendBufferSize    = 256
	receiveBufferSize = 256
)

var (
	ErrClosed       = errors.New("connection closed")
	ErrSendFull     = errors.New("send buffer full")
	ErrTimeout      = errors.New("receive timeout")
	ErrNoReconnect  = errors.New("no reconnect token")
	ErrNotConnected = errors.New("not connected")
)

// Client WebSocket 客户端
type Client struct {
	ServerURL string

	// 回调，Connect 之前设置
	OnMessage       func(*protocol.Message) // 消息回调
	OnError         func(error)             // 错误回调
	OnClose         func()                  // 连接彻底关闭回调
	OnReconnecting  func(attempt, max int)  // 开始第 attempt 次重连
	OnReconnect     func()                  // 重连成功回调
	OnLatencyUpdate func(int64)             // 延迟更新回调

	format  codec.Format
	conn    *websocket.Conn
	send    chan []byte
	receive chan *protocol.Message
	done    chan struct{}

	playerID       string
	playerName     string
	reconnectToken string

	latency      atomic.Int64 // 网络延迟（毫秒）
	reconnecting atomic.Bool // 等待 MsgReconnected
	dialing      atomic.Bool // 重连循环进行中
	pending      *protocol.ConnectedPayload // 重连期间收到的临时身份，受 mu 保护
	attempts     atomic.Int32
	backoff      time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewClient 创建客户端，format 决定发送文本帧还是二进制帧
func NewClient(serverURL string, format codec.Format) *Client {
	return &Client{
		ServerURL: serverURL,
		format:    format,
		send:      make(chan []byte, sendBufferSize),
		receive:   make(chan *protocol.Message, receiveBufferSize),
		done:      make(chan struct{}),
		backoff:   reconnectInterval,
	}
}

// Connect 连接服务器
func (c *Client) Connect() error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	c.start(conn)
	return nil
}

func (c *Client) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.Dial(c.ServerURL, nil)
	return conn, err
}

// start 为一条新连接启动读写协程
func (c *Client) start(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	send := c.send
	c.mu.Unlock()

	stop := make(chan struct{})
	go c.readPump(conn, stop)
	go c.writePump(conn, send, stop)
}

func (c *Client) currentConn() *websocket.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// frameType 当前格式对应的 WebSocket 帧类型
func (c *Client) frameType() int {
	if c.format == codec.FormatProtobuf {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Format 发送使用的帧格式
func (c *Client) Format() codec.Format {
	return c.format
}

// SendMessage 发送消息
func (c *Client) SendMessage(msg *protocol.Message) error {
	data, err := codec.Encode(msg, c.format)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	if c.conn == nil {
		return ErrNotConnected
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendFull
	}
}

// Receive 接收消息 (阻塞)
func (c *Client) Receive() (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-c.done:
		return nil, ErrClosed
	}
}

// ReceiveWithTimeout 带超时接收消息
func (c *Client) ReceiveWithTimeout(timeout time.Duration) (*protocol.Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-c.receive:
		return msg, nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-c.done:
		return nil, ErrClosed
	}
}

// Close 关闭连接，不再重连
func (c *Client) Close() {
	c.close()
}

// close 返回是否为首次关闭
func (c *Client) close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		_ = c.conn.Close()
	}
	return true
}

// shutdown 关闭并通知 UI
func (c *Client) shutdown() {
	if c.close() && c.OnClose != nil {
		c.OnClose()
	}
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.conn != nil
}

// Identity 服务器分配的玩家身份
func (c *Client) Identity() (playerID, playerName, token string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID, c.playerName, c.reconnectToken
}

// PlayerID 当前玩家 ID
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// PlayerName 当前玩家名
func (c *Client) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

func (c *Client) setIdentity(playerID, playerName, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
	c.playerName = playerName
	if token != "" {
		c.reconnectToken = token
	}
}

// GetLatency 获取当前延迟（毫秒）
func (c *Client) GetLatency() int64 {
	return c.latency.Load()
}
