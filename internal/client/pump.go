package client

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/logger"
	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
)

// readPump 从服务器读取消息，连接断开时决定重连还是关闭
func (c *Client) readPump(conn *websocket.Conn, stop chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		close(stop)

		switch {
		case c.isClosed():
		case c.currentConn() != conn:
			// 已被重连替换的旧连接
		case c.canReconnect():
			go c.tryReconnect()
		default:
			c.shutdown()
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) && c.OnError != nil {
				c.OnError(err)
			}
			return
		}

		format := codec.FormatJSON
		if mt == websocket.BinaryMessage {
			format = codec.FormatProtobuf
		}
		msg, err := codec.Decode(data, format)
		if err != nil {
			logrus.WithError(err).Warn("消息解析错误")
			continue
		}

		c.dispatch(msg)
	}
}

// dispatch 处理连接层消息后交给回调和接收通道
func (c *Client) dispatch(msg *protocol.Message) {
	reconnected := false

	switch msg.Type {
	case protocol.MsgConnected:
		payload, err := codec.ParsePayload[protocol.ConnectedPayload](msg)
		if err != nil {
			break
		}
		// 重连中的新连接会先收到临时身份，重连失败时才采用
		if c.reconnecting.Load() {
			c.mu.Lock()
			c.pending = payload
			c.mu.Unlock()
			break
		}
		c.setIdentity(payload.PlayerID, payload.PlayerName, payload.ReconnectToken)

	case protocol.MsgReconnected:
		if payload, err := codec.ParsePayload[protocol.ReconnectedPayload](msg); err == nil {
			c.setIdentity(payload.PlayerID, payload.PlayerName, "")
		}
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
		c.reconnecting.Store(false)
		c.attempts.Store(0)
		reconnected = true

	case protocol.MsgError:
		if c.reconnecting.Load() {
			if payload, err := codec.ParsePayload[protocol.ErrorPayload](msg); err == nil && payload.Code == protocol.ErrCodeReconnectFailed {
				c.abandonReconnect()
			}
		}

	case protocol.MsgPong:
		if payload, err := codec.ParsePayload[protocol.PongPayload](msg); err == nil {
			latency := time.Now().UnixMilli() - payload.ClientTimestamp
			c.latency.Store(latency)
			if c.OnLatencyUpdate != nil {
				c.OnLatencyUpdate(latency)
			}
		}
	}

	if c.OnMessage != nil {
		c.OnMessage(msg)
	}

	select {
	case c.receive <- msg:
	default:
	}

	// 重连成功回调放在最后，确保消息已经投递
	if reconnected && c.OnReconnect != nil {
		c.OnReconnect()
	}
}

// writePump 向服务器写入消息
func (c *Client) writePump(conn *websocket.Conn, send chan []byte, stop chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = conn.Close()
	}()

	frameType := c.frameType()
	for {
		select {
		case message := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(frameType, message); err != nil {
				logrus.WithError(err).Debug("写入失败")
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-stop:
			return

		case <-c.done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
