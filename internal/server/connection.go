package server

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/types"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// 获取真实客户端IP
	clientIP := GetClientIP(r)
	log := logrus.WithField("ip", clientIP)

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		log.Info("🔧 维护模式，拒绝新连接")
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	// 封禁期内的 IP 不占用连接名额
	if s.rateLimiter.IsBanned(clientIP) {
		log.Debug("🚫 IP 封禁中")
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	// 连接数限制检查，连接断开时释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.WithField("max", s.maxConnections).Warn("🚫 达到最大连接数限制")
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}
	release := func() { <-s.semaphore }

	// IP 过滤检查
	if !s.ipFilter.IsAllowed(clientIP) {
		release()
		log.Warn("🚫 IP 被过滤器拒绝")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// 来源验证
	if !s.originChecker.Check(r) {
		release()
		log.WithField("origin", r.Header.Get("Origin")).Warn("🚫 来源验证失败")
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	// 速率限制检查
	if !s.rateLimiter.Allow(clientIP) {
		release()
		log.Warn("🚫 IP 请求过于频繁")
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		release()
		log.WithError(err).Warn("WebSocket 升级失败")
		return
	}

	// 客户端可以在握手时声明首选格式，之后跟随收到的帧类型
	format := codec.FormatJSON
	if r.URL.Query().Get("format") == codec.FormatProtobuf.String() {
		format = codec.FormatProtobuf
	}

	client := NewClient(s, conn, format)
	client.IP = clientIP
	client.release = release
	s.RegisterClient(client.ID, client)

	// 创建会话并下发重连令牌
	s.handler.HandleConnect(client)

	log.WithFields(logrus.Fields{"player": client.Name, "id": client.ID, "format": format}).Info("✅ 玩家已连接")

	// 启动客户端读写协程
	go client.ReadPump()
	go client.WritePump()
}

// healthStatus 健康检查响应
type healthStatus struct {
	Status      string `json:"status"`
	Online      int    `json:"online"`
	Seated      int    `json:"seated"`
	Lobby       int    `json:"lobby"`
	ActiveGames int    `json:"active_games"`
	Maintenance bool   `json:"maintenance"`
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := healthStatus{
		Status:      "ok",
		Online:      s.GetOnlineCount(),
		Maintenance: s.IsMaintenanceMode(),
	}
	status.Seated, status.Lobby = s.seatedCounts()
	if s.roomManager != nil {
		status.ActiveGames = s.roomManager.GetActiveGamesCount()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(status)
}

// unregisterClient 连接断开时注销，已被重连接管的 ID 保持不变
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	id := client.GetID()
	if current, ok := s.clients[id]; ok && current == client {
		delete(s.clients, id)
	}
}

// GetClientByID 按玩家 ID 查找在线连接
func (s *Server) GetClientByID(id string) types.ClientInterface {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	if c, ok := s.clients[id]; ok {
		return c
	}
	return nil
}

// RegisterClient 注册连接，重连时同一 ID 会替换旧连接
func (s *Server) RegisterClient(id string, client types.ClientInterface) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if c, ok := client.(*Client); ok {
		s.clients[id] = c
	}
}

// UnregisterClient 按 ID 注销连接
func (s *Server) UnregisterClient(id string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, id)
}
