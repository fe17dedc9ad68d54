package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/protocol"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
)

const (
	monitorInterval     = 30 * time.Second
	httpShutdownTimeout = 5 * time.Second
)

// monitorStats 定期记录服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			seated, lobby := s.seatedCounts()

			logrus.WithFields(logrus.Fields{
				"online":       s.GetOnlineCount(),
				"seated":       seated,
				"lobby":        lobby,
				"goroutines":   runtime.NumGoroutine(),
				"connections":  fmt.Sprintf("%d/%d", len(s.semaphore), s.maxConnections),
				"active_games": s.roomManager.GetActiveGamesCount(),
				"memory_mb":    fmt.Sprintf("%.2f", float64(m.Alloc)/1024/1024),
			}).Info("📊 [监控]")
		case <-s.done:
			return
		}
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接和新房间，进行中的牌局不受影响
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	// 通知大厅用户
	s.BroadcastToLobby(codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance, "👷🏻‍♂️ 维护模式：停止新的房间创建"))

	logrus.Info("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 进入维护模式，等待进行中的牌局结束后关闭服务器
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.config.Game.ShutdownCheckIntervalDuration())
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		activeGames := s.roomManager.GetActiveGamesCount()
		if activeGames == 0 {
			logrus.Infof("✅ 所有牌局已结束，将在 %ds 后关闭服务器！", s.config.Game.RoomCleanupDelay)
			s.BroadcastToLobby(codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance,
				fmt.Sprintf("🚧 服务器将在 %d 秒后停机维护！", s.config.Game.RoomCleanupDelay)))
			break
		}
		logrus.Infof("⏳ 等待 %d 个牌局结束...", activeGames)
		<-ticker.C
	}

	if activeGames := s.roomManager.GetActiveGamesCount(); activeGames > 0 {
		logrus.Warnf("⚠️ 超时，仍有 %d 个牌局进行中，强制关闭", activeGames)
	}

	s.Shutdown()
}

// Shutdown 等待房间清理延迟后关闭服务器
func (s *Server) Shutdown() {
	time.Sleep(s.config.Game.RoomCleanupDelayDuration())
	s.Close()
}

// Close 立即断开所有连接并释放资源，可重复调用
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				logrus.WithError(err).Warn("HTTP 服务关闭失败")
			}
		}

		// 关闭所有客户端连接
		s.clientsMu.RLock()
		clients := make([]*Client, 0, len(s.clients))
		for _, client := range s.clients {
			clients = append(clients, client)
		}
		s.clientsMu.RUnlock()
		for _, client := range clients {
			client.Close()
		}

		s.rateLimiter.Close()
		s.roomManager.Close()
		s.sessionManager.Close()

		_ = s.redis.Close()
		if s.embeddedRedis != nil {
			s.embeddedRedis.Close()
		}

		logrus.Info("服务器已关闭")
	})
}
