package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/config"
	"github.com/palemoky/kaat-color/internal/game/room"
	"github.com/palemoky/kaat-color/internal/server/handler"
	"github.com/palemoky/kaat-color/internal/server/session"
	"github.com/palemoky/kaat-color/internal/server/storage"
)

// redisPingTimeout 启动时检查 Redis 连接的超时
const redisPingTimeout = 5 * time.Second

// Server WebSocket 服务器
type Server struct {
	config         *config.Config
	redis          *redis.Client
	embeddedRedis  *miniredis.Miniredis // 未启用外部 Redis 时的内存实例
	redisStore     *storage.RedisStore
	leaderboard    *storage.LeaderboardManager
	roomManager    *room.RoomManager
	sessionManager *session.SessionManager
	clients        map[string]*Client
	clientsMu      sync.RWMutex
	handler        *handler.Handler
	upgrader       websocket.Upgrader
	httpServer     *http.Server

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	ipFilter       *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	done      chan struct{}
	closeOnce sync.Once
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) (*Server, error) {
	rdb, embedded, err := openRedis(cfg.Redis)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:         cfg,
		redis:          rdb,
		embeddedRedis:  embedded,
		redisStore:     storage.NewRedisStore(rdb),
		leaderboard:    storage.NewLeaderboardManager(rdb),
		clients:        make(map[string]*Client),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		ipFilter:       NewIPFilter(cfg.Security.IPWhitelist, cfg.Security.IPBlacklist),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		done:           make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	s.sessionManager = session.NewSessionManager(s.redisStore)
	s.roomManager = room.NewRoomManager(s.redisStore, room.Options{
		RoomTimeout:    cfg.Game.RoomTimeoutDuration(),
		OfflineTimeout: cfg.Game.OfflineTimeoutDuration(),
		TeamNames:      cfg.Game.DefaultTeamNames(),
	})

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:         s,
		RoomManager:    s.roomManager,
		Leaderboard:    s.leaderboard,
		SessionManager: s.sessionManager,
		GameOptions: session.Options{
			TurnTimeout:    cfg.Game.TurnTimeoutDuration(),
			OfflineTimeout: cfg.Game.OfflineTimeoutDuration(),
		},
	})

	logrus.WithFields(logrus.Fields{
		"conn_rate":       cfg.Security.RateLimit.MaxPerSecond,
		"msg_rate":        cfg.Security.MessageLimit.MaxPerSecond,
		"max_connections": cfg.Server.MaxConnections,
		"turn_timeout":    cfg.Game.TurnTimeoutDuration(),
	}).Info("🔒 安全配置")

	return s, nil
}

// openRedis 连接外部 Redis；未启用时启动内存实例，接口保持一致
func openRedis(cfg config.RedisConfig) (*redis.Client, *miniredis.Miniredis, error) {
	var embedded *miniredis.Miniredis
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if !cfg.Enabled {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("启动内存 Redis 失败: %w", err)
		}
		embedded = mr
		opts = &redis.Options{Addr: mr.Addr()}
		logrus.WithField("addr", mr.Addr()).Info("💾 未启用 Redis，使用内存存储")
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		if embedded != nil {
			embedded.Close()
		}
		return nil, nil, fmt.Errorf("redis 连接失败: %w", err)
	}
	return rdb, embedded, nil
}

// Handler 返回服务器的 HTTP 路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	// 启动监控 goroutine
	go s.monitorStats()

	logrus.WithFields(logrus.Fields{"addr": addr, "cpus": runtime.NumCPU()}).Infof("🚀 服务器启动在 ws://%s/ws", addr)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
