package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/server/storage"
)

const (
	// 重连等待时间
	reconnectTimeout = 2 * time.Minute
	// 会话过期时间
	sessionExpireTime = 10 * time.Minute
	// 会话清理间隔
	sessionCleanupInterval = time.Minute
)

// PlayerSession 玩家会话（用于断线重连）
type PlayerSession struct {
	PlayerID       string
	PlayerName     string
	ReconnectToken string
	RoomCode       string

	DisconnectedAt time.Time // 断线时间
	IsOnline       bool      // 是否在线

	mu sync.RWMutex
}

// Snapshot 返回会话字段的副本
func (s *PlayerSession) Snapshot() (name, roomCode string, online bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.PlayerName, s.RoomCode, s.IsOnline
}

func (s *PlayerSession) toData() *storage.PlayerSessionData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := &storage.PlayerSessionData{
		PlayerID:       s.PlayerID,
		PlayerName:     s.PlayerName,
		ReconnectToken: s.ReconnectToken,
		RoomCode:       s.RoomCode,
		IsOnline:       s.IsOnline,
	}
	if !s.DisconnectedAt.IsZero() {
		data.DisconnectedAt = s.DisconnectedAt.Unix()
	}
	return data
}

// SessionManager 会话管理器，store 不为 nil 时把会话同步到 Redis
type SessionManager struct {
	store    *storage.RedisStore
	sessions map[string]*PlayerSession // playerID -> session
	tokens   map[string]string         // token -> playerID
	mu       sync.RWMutex

	persistMu sync.Mutex // 串行化 Redis 写入，保证最后写入的是最新状态
	done      chan struct{}
	closeOnce sync.Once
}

// NewSessionManager 创建会话管理器
func NewSessionManager(store *storage.RedisStore) *SessionManager {
	sm := &SessionManager{
		store:    store,
		sessions: make(map[string]*PlayerSession),
		tokens:   make(map[string]string),
		done:     make(chan struct{}),
	}

	// 启动会话清理协程
	go sm.cleanupLoop()

	return sm
}

// Close 停止清理协程
func (sm *SessionManager) Close() {
	sm.closeOnce.Do(func() { close(sm.done) })
}

// CreateSession 创建新会话
func (sm *SessionManager) CreateSession(playerID, playerName string) *PlayerSession {
	session := &PlayerSession{
		PlayerID:       playerID,
		PlayerName:     playerName,
		ReconnectToken: generateToken(),
		IsOnline:       true,
	}

	sm.mu.Lock()
	sm.sessions[playerID] = session
	sm.tokens[session.ReconnectToken] = playerID
	sm.mu.Unlock()

	sm.persist(session)
	return session
}

// GetSession 获取会话
func (sm *SessionManager) GetSession(playerID string) *PlayerSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[playerID]
}

// GetSessionByToken 通过 token 获取会话
func (sm *SessionManager) GetSessionByToken(token string) *PlayerSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	playerID, ok := sm.tokens[token]
	if !ok {
		return nil
	}
	return sm.sessions[playerID]
}

// update 修改会话并同步到 Redis
func (sm *SessionManager) update(playerID string, fn func(s *PlayerSession)) {
	sm.mu.RLock()
	session, ok := sm.sessions[playerID]
	sm.mu.RUnlock()
	if !ok {
		return
	}

	session.mu.Lock()
	fn(session)
	session.mu.Unlock()

	sm.persist(session)
}

// SetOffline 设置玩家离线
func (sm *SessionManager) SetOffline(playerID string) {
	sm.update(playerID, func(s *PlayerSession) {
		s.IsOnline = false
		s.DisconnectedAt = time.Now()
	})
}

// SetOnline 设置玩家上线
func (sm *SessionManager) SetOnline(playerID string) {
	sm.update(playerID, func(s *PlayerSession) {
		s.IsOnline = true
		s.DisconnectedAt = time.Time{}
	})
}

// SetRoom 设置玩家所在房间
func (sm *SessionManager) SetRoom(playerID, roomCode string) {
	sm.update(playerID, func(s *PlayerSession) {
		s.RoomCode = roomCode
	})
}

// SetName 修改玩家名
func (sm *SessionManager) SetName(playerID, name string) {
	sm.update(playerID, func(s *PlayerSession) {
		s.PlayerName = name
	})
}

// DeleteSession 删除会话
func (sm *SessionManager) DeleteSession(playerID string) {
	sm.mu.Lock()
	session, ok := sm.sessions[playerID]
	if ok {
		delete(sm.tokens, session.ReconnectToken)
		delete(sm.sessions, playerID)
	}
	sm.mu.Unlock()

	if ok && sm.store != nil {
		go func() {
			sm.persistMu.Lock()
			defer sm.persistMu.Unlock()
			if err := sm.store.DeleteSession(context.Background(), playerID); err != nil {
				logrus.WithError(err).WithField("player", playerID).Warn("删除 Redis 会话失败")
			}
		}()
	}
}

// CanReconnect 检查玩家是否可以重连
// 内存中没有的会话会尝试从 Redis 恢复。
func (sm *SessionManager) CanReconnect(token, playerID string) bool {
	if token == "" {
		return false
	}

	sm.mu.RLock()
	storedPlayerID, ok := sm.tokens[token]
	session := sm.sessions[playerID]
	sm.mu.RUnlock()

	if !ok {
		session = sm.restore(token, playerID)
		if session == nil {
			return false
		}
	} else if storedPlayerID != playerID || session == nil {
		return false
	}

	session.mu.RLock()
	defer session.mu.RUnlock()

	// 检查是否在重连时限内
	if !session.IsOnline && time.Since(session.DisconnectedAt) > reconnectTimeout {
		return false
	}

	return true
}

// restore 从 Redis 载入会话，token 不匹配时返回 nil
func (sm *SessionManager) restore(token, playerID string) *PlayerSession {
	if sm.store == nil {
		return nil
	}
	data, err := sm.store.LoadSession(context.Background(), playerID)
	if err != nil {
		logrus.WithError(err).WithField("player", playerID).Warn("读取 Redis 会话失败")
		return nil
	}
	if data == nil || data.ReconnectToken != token {
		return nil
	}

	session := &PlayerSession{
		PlayerID:       data.PlayerID,
		PlayerName:     data.PlayerName,
		ReconnectToken: data.ReconnectToken,
		RoomCode:       data.RoomCode,
		IsOnline:       data.IsOnline,
	}
	if data.DisconnectedAt > 0 {
		session.DisconnectedAt = time.Unix(data.DisconnectedAt, 0)
	}

	sm.mu.Lock()
	sm.sessions[playerID] = session
	sm.tokens[token] = playerID
	sm.mu.Unlock()

	logrus.WithField("player", playerID).Info("♻️ 从 Redis 恢复会话")
	return session
}

// IsOnline 检查玩家是否在线
func (sm *SessionManager) IsOnline(playerID string) bool {
	sm.mu.RLock()
	session, ok := sm.sessions[playerID]
	sm.mu.RUnlock()

	if !ok {
		return false
	}

	session.mu.RLock()
	defer session.mu.RUnlock()
	return session.IsOnline
}

// persist 异步保存会话，已删除的会话不再写入
func (sm *SessionManager) persist(session *PlayerSession) {
	if sm.store == nil {
		return
	}
	go func() {
		sm.persistMu.Lock()
		defer sm.persistMu.Unlock()
		if sm.GetSession(session.PlayerID) != session {
			return
		}
		data := session.toData()
		if err := sm.store.SaveSession(context.Background(), data); err != nil {
			logrus.WithError(err).WithField("player", data.PlayerID).Warn("保存会话到 Redis 失败")
		}
	}()
}

// cleanupLoop 定期清理过期会话
func (sm *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.cleanup(time.Now())
		case <-sm.done:
			return
		}
	}
}

// cleanup 清理离线超过会话过期时间的会话
func (sm *SessionManager) cleanup(now time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for playerID, session := range sm.sessions {
		session.mu.RLock()
		if !session.IsOnline && now.Sub(session.DisconnectedAt) > sessionExpireTime {
			delete(sm.tokens, session.ReconnectToken)
			delete(sm.sessions, playerID)
		}
		session.mu.RUnlock()
	}
}

// generateToken 生成随机 token
func generateToken() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
