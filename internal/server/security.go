package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// rateRecordTTL 超过该时长没有请求的 IP 记录会被清理
const rateRecordTTL = 10 * time.Minute

// window 固定窗口计数器
type window struct {
	start time.Time
	count int
}

// hit 计数一次，窗口过期时先清零，返回当前窗口内的次数
func (w *window) hit(now time.Time, size time.Duration) int {
	if now.Sub(w.start) >= size {
		w.start = now
		w.count = 0
	}
	w.count++
	return w.count
}

// --- 连接速率限制 ---

// RateLimiter 按 IP 限制新连接速率，超限后封禁一段时间
type RateLimiter struct {
	maxPerSecond int
	maxPerMinute int
	banDuration  time.Duration

	records map[string]*ipRate
	mu      sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

type ipRate struct {
	second      window
	minute      window
	bannedUntil time.Time
}

// NewRateLimiter 创建速率限制器
func NewRateLimiter(maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	rl := &RateLimiter{
		maxPerSecond: maxPerSecond,
		maxPerMinute: maxPerMinute,
		banDuration:  banDuration,
		records:      make(map[string]*ipRate),
		done:         make(chan struct{}),
	}
	go rl.cleanupLoop(5 * time.Minute)
	return rl
}

// Allow 记录一次请求并返回是否放行
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rec, ok := rl.records[ip]
	if !ok {
		rec = &ipRate{}
		rl.records[ip] = rec
	}
	if now.Before(rec.bannedUntil) {
		return false
	}

	perSecond := rec.second.hit(now, time.Second)
	perMinute := rec.minute.hit(now, time.Minute)
	if perSecond > rl.maxPerSecond || perMinute > rl.maxPerMinute {
		rec.bannedUntil = now.Add(rl.banDuration)
		logrus.WithFields(logrus.Fields{"ip": ip, "ban": rl.banDuration}).Warn("⚠️ IP 请求过于频繁，暂时封禁")
		return false
	}
	return true
}

// IsBanned IP 是否处于封禁中
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rec, ok := rl.records[ip]
	return ok && time.Now().Before(rec.bannedUntil)
}

// Close 停止清理协程
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, rec := range rl.records {
		if now.Sub(rec.minute.start) > rateRecordTTL && now.After(rec.bannedUntil) {
			delete(rl.records, ip)
		}
	}
}

// --- 来源验证 ---

// OriginChecker 校验 WebSocket 握手的 Origin 头
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

// NewOriginChecker 创建来源验证器，"*" 表示全部放行
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool, len(origins))}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			continue
		}
		oc.allowed[strings.ToLower(origin)] = true
	}
	return oc
}

// Check 检查请求来源，没有 Origin 头的本地客户端直接放行
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || oc.allowed[strings.ToLower(origin)]
}

// --- IP 白名单/黑名单 ---

// IPFilter IP 过滤器，白名单非空时只放行白名单
type IPFilter struct {
	whitelist map[string]bool
	blacklist map[string]bool
	mu        sync.RWMutex
}

// NewIPFilter 创建 IP 过滤器
func NewIPFilter(whitelist, blacklist []string) *IPFilter {
	f := &IPFilter{
		whitelist: make(map[string]bool),
		blacklist: make(map[string]bool),
	}
	for _, ip := range whitelist {
		f.AddToWhitelist(ip)
	}
	for _, ip := range blacklist {
		f.AddToBlacklist(ip)
	}
	return f
}

// AddToWhitelist 添加到白名单
func (f *IPFilter) AddToWhitelist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whitelist[strings.TrimSpace(ip)] = true
}

// AddToBlacklist 添加到黑名单
func (f *IPFilter) AddToBlacklist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklist[strings.TrimSpace(ip)] = true
}

// IsAllowed 检查 IP 是否允许
func (f *IPFilter) IsAllowed(ip string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.whitelist) > 0 && !f.whitelist[ip] {
		return false
	}
	return !f.blacklist[ip]
}

// GetClientIP 获取客户端真实 IP，优先使用代理头
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// --- 消息速率限制 ---

// MessageRateLimiter 已连接客户端的消息速率限制
type MessageRateLimiter struct {
	maxPerSecond     int
	warningThreshold int

	limits map[string]*messageRate
	mu     sync.Mutex
}

type messageRate struct {
	window
	warnings int
}

// NewMessageRateLimiter 创建消息速率限制器，超过一半额度开始警告
func NewMessageRateLimiter(maxPerSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		maxPerSecond:     maxPerSecond,
		warningThreshold: maxPerSecond / 2,
		limits:           make(map[string]*messageRate),
	}
}

// AllowMessage 记录一条消息，返回是否放行以及是否需要警告
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed, warning bool) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	rate, ok := ml.limits[clientID]
	if !ok {
		rate = &messageRate{}
		ml.limits[clientID] = rate
	}

	n := rate.hit(time.Now(), time.Second)
	switch {
	case n > ml.maxPerSecond:
		rate.warnings++
		return false, true
	case n > 1 && n > ml.warningThreshold:
		return true, true
	}
	return true, false
}

// GetWarningCount 获取超限次数
func (ml *MessageRateLimiter) GetWarningCount(clientID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	if rate, ok := ml.limits[clientID]; ok {
		return rate.warnings
	}
	return 0
}

// RemoveClient 移除客户端记录
func (ml *MessageRateLimiter) RemoveClient(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.limits, clientID)
}
