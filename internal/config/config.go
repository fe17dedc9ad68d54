package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 默认值
const (
	defaultHost                  = "0.0.0.0"
	defaultPort                  = 1780
	defaultMaxConnections        = 1000
	defaultRedisAddr             = "localhost:6379"
	defaultTurnTimeout           = 30
	defaultRoomTimeout           = 10
	defaultOfflineTimeout        = 60
	defaultShutdownTimeout       = 30
	defaultShutdownCheckInterval = 5
	defaultRoomCleanupDelay      = 10
	defaultLogLevel              = "info"
	defaultLogFormat             = "text"
	defaultLogMaxSizeMB          = 10
	defaultRateMaxPerSecond      = 10
	defaultRateMaxPerMinute      = 60
	defaultBanDuration           = 60
	defaultMessageMaxPerSecond   = 20
)

// envPrefix 环境变量前缀
const envPrefix = "KAAT_"

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Log      LogConfig      `yaml:"log"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
}

// RedisConfig Redis 配置，关闭时房间目录、重连会话和排行榜只保存在内存
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	TurnTimeout           int      `yaml:"turn_timeout"`            // 出牌超时（秒），负数关闭超时托管
	RoomTimeout           int      `yaml:"room_timeout"`            // 房间空闲超时（分钟）
	OfflineTimeout        int      `yaml:"offline_timeout"`         // 掉线等待重连（秒）
	ShutdownTimeout       int      `yaml:"shutdown_timeout"`        // 优雅关闭最长等待（分钟）
	ShutdownCheckInterval int      `yaml:"shutdown_check_interval"` // 关闭时检查房间的间隔（秒）
	RoomCleanupDelay      int      `yaml:"room_cleanup_delay"`      // 房间结束后延迟关闭（秒）
	TeamNames             []string `yaml:"team_names"`              // 默认队名
}

// TurnTimeoutDuration 返回出牌超时时长，0 表示不托管
func (c *GameConfig) TurnTimeoutDuration() time.Duration {
	if c.TurnTimeout <= 0 {
		return 0
	}
	return time.Duration(c.TurnTimeout) * time.Second
}

// RoomTimeoutDuration 返回房间空闲超时时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// OfflineTimeoutDuration 返回掉线等待时长
func (c *GameConfig) OfflineTimeoutDuration() time.Duration {
	return time.Duration(c.OfflineTimeout) * time.Second
}

// ShutdownTimeoutDuration 返回优雅关闭最长等待时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration 返回关闭检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// RoomCleanupDelayDuration 返回房间清理延迟
func (c *GameConfig) RoomCleanupDelayDuration() time.Duration {
	return time.Duration(c.RoomCleanupDelay) * time.Second
}

// DefaultTeamNames 返回两个默认队名，缺省部分为空
func (c *GameConfig) DefaultTeamNames() [2]string {
	var names [2]string
	copy(names[:], c.TeamNames)
	return names
}

// LogConfig 日志配置
type LogConfig struct {
	Level     string `yaml:"level"`       // debug / info / warn / error
	Format    string `yaml:"format"`      // text / json
	File      string `yaml:"file"`        // 为空时输出到标准输出
	MaxSizeMB int    `yaml:"max_size_mb"` // 超过后启动时轮转
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	IPWhitelist    []string           `yaml:"ip_whitelist"` // 非空时只放行名单内 IP
	IPBlacklist    []string           `yaml:"ip_blacklist"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 秒
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig 单连接消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// Load 加载配置文件，并用环境变量覆盖
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

// LoadWithEnvFile 加载配置文件，环境变量优先，其次是 .env 文件
// envFile 不存在时忽略。
func LoadWithEnvFile(path, envFile string) (*Config, error) {
	fileEnv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
	return load(path, lookup)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg, lookup)
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	var cfg Config
	applyEnv(&cfg, os.LookupEnv)
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.Server.Host, defaultHost)
	setDefault(&cfg.Server.Port, defaultPort)
	setDefault(&cfg.Server.MaxConnections, defaultMaxConnections)
	setDefault(&cfg.Redis.Addr, defaultRedisAddr)
	setDefault(&cfg.Game.TurnTimeout, defaultTurnTimeout)
	setDefault(&cfg.Game.RoomTimeout, defaultRoomTimeout)
	setDefault(&cfg.Game.OfflineTimeout, defaultOfflineTimeout)
	setDefault(&cfg.Game.ShutdownTimeout, defaultShutdownTimeout)
	setDefault(&cfg.Game.ShutdownCheckInterval, defaultShutdownCheckInterval)
	setDefault(&cfg.Game.RoomCleanupDelay, defaultRoomCleanupDelay)
	setDefault(&cfg.Log.Level, defaultLogLevel)
	setDefault(&cfg.Log.Format, defaultLogFormat)
	setDefault(&cfg.Log.MaxSizeMB, defaultLogMaxSizeMB)
	setDefault(&cfg.Security.RateLimit.MaxPerSecond, defaultRateMaxPerSecond)
	setDefault(&cfg.Security.RateLimit.MaxPerMinute, defaultRateMaxPerMinute)
	setDefault(&cfg.Security.RateLimit.BanDuration, defaultBanDuration)
	setDefault(&cfg.Security.MessageLimit.MaxPerSecond, defaultMessageMaxPerSecond)
	if len(cfg.Security.AllowedOrigins) == 0 {
		cfg.Security.AllowedOrigins = []string{"*"}
	}
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	envString(lookup, "SERVER_HOST", &cfg.Server.Host)
	envInt(lookup, "SERVER_PORT", &cfg.Server.Port)
	envInt(lookup, "SERVER_MAX_CONNECTIONS", &cfg.Server.MaxConnections)
	envBool(lookup, "REDIS_ENABLED", &cfg.Redis.Enabled)
	envString(lookup, "REDIS_ADDR", &cfg.Redis.Addr)
	envString(lookup, "REDIS_PASSWORD", &cfg.Redis.Password)
	envInt(lookup, "REDIS_DB", &cfg.Redis.DB)
	envInt(lookup, "GAME_TURN_TIMEOUT", &cfg.Game.TurnTimeout)
	envInt(lookup, "GAME_ROOM_TIMEOUT", &cfg.Game.RoomTimeout)
	envString(lookup, "LOG_LEVEL", &cfg.Log.Level)
	envString(lookup, "LOG_FORMAT", &cfg.Log.Format)
	envString(lookup, "LOG_FILE", &cfg.Log.File)

	if v, ok := lookup(envPrefix + "SECURITY_ALLOWED_ORIGINS"); ok && v != "" {
		cfg.Security.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup(envPrefix + "SECURITY_IP_BLACKLIST"); ok && v != "" {
		cfg.Security.IPBlacklist = splitList(v)
	}
	if v, ok := lookup(envPrefix + "GAME_TEAM_NAMES"); ok && v != "" {
		cfg.Game.TeamNames = splitList(v)
	}
}

func envString(lookup func(string) (string, bool), key string, field *string) {
	if v, ok := lookup(envPrefix + key); ok && v != "" {
		*field = v
	}
}

func envInt(lookup func(string) (string, bool), key string, field *int) {
	if v, ok := lookup(envPrefix + key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*field = n
		}
	}
}

func envBool(lookup func(string) (string, bool), key string, field *bool) {
	if v, ok := lookup(envPrefix + key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*field = b
		}
	}
}

func splitList(v string) []string {
	var items []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
