package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/config"
)

var (
	logFile *os.File
	logPath string
)

// Init 按配置初始化全局 logrus
func Init(cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(newFormatter(cfg.Format))

	if cfg.File == "" {
		logrus.SetOutput(os.Stdout)
		return nil
	}

	f, err := openRotated(cfg.File, int64(cfg.MaxSizeMB)*1024*1024)
	if err != nil {
		return err
	}
	logFile, logPath = f, cfg.File
	logrus.SetOutput(io.MultiWriter(os.Stdout, f))
	logrus.WithField("file", logPath).Info("📝 日志文件已打开")
	return nil
}

// InitClient 客户端日志：只写文件，避免干扰终端界面
func InitClient(dir string) error {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".kaat-color")
	}

	f, err := openRotated(filepath.Join(dir, "debug.log"), 10*1024*1024)
	if err != nil {
		return err
	}
	logFile, logPath = f, f.Name()

	logrus.SetOutput(f)
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(newFormatter("text"))
	logrus.WithField("file", logPath).Info("Logger initialized")
	return nil
}

func newFormatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	}
	return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"}
}

// openRotated 打开日志文件，超过 maxSize 时先重命名备份
func openRotated(path string, maxSize int64) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if info, err := os.Stat(path); err == nil && maxSize > 0 && info.Size() > maxSize {
		backupPath := fmt.Sprintf("%s.%d", path, time.Now().Unix())
		_ = os.Rename(path, backupPath)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Close 关闭日志文件
func Close() {
	if logFile != nil {
		logrus.SetOutput(os.Stdout)
		_ = logFile.Close()
		logFile = nil
	}
}

// LogPanic 记录 panic 及堆栈
func LogPanic(r any) {
	logrus.WithField("stack", string(debug.Stack())).Errorf("💥 panic: %v", r)
}

// GetLogPath 返回当前日志文件路径
func GetLogPath() string {
	return logPath
}
