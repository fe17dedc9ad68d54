package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/config"
	"github.com/palemoky/kaat-color/internal/logger"
	"github.com/palemoky/kaat-color/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	envFile := flag.String("env", ".env", "环境变量文件")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadWithEnvFile(*configPath, *envFile)
	if err != nil {
		logrus.WithError(err).Warn("加载配置文件失败，使用默认配置")
		cfg = config.Default()
	}

	if err := logger.Init(cfg.Log); err != nil {
		logrus.WithError(err).Fatal("初始化日志失败")
	}
	defer logger.Close()

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("创建服务器失败")
	}

	// SIGINT 等待牌局结束后关闭，再次收到信号立即关闭
	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logrus.Info("收到关闭信号，进入维护模式...")
		go func() {
			<-quit
			logrus.Warn("再次收到信号，立即关闭")
			srv.Close()
		}()
		srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
	}()

	// 启动服务器
	logrus.Info("🃏 Kaat Color 服务器启动中...")
	if err := srv.Start(); err != nil {
		logrus.WithError(err).Fatal("服务器启动失败")
	}
	logrus.Info("服务器已关闭")
}
