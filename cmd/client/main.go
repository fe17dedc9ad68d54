package main

import (
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/palemoky/kaat-color/internal/client"
	"github.com/palemoky/kaat-color/internal/logger"
	"github.com/palemoky/kaat-color/internal/protocol/codec"
	"github.com/palemoky/kaat-color/internal/sound"
	"github.com/palemoky/kaat-color/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:1780", "服务器地址")
	format := flag.String("format", "json", "帧格式: json / protobuf")
	soundDir := flag.String("sounds", sound.DefaultDir, "音效素材目录")
	mute := flag.Bool("mute", false, "关闭音效")
	flag.Parse()

	if err := logger.InitClient(""); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	frameFormat := codec.FormatJSON
	switch *format {
	case "json":
	case "protobuf", "pb":
		frameFormat = codec.FormatProtobuf
	default:
		log.Fatalf("未知的帧格式: %s", *format)
	}

	serverURL := fmt.Sprintf("ws://%s/ws", *serverAddr)
	c := client.NewClient(serverURL, frameFormat)

	var sfx ui.SoundPlayer
	if !*mute {
		sm := sound.NewManager(*soundDir)
		if err := sm.Init(); err != nil {
			logrus.WithError(err).Warn("音效不可用")
		} else {
			defer sm.Close()
			sfx = sm
		}
	}

	p := tea.NewProgram(ui.New(c, sfx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if path := logger.GetLogPath(); path != "" {
			log.Printf("日志文件: %s", path)
		}
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
