//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/sirupsen/logrus"
)

const sampleRate = beep.SampleRate(44100)

// Manager 预加载音效并按名播放
type Manager struct {
	dir     string
	mu      sync.RWMutex
	buffers map[Cue]*beep.Buffer
	enabled bool
}

// NewManager 创建音效管理器，dir 为空时使用 DefaultDir
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = DefaultDir
	}
	return &Manager{
		dir:     dir,
		buffers: make(map[Cue]*beep.Buffer),
	}
}

// Init 打开声卡并加载素材
func (m *Manager) Init() error {
	// 缓冲 100ms，延迟较低
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	if err := m.load(); err != nil {
		return err
	}

	m.mu.Lock()
	m.enabled = true
	m.mu.Unlock()
	return nil
}

// load 读取素材目录，目录不存在时没有音效
func (m *Manager) load() error {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".mp3" && ext != ".wav" {
			continue
		}

		buffer, err := decodeFile(filepath.Join(m.dir, name), ext)
		if err != nil {
			logrus.WithError(err).WithField("file", name).Warn("音效加载失败")
			continue
		}
		m.mu.Lock()
		m.buffers[Cue(strings.TrimSuffix(name, filepath.Ext(name)))] = buffer
		m.mu.Unlock()
	}
	return nil
}

// decodeFile 解码并重采样为统一的立体声格式
func decodeFile(path, ext string) (*beep.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported sound format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 4})
	buffer.Append(resampled)
	return buffer, nil
}

// Has 是否加载了该音效
func (m *Manager) Has(cue Cue) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.buffers[cue]
	return ok
}

// Play 播放音效，未初始化或素材缺失时什么都不做
func (m *Manager) Play(cue Cue) {
	m.mu.RLock()
	buffer, ok := m.buffers[cue]
	enabled := m.enabled
	m.mu.RUnlock()
	if !enabled || !ok {
		return
	}
	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

// Close 停止播放
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled {
		speaker.Clear()
		m.enabled = false
	}
}
