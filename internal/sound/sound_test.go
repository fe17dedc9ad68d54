//go:build !ci

package sound

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWav(t *testing.T, path string, rate beep.SampleRate) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(rate.N(50*time.Millisecond)), format))
}

func TestManager_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWav(t, filepath.Join(dir, "turn.wav"), sampleRate)
	writeWav(t, filepath.Join(dir, "trump.WAV"), 22050)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.mp3"), []byte("not an mp3"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "win.wav"), 0o700))

	m := NewManager(dir)
	require.NoError(t, m.load())

	assert.True(t, m.Has(CueTurn))
	assert.True(t, m.Has(CueTrump), "其他采样率的素材重采样后加载")
	assert.False(t, m.Has(CueBank), "损坏的素材跳过")
	assert.False(t, m.Has(CueWin))
	assert.False(t, m.Has("notes"))
}

func TestManager_MissingDir(t *testing.T) {
	t.Parallel()

	m := NewManager(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, m.load())
	assert.False(t, m.Has(CueTurn))

	// 未初始化时播放和关闭都是空操作
	m.Play(CueTurn)
	m.Close()
}

func TestNewManager_DefaultDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultDir, NewManager("").dir)
}
