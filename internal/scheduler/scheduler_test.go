package scheduler

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aler9/tsmux/internal/esbuffer"
)

func newTestStream(t *testing.T, pid esbuffer.PID, content []byte) *esbuffer.Stream {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "stream-*")
	require.NoError(t, err)
	_, err = f.Write(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	if pid == esbuffer.VideoPID {
		s, err := esbuffer.NewVideoStream(f.Name(), 4096, 0, 0, 3600)
		require.NoError(t, err)
		return s
	}
	s, err := esbuffer.NewAudioStream(f.Name(), 4096, 0, 0)
	require.NoError(t, err)
	return s
}

func TestNextPATDue(t *testing.T) {
	video := newTestStream(t, esbuffer.VideoPID, []byte{1, 2, 3})
	audio := newTestStream(t, esbuffer.AudioPID, []byte{1, 2, 3})
	defer video.Close()
	defer audio.Close()

	require.Equal(t, PAT, Next(40, 0, 0, 40, 40, video, audio))
	require.Equal(t, PAT, Next(100, 0, 0, 40, 40, video, audio))
}

func TestNextPMTDueAfterPAT(t *testing.T) {
	video := newTestStream(t, esbuffer.VideoPID, nil)
	audio := newTestStream(t, esbuffer.AudioPID, nil)
	defer video.Close()
	defer audio.Close()

	require.Equal(t, PMT, Next(40, 40, 0, 40, 40, video, audio))
}

func TestNextVideoPESWhenAudioAhead(t *testing.T) {
	video := newTestStream(t, esbuffer.VideoPID, []byte{0, 0, 0, 1, 0x67})
	audio := newTestStream(t, esbuffer.AudioPID, nil)
	defer video.Close()
	defer audio.Close()

	video.PTS = 100
	audio.PTS = 200

	require.Equal(t, VideoPES, Next(0, -40, -40, 40, 40, video, audio))
}

func TestNextAudioPESWhenVideoNotBehind(t *testing.T) {
	video := newTestStream(t, esbuffer.VideoPID, []byte{0, 0, 0, 1, 0x67})
	audio := newTestStream(t, esbuffer.AudioPID, []byte{0xFF, 0xF1, 0, 0, 0, 0, 0})
	defer video.Close()
	defer audio.Close()

	video.PTS = 200
	audio.PTS = 100

	require.Equal(t, AudioPES, Next(0, -40, -40, 40, 40, video, audio))
}

func TestNextNoVideoPESWhenAudioFrameInProgress(t *testing.T) {
	video := newTestStream(t, esbuffer.VideoPID, []byte{0, 0, 0, 1, 0x67})
	audio := newTestStream(t, esbuffer.AudioPID, []byte{0xFF, 0xF1, 0, 0, 0, 0, 0, 0xAA, 0xBB, 0xFF, 0xF1})
	defer video.Close()
	defer audio.Close()

	require.NoError(t, audio.EnsureFrame())
	video.PTS = 0
	audio.PTS = 100

	require.Equal(t, AudioPES, Next(0, -40, -40, 40, 40, video, audio))
}

func TestNextEndWhenBothExhausted(t *testing.T) {
	video := newTestStream(t, esbuffer.VideoPID, nil)
	audio := newTestStream(t, esbuffer.AudioPID, nil)
	defer video.Close()
	defer audio.Close()

	require.Equal(t, End, Next(0, -40, -40, 40, 40, video, audio))
}
