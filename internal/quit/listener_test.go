package quit

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitDone(t *testing.T, l *Listener) {
	t.Helper()
	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not exit")
	}
}

func TestQuitKeyRequestsShutdown(t *testing.T) {
	l := Listen(strings.NewReader("abcq"), DefaultKey)
	waitDone(t, l)

	assert.True(t, l.Requested())
	assert.True(t, l.Requested(), "request is sticky")
}

func TestOtherKeysIgnored(t *testing.T) {
	l := Listen(strings.NewReader("hello world\n"), DefaultKey)
	waitDone(t, l)

	assert.False(t, l.Requested())
}

func TestStopsAfterQuitKey(t *testing.T) {
	r := strings.NewReader("qrest")
	l := Listen(r, DefaultKey)
	waitDone(t, l)

	assert.Equal(t, 4, r.Len(), "listener should stop reading after the quit key")
}

func TestRequestedDoesNotBlock(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	l := Listen(pr, DefaultKey)

	start := time.Now()
	assert.False(t, l.Requested())
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	_, err := pw.Write([]byte("q"))
	assert.NoError(t, err)
	waitDone(t, l)
	assert.True(t, l.Requested())
}

func TestClosedStreamStopsQuietly(t *testing.T) {
	pr, pw := io.Pipe()
	l := Listen(pr, DefaultKey)
	_ = pw.CloseWithError(io.ErrClosedPipe)

	waitDone(t, l)
	assert.False(t, l.Requested())
}
