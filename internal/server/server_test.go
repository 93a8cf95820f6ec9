package server

import (
	"bytes"
	"context"
	"image"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abaddouh/fakeimg/internal/config"
	"github.com/abaddouh/fakeimg/internal/logging"
	"github.com/abaddouh/fakeimg/internal/synth"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	local, err := synth.NewLocal(config.Default().Local)
	require.NoError(t, err)
	return New(0, 2000, local, logging.Discard())
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRemoteStrategyAgainstServer(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Handler())
	defer srv.Close()

	remote := synth.NewRemote(srv.URL, 3*time.Second, "eeeeee", "000000")
	data, err := remote.Synthesize(context.Background(), 320, 200)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestPlaceholderRoutes(t *testing.T) {
	h := newTestServer(t).Handler()

	tests := []struct {
		target      string
		contentType string
		w, h        int
	}{
		{"/64x32", "image/jpeg", 64, 32},
		{"/50", "image/jpeg", 50, 50},
		{"/64x32.png", "image/png", 64, 32},
		{"/64x32/ff0000", "image/jpeg", 64, 32},
		{"/64x32/f00/fff", "image/jpeg", 64, 32},
		{"/64x32/eeeeee/000000/foo.gif", "image/gif", 64, 32},
		{"/64X32/eee/000/bar", "image/jpeg", 64, 32},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, h, tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

			cfg, _, err := image.DecodeConfig(rec.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.w, cfg.Width)
			assert.Equal(t, tt.h, cfg.Height)
		})
	}
}

func TestPlaceholderColors(t *testing.T) {
	rec := get(t, newTestServer(t).Handler(), "/40x30/0000ff/ffffff/x.png")
	require.Equal(t, http.StatusOK, rec.Code)

	img, _, err := image.Decode(rec.Body)
	require.NoError(t, err)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0xffff}, [3]uint32{r, g, b})
}

func TestPlaceholderBadRequests(t *testing.T) {
	h := newTestServer(t).Handler()

	for _, target := range []string{
		"/0x10",
		"/axb",
		"/10x",
		"/5000x10",
		"/10x10.svg",
		"/10x10/nothex",
		"/10x10/eee/zz",
		"/10x10/eee/000/foo.tiff",
	} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t).Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStartStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	s := newTestServer(t)
	s.port = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("640x480")
	require.NoError(t, err)
	assert.Equal(t, [2]int{640, 480}, [2]int{w, h})

	w, h, err = parseSize("12")
	require.NoError(t, err)
	assert.Equal(t, [2]int{12, 12}, [2]int{w, h})

	_, _, err = parseSize("-1x5")
	assert.Error(t, err)
}
