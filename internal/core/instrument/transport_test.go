package instrument

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-nethealth/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

type outcome struct {
	key  string
	code int
}

type fakeErrorSink struct {
	mu       sync.Mutex
	outcomes []outcome
}

func (s *fakeErrorSink) HandleError(key string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcome{key, code})
}

type fakeSampleSink struct {
	mu      sync.Mutex
	samples []types.TransferSample
}

func (s *fakeSampleSink) Observe(sample types.TransferSample) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
	return sample.Valid()
}

// roundTripFunc 函数适配器
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// slowReader 每次读取推进 mock 时钟
type slowReader struct {
	r     io.Reader
	clock *clock.Mock
	step  time.Duration
}

func (s *slowReader) Read(p []byte) (int, error) {
	s.clock.Add(s.step)
	return s.r.Read(p)
}

// ============================================================================
//                              测试用例
// ============================================================================

func TestTransport_ReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	errs := &fakeErrorSink{}
	client := &http.Client{Transport: NewTransport(srv.Client().Transport, WithErrorSink(errs))}

	for _, path := range []string{"/ok", "/fail"} {
		resp, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		require.NoError(t, resp.Body.Close())
	}

	assert.Equal(t, []outcome{
		{srv.URL + "/ok", http.StatusOK},
		{srv.URL + "/fail", http.StatusBadGateway},
	}, errs.outcomes)
}

func TestTransport_ReportsSampleOnClose(t *testing.T) {
	mock := clock.NewMock()
	samples := &fakeSampleSink{}
	payload := bytes.Repeat([]byte("x"), 4096)

	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(&slowReader{r: bytes.NewReader(payload), clock: mock, step: 10 * time.Millisecond}),
			Request:    req,
		}, nil
	})

	tr := NewTransport(base, WithSampleSink(samples), WithClock(mock))
	req, err := http.NewRequest(http.MethodGet, "https://example.com/app.js", nil)
	require.NoError(t, err)

	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Len(t, body, len(payload))

	// 关闭之前不上报
	assert.Empty(t, samples.samples)
	mock.Add(time.Hour)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, resp.Body.Close())

	require.Len(t, samples.samples, 1)
	s := samples.samples[0]
	assert.Equal(t, int64(len(payload)), s.TransferBytes)
	assert.Greater(t, s.Duration, time.Duration(0))
	// 计时截止于 EOF，而不是 Close
	assert.Less(t, s.Duration, time.Hour)
	assert.True(t, s.Valid())
}

func TestTransport_EarlyCloseUsesCloseTime(t *testing.T) {
	mock := clock.NewMock()
	samples := &fakeSampleSink{}

	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("partial-body")),
		}, nil
	})

	tr := NewTransport(base, WithSampleSink(samples), WithClock(mock))
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/x", nil)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = resp.Body.Read(buf)
	require.NoError(t, err)

	mock.Add(50 * time.Millisecond)
	require.NoError(t, resp.Body.Close())

	require.Len(t, samples.samples, 1)
	assert.Equal(t, int64(4), samples.samples[0].TransferBytes)
	assert.Equal(t, 50*time.Millisecond, samples.samples[0].Duration)
}

func TestTransport_TransportErrorProducesNothing(t *testing.T) {
	errs := &fakeErrorSink{}
	samples := &fakeSampleSink{}

	boom := errors.New("connection reset")
	base := roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, boom })

	tr := NewTransport(base, WithErrorSink(errs), WithSampleSink(samples))
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/x", nil)

	_, err := tr.RoundTrip(req)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, errs.outcomes)
	assert.Empty(t, samples.samples)
}

func TestTransport_NoBody(t *testing.T) {
	samples := &fakeSampleSink{}
	base := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody}, nil
	})

	tr := NewTransport(base, WithSampleSink(samples))
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/x", nil)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Empty(t, samples.samples)
}

func TestNewTransport_DefaultBase(t *testing.T) {
	tr := NewTransport(nil)
	assert.Equal(t, http.DefaultTransport, tr.base)
}
