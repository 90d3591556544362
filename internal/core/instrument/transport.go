package instrument

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
	"github.com/dep2p/go-nethealth/pkg/lib/log"
	"github.com/dep2p/go-nethealth/pkg/types"
)

var logger = log.Logger("core/instrument")

// ============================================================================
//                              Transport
// ============================================================================

// Transport 插桩 RoundTripper
type Transport struct {
	base    http.RoundTripper
	errors  pkgif.ErrorSink
	samples pkgif.SampleSink
	clock   clock.Clock
}

var _ http.RoundTripper = (*Transport)(nil)

// Option 插桩选项
type Option func(*Transport)

// WithErrorSink 设置请求结果接收者
func WithErrorSink(s pkgif.ErrorSink) Option {
	return func(t *Transport) { t.errors = s }
}

// WithSampleSink 设置传输样本接收者
func WithSampleSink(s pkgif.SampleSink) Option {
	return func(t *Transport) { t.samples = s }
}

// WithClock 设置计时时钟
func WithClock(c clock.Clock) Option {
	return func(t *Transport) {
		if c != nil {
			t.clock = c
		}
	}
}

// NewTransport 创建插桩 RoundTripper，base 为 nil 时使用 http.DefaultTransport
func NewTransport(base http.RoundTripper, opts ...Option) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		base:  base,
		clock: clock.New(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip 实现 http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if t.errors != nil {
		t.errors.HandleError(req.URL.String(), resp.StatusCode)
	}

	if t.samples != nil && resp.Body != nil && resp.Body != http.NoBody {
		resp.Body = &timedBody{
			ReadCloser: resp.Body,
			transport:  t,
			url:        req.URL.Redacted(),
			start:      t.clock.Now(),
		}
	}
	return resp, nil
}

// ============================================================================
//                              timedBody
// ============================================================================

// timedBody 记录响应体读取耗时与字节数
type timedBody struct {
	io.ReadCloser

	transport *Transport
	url       string
	start     time.Time

	mu    sync.Mutex
	bytes int64
	end   time.Time // 读到 EOF 的时间
	once  sync.Once
}

// Read 实现 io.Reader
func (b *timedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)

	b.mu.Lock()
	b.bytes += int64(n)
	if err == io.EOF && b.end.IsZero() {
		b.end = b.transport.clock.Now()
	}
	b.mu.Unlock()

	return n, err
}

// Close 关闭响应体并上报样本
func (b *timedBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.report)
	return err
}

func (b *timedBody) report() {
	b.mu.Lock()
	end := b.end
	if end.IsZero() {
		end = b.transport.clock.Now()
	}
	sample := types.TransferSample{
		Timestamp:     end,
		Duration:      end.Sub(b.start),
		TransferBytes: b.bytes,
	}
	b.mu.Unlock()

	accepted := b.transport.samples.Observe(sample)
	logger.Debug("上报传输样本",
		"url", b.url,
		"bytes", sample.TransferBytes,
		"duration", sample.Duration,
		"accepted", accepted)
}
