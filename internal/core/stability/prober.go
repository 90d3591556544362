package stability

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/miekg/dns"

	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
)

// ============================================================================
//                              HTTPProber
// ============================================================================

// HTTPProber 发起 GET 请求，收到任意响应即为成功
type HTTPProber struct {
	Client *http.Client
}

var _ pkgif.Prober = (*HTTPProber)(nil)

// Probe 实现 Prober
func (p *HTTPProber) Probe(ctx context.Context, resource string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resource, nil)
	if err != nil {
		logger.Debug("构造探测请求失败", "resource", resource, "error", err)
		return false
	}
	// 禁止缓存，保证测到的是网络路径
	req.Header.Set("Cache-Control", "no-cache")

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.Debug("HTTP 探测失败", "resource", resource, "error", err)
		return false
	}
	defer resp.Body.Close()

	// 读完响应体，耗时覆盖完整传输
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		logger.Debug("读取探测响应失败", "resource", resource, "error", err)
		return false
	}
	return true
}

// ============================================================================
//                              TCPProber
// ============================================================================

// TCPProber 建立 TCP 连接即为成功
//
// resource 形如 tcp://host:port。
type TCPProber struct {
	Dialer net.Dialer
}

var _ pkgif.Prober = (*TCPProber)(nil)

// Probe 实现 Prober
func (p *TCPProber) Probe(ctx context.Context, resource string) bool {
	u, err := parseResource(resource)
	if err != nil {
		return false
	}
	conn, err := p.Dialer.DialContext(ctx, "tcp", u.Host)
	if err != nil {
		logger.Debug("TCP 探测失败", "addr", u.Host, "error", err)
		return false
	}
	_ = conn.Close()
	return true
}

// ============================================================================
//                              DNSProber
// ============================================================================

// DNSProber 向指定服务器查询 A 记录，收到 NOERROR 应答即为成功
//
// resource 形如 dns://1.1.1.1:53/example.com，端口缺省为 53。
type DNSProber struct {
	Client *dns.Client
}

var _ pkgif.Prober = (*DNSProber)(nil)

// Probe 实现 Prober
func (p *DNSProber) Probe(ctx context.Context, resource string) bool {
	u, err := parseResource(resource)
	if err != nil {
		return false
	}

	server := u.Host
	if u.Port() == "" {
		server = net.JoinHostPort(u.Hostname(), "53")
	}
	name := strings.TrimPrefix(u.Path, "/")

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeA)

	client := p.Client
	if client == nil {
		client = new(dns.Client)
	}
	resp, _, err := client.ExchangeContext(ctx, msg, server)
	if err != nil {
		logger.Debug("DNS 探测失败", "server", server, "name", name, "error", err)
		return false
	}
	if resp.Rcode != dns.RcodeSuccess {
		logger.Debug("DNS 探测应答异常", "server", server, "name", name, "rcode", dns.RcodeToString[resp.Rcode])
		return false
	}
	return true
}

// ============================================================================
//                              工厂
// ============================================================================

// ProberFor 按 resource 的 scheme 选择探测器
func ProberFor(resource string) (pkgif.Prober, error) {
	u, err := parseResource(resource)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case SchemeHTTP, SchemeHTTPS:
		return &HTTPProber{Client: &http.Client{}}, nil
	case SchemeTCP:
		return &TCPProber{}, nil
	case SchemeDNS:
		return &DNSProber{Client: new(dns.Client)}, nil
	}
	return nil, fmt.Errorf("no prober for scheme %q", u.Scheme)
}
