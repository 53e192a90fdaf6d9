package connectivity

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-netstate/pkg/interfaces"
)

// ============================================================================
//                              HTTPProber
// ============================================================================

// HTTPProber 通过 HEAD 请求判断网络是否可达
//
// 只要服务端给出响应（包括 4xx/5xx）即视为可达，
// 超时、DNS 或传输错误视为不可达。不重试、不缓存。
type HTTPProber struct {
	client *http.Client

	// failureLog 限制失败日志频率
	failureLog rate.Sometimes
}

var _ interfaces.ReachabilityProber = (*HTTPProber)(nil)

// NewHTTPProber 创建探测器，client 为 nil 时使用默认传输
func NewHTTPProber(client *http.Client) *HTTPProber {
	if client == nil {
		client = &http.Client{Transport: newProbeTransport()}
	}
	return &HTTPProber{
		client:     client,
		failureLog: rate.Sometimes{First: 1, Interval: time.Minute},
	}
}

func newProbeTransport() *http.Transport {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		logger.Debug("HTTP/2 配置失败，使用 HTTP/1.1", "error", err)
	}
	return transport
}

// Probe 发起一次 HEAD 探测
//
// timeout 不大于零时立即判定为不可达，不发出请求。
func (p *HTTPProber) Probe(ctx context.Context, url string, timeout time.Duration) bool {
	if timeout <= 0 {
		p.logFailure(url, fmt.Errorf("non-positive probe timeout %s", timeout))
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		p.logFailure(url, err)
		return false
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logFailure(url, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode != 0
}

func (p *HTTPProber) logFailure(url string, err error) {
	p.failureLog.Do(func() {
		logger.Debug("可达性探测失败", "url", url, "error", err)
	})
}

// ============================================================================
//                              MockProber (用于测试)
// ============================================================================

// MockProber 可控的模拟探测器
//
// 结果按队列依次返回，队列为空时返回默认结果。
// 设置 Gate 后每次探测会阻塞到 Gate 中取到值为止，用于模拟进行中的请求。
type MockProber struct {
	mu      sync.Mutex
	results []bool
	def     bool
	gate    chan bool

	calls   atomic.Int64
	lastURL atomic.Value
}

var _ interfaces.ReachabilityProber = (*MockProber)(nil)

// NewMockProber 创建模拟探测器
func NewMockProber(def bool) *MockProber {
	return &MockProber{def: def}
}

// Push 追加依次返回的结果
func (p *MockProber) Push(results ...bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, results...)
}

// SetDefault 设置队列为空时的结果
func (p *MockProber) SetDefault(result bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.def = result
}

// Gate 启用阻塞模式，返回用于释放探测并指定结果的通道
func (p *MockProber) Gate() chan<- bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gate == nil {
		p.gate = make(chan bool)
	}
	return p.gate
}

// Probe 返回预设结果
func (p *MockProber) Probe(ctx context.Context, url string, _ time.Duration) bool {
	p.calls.Add(1)
	p.lastURL.Store(url)

	p.mu.Lock()
	gate := p.gate
	var result bool
	if len(p.results) > 0 {
		result = p.results[0]
		p.results = p.results[1:]
	} else {
		result = p.def
	}
	p.mu.Unlock()

	if gate != nil {
		select {
		case result = <-gate:
		case <-ctx.Done():
			return false
		}
	}
	return result
}

// Calls 返回探测次数
func (p *MockProber) Calls() int64 {
	return p.calls.Load()
}

// LastURL 返回最后一次探测的地址
func (p *MockProber) LastURL() string {
	url, _ := p.lastURL.Load().(string)
	return url
}
