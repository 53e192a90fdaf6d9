// Package netstate 报告主机当前是否具备网络连通性
//
// 状态由两路信号共同驱动：操作系统的网络变化事件，以及可选的周期性
// HTTP 可达性探测。状态只在真正变化时通知观察者，重复信号被忽略。
//
// # 快速开始
//
//	import "github.com/dep2p/go-netstate"
//
//	d, err := netstate.New(
//	    netstate.WithOnChange(func(online bool) {
//	        fmt.Println("online:", online)
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := d.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
//	if d.IsOnline() {
//	    // ...
//	}
//
// # 轮询
//
// 默认是否轮询取决于平台：能可靠产生网络变化事件的平台（linux、darwin、
// BSD）默认关闭，其余平台默认开启。可以显式开关或覆盖探测参数：
//
//	netstate.WithPolling(false)
//	netstate.WithPollingOverride(netstate.PollingOverride{
//	    URL:      "https://example.com/health",
//	    Interval: 10 * time.Second,
//	})
//
// 探测把任何 HTTP 响应（包括 4xx/5xx）都视为在线，超时或传输错误视为离线。
//
// # 展示
//
// pkg/render 提供基于状态的展示策略，可通过 Detector.Render 使用：
//
//	d.Render(os.Stdout, render.WhenOffline("网络已断开\n"))
package netstate

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "netstate " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}
