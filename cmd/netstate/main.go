// Package main 提供 netstate 命令行入口
//
// 持续检测网络连通性，每次状态变化时输出对应文本；
// 设置 -addr 时同时提供 HTTP/WebSocket 状态服务和 Prometheus 指标。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-netstate"
	"github.com/dep2p/go-netstate/internal/core/connectivity"
	"github.com/dep2p/go-netstate/internal/core/connectivity/netsignal"
	"github.com/dep2p/go-netstate/internal/server"
	"github.com/dep2p/go-netstate/pkg/interfaces"
	"github.com/dep2p/go-netstate/pkg/lib/log"
	"github.com/dep2p/go-netstate/pkg/render"
)

var logger = log.Logger("netstate/cmd")

const (
	startTimeout = 15 * time.Second
	stopTimeout  = 10 * time.Second
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	// 配置加载期间的日志按环境变量输出，加载完成后由 setupLogging 覆盖
	log.SetupFromEnv()

	fs, f := newFlagSet("netstate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if f.version {
		printVersion(stdout)
		return nil
	}

	cfg, err := buildConfig(fs, f, os.Getenv)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "警告: %v\n", err)
		fmt.Fprintln(os.Stderr, "将继续使用控制台输出日志")
	}
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}

	logger.Info("启动 netstate", "version", netstate.Version, "commit", netstate.GitCommit, "polling", cfg.Polling)

	app := fx.New(appOptions(cfg, stdout)...)
	if err := app.Err(); err != nil {
		return fmt.Errorf("构建应用失败: %w", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	if cfg.Addr != "" {
		fmt.Fprintf(os.Stderr, "状态服务: http://%s/api/status\n", cfg.Addr)
	}
	waitForSignal()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	return app.Stop(stopCtx)
}

// buildConfig 合并配置
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（NETSTATE_* 前缀）
//  3. 配置文件
//  4. 默认值
func buildConfig(fs *flag.FlagSet, f *flags, getenv func(string) string) (*Config, error) {
	cfg := defaultConfig()

	if f.config != "" {
		if err := loadConfigFile(f.config, cfg); err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
	}

	applyEnvOverrides(cfg, getenv)
	applyFlags(cfg, fs, f)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// appOptions 组装 Fx 选项
func appOptions(cfg *Config, stdout io.Writer) []fx.Option {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	connCfg := cfg.connectivityConfig().WithOnChange(func(online bool) {
		logger.Info("网络状态变化", "online", online)
	})

	opts := []fx.Option{
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: fxLogger(cfg)}
		}),
		fx.Supply(cfg.watcherConfig(), connCfg),
		fx.Provide(
			func() prometheus.Registerer { return reg },
			func() prometheus.Gatherer { return reg },
		),
		netsignal.Module(),
		connectivity.Module(),
		server.Module(),
		fx.Invoke(func(lc fx.Lifecycle, m *connectivity.Monitor) {
			registerPrinter(lc, m, strategyFor(cfg), stdout)
		}),
	}
	if sc := cfg.serverConfig(); sc != nil {
		opts = append(opts, fx.Supply(sc))
	}
	return opts
}

// fxLogger debug 级别时输出 Fx 事件，否则静默
func fxLogger(cfg *Config) *zap.Logger {
	if level, ok := log.ParseLevel(cfg.LogLevel); ok && level <= log.LevelDebug {
		if l, err := zap.NewDevelopment(); err == nil {
			return l
		}
	}
	return zap.NewNop()
}

// strategyFor 根据配置生成输出策略
func strategyFor(cfg *Config) render.Strategy {
	return render.Compose(
		render.WhenOnline(cfg.OnlineText+"\n"),
		render.WhenOffline(cfg.OfflineText+"\n"),
	)
}

// registerPrinter 启动时输出当前状态，之后每次变化输出一次
func registerPrinter(lc fx.Lifecycle, m *connectivity.Monitor, s render.Strategy, w io.Writer) {
	var changes <-chan interfaces.ConnectivityChange
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			changes = m.Subscribe()
			if err := render.To(w, m, s); err != nil {
				return err
			}
			go func() {
				defer close(done)
				for change := range changes {
					state := interfaces.ConnectivityState{Online: change.Current}
					if err := s.Render(w, state); err != nil {
						logger.Warn("输出状态失败", "error", err)
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			m.Unsubscribe(changes)
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

// setupLogging 设置日志输出与级别
func setupLogging(cfg *Config) (*os.File, error) {
	level, ok := log.ParseLevel(cfg.LogLevel)
	if !ok {
		level = log.LevelInfo
	}

	if cfg.LogFile == "" {
		log.SetOutputWithLevel(os.Stderr, level)
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0750); err != nil {
		log.SetOutputWithLevel(os.Stderr, level)
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.SetOutputWithLevel(os.Stderr, level)
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}

	log.SetOutputWithLevel(file, level)
	return file, nil
}

func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "netstate %s\n", netstate.Version)
	if netstate.GitCommit != "" {
		fmt.Fprintf(w, "  commit: %s\n", netstate.GitCommit)
	}
	if netstate.BuildDate != "" {
		fmt.Fprintf(w, "  built:  %s\n", netstate.BuildDate)
	}
}
