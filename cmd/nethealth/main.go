// Package main 提供 nethealth 命令行入口
//
// 守护进程模式运行引擎，通过 HTTP 暴露指标、健康快照和实时事件流。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-nethealth"
	"github.com/dep2p/go-nethealth/internal/util/logger"
	"github.com/dep2p/go-nethealth/pkg/lib/log"
)

var cliLogger = log.Logger("nethealth/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//	命令行参数：运行时覆盖 / 快速测试
//	配置文件（JSON/YAML）：持久化配置
//
// 优先级：命令行 > 环境变量 > 配置文件 > 默认值
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile  = flag.String("config", "", "配置文件路径（.json/.yaml/.yml）")
	resource    = flag.String("resource", "", "主动探测资源（http/https/tcp/dns URL），为空时使用被动模式")
	listenAddr  = flag.String("listen", "", "HTTP 监听地址，覆盖 metrics.listen_addr")
	noStability = flag.Bool("no-stability", false, "禁用稳定性监控")

	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

// shutdownTimeout 停止引擎与 HTTP 服务的最长等待时间
const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Printf("nethealth %s\n", nethealth.Version)
		return nil
	}
	if *showHelp {
		flag.Usage()
		return nil
	}

	logger.Setup(os.Stderr)

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engine, err := nethealth.New(
		nethealth.WithConfig(cfg),
		nethealth.WithRegisterer(reg),
	)
	if err != nil {
		return fmt.Errorf("创建引擎失败: %w", err)
	}

	hub := newHub()
	unsubscribe, err := engine.All(hub.publish)
	if err != nil {
		return fmt.Errorf("订阅事件失败: %w", err)
	}
	defer func() { _ = unsubscribe() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	cliLogger.Info("nethealth 已启动",
		"version", nethealth.Version,
		"monitors", engine.Monitors(),
		"listen", cfg.Metrics.ListenAddr)

	srv := &http.Server{
		Addr:              cfg.Metrics.ListenAddr,
		Handler:           newMux(engine, reg, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		cliLogger.Info("收到退出信号，正在关闭")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		hub.close()
		return multierr.Combine(
			srv.Shutdown(shutdownCtx),
			engine.Stop(shutdownCtx),
		)
	})

	return g.Wait()
}
