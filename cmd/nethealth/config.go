package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/dep2p/go-nethealth/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// 环境变量（均使用 NETHEALTH_ 前缀）
const (
	envPrefix           = "NETHEALTH_"
	envResource         = "RESOURCE"
	envListenAddr       = "LISTEN_ADDR"
	envFailureThreshold = "FAILURE_THRESHOLD"
	envStability        = "STABILITY"
)

// buildConfig 按 默认值 < 配置文件 < 环境变量 < 命令行 的顺序合成配置
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg, os.Getenv)
	applyFlagOverrides(cfg)

	// 守护进程总是暴露 HTTP 端点
	cfg.Metrics.Enabled = true

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides 应用环境变量覆盖
//
// 无法解析的值被忽略。
func applyEnvOverrides(cfg *config.Config, getenv func(string) string) {
	if v := getenv(envPrefix + envResource); v != "" {
		cfg.Stability.Resource = v
	}
	if v := getenv(envPrefix + envListenAddr); v != "" {
		cfg.Metrics.ListenAddr = v
	}
	if v := getenv(envPrefix + envFailureThreshold); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Service.FailureThreshold = n
		}
	}
	if v := getenv(envPrefix + envStability); v != "" {
		cfg.Stability.Enabled = parseBool(v)
	}
}

// applyFlagOverrides 应用命令行参数覆盖，只处理显式给出的参数
func applyFlagOverrides(cfg *config.Config) {
	if *resource != "" {
		cfg.Stability.Resource = *resource
	}
	if *listenAddr != "" {
		cfg.Metrics.ListenAddr = *listenAddr
	}
	if *noStability {
		cfg.Stability.Enabled = false
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
