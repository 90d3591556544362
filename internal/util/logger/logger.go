package logger

import (
	"io"
	"log/slog"

	"github.com/dep2p/go-nethealth/pkg/lib/log"
)

// New 按配置创建 Logger
func New(w io.Writer, cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		// 具体过滤交给 componentHandler，这里只放行最低级别
		Level: cfg.MinLevel(),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(levelToString(lvl))
				}
			}
			return a
		},
	}

	var inner slog.Handler
	if cfg.Format == FormatJSON {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}
	return slog.New(newComponentHandler(cfg, inner))
}

// Setup 从环境变量装配默认 logger 并安装到 pkg/lib/log
func Setup(w io.Writer) *slog.Logger {
	l := New(w, ConfigFromEnv())
	log.SetDefault(l)
	return l
}
