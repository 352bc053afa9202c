// Package config loads server settings from flags with CHESS_* environment
// fallbacks.
package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benbeisheim/chess-engine/internal/errors"
	"github.com/gofiber/fiber/v2/log"
)

type Config struct {
	Addr                string
	AllowOrigins        string
	LogLevel            string
	MatchmakingInterval time.Duration
	WSReadBufferSize    int
	WSWriteBufferSize   int
}

var logLevels = map[string]log.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// Load parses args (without the program name). getenv supplies the defaults,
// usually os.Getenv.
func Load(args []string, getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	interval, err := time.ParseDuration(env("CHESS_MATCHMAKING_INTERVAL", "1s"))
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrInvalidConfig, "CHESS_MATCHMAKING_INTERVAL: %v", err)
	}
	readBuf, err := envInt(env, "CHESS_WS_READ_BUFFER", 1024)
	if err != nil {
		return Config{}, err
	}
	writeBuf, err := envInt(env, "CHESS_WS_WRITE_BUFFER", 1024)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	fs := flag.NewFlagSet("chess-server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", env("CHESS_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", env("CHESS_ALLOW_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	fs.StringVar(&cfg.LogLevel, "log-level", env("CHESS_LOG_LEVEL", "info"), "trace, debug, info, warn or error")
	fs.DurationVar(&cfg.MatchmakingInterval, "matchmaking-interval", interval, "how often queued players are paired")
	fs.IntVar(&cfg.WSReadBufferSize, "ws-read-buffer", readBuf, "websocket read buffer in bytes")
	fs.IntVar(&cfg.WSWriteBufferSize, "ws-write-buffer", writeBuf, "websocket write buffer in bytes")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envInt(env func(string, string) string, key string, def int) (int, error) {
	v, err := strconv.Atoi(env(key, strconv.Itoa(def)))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidConfig, "%s: %v", key, err)
	}
	return v, nil
}

func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return errors.Wrap(errors.ErrInvalidConfig, "empty listen address")
	case c.MatchmakingInterval <= 0:
		return errors.Wrapf(errors.ErrInvalidConfig, "matchmaking interval %s", c.MatchmakingInterval)
	case c.WSReadBufferSize <= 0 || c.WSWriteBufferSize <= 0:
		return errors.Wrapf(errors.ErrInvalidConfig, "websocket buffers %d/%d", c.WSReadBufferSize, c.WSWriteBufferSize)
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		return errors.Wrapf(errors.ErrInvalidConfig, "log level %q", c.LogLevel)
	}
	return nil
}

// Level returns the fiber log level for LogLevel, falling back to info.
func (c Config) Level() log.Level {
	if l, ok := logLevels[c.LogLevel]; ok {
		return l
	}
	return log.LevelInfo
}

// Origins splits AllowOrigins for the websocket origin check.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c Config) String() string {
	return fmt.Sprintf("addr=%s origins=%s log=%s matchmaking=%s", c.Addr, c.AllowOrigins, c.LogLevel, c.MatchmakingInterval)
}
