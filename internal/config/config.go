package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dkeye/watchparty/internal/logging"
)

type Config struct {
	Mode         string             `mapstructure:"mode"`
	Port         int                `mapstructure:"port"`
	StaticPath   string             `mapstructure:"static_path"`
	Secret       string             `mapstructure:"secret"`
	WebSocket    WebSocketConfig    `mapstructure:"websocket"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Backpressure BackpressureConfig `mapstructure:"backpressure"`
	ICEServers   []ICEServerConfig  `mapstructure:"ice_servers"`
	Events       EventsConfig       `mapstructure:"events"`
	Log          logging.Config     `mapstructure:"log"`
}

type WebSocketConfig struct {
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`
}

// RateLimitConfig allows Messages inbound frames per Interval per connection.
type RateLimitConfig struct {
	Messages int           `mapstructure:"messages"`
	Interval time.Duration `mapstructure:"interval"`
}

type BackpressureConfig struct {
	// Policy is "kick" or "drop".
	Policy string `mapstructure:"policy"`
}

type ICEServerConfig struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type EventsConfig struct {
	// Driver is "none", "log" or "redis".
	Driver  string      `mapstructure:"driver"`
	Channel string      `mapstructure:"channel"`
	Buffer  int         `mapstructure:"buffer"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (CONFIG_ENV defaults to dev).
// A .env file in the working directory is applied to the environment first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg(".env not loaded")
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads one YAML file over the defaults. A missing file is not an
// error. Environment variables override both, with dots in keys mapped to
// underscores (WEBSOCKET_SEND_BUFFER, EVENTS_REDIS_ADDRESS, PORT).
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Str("events", cfg.Events.Driver).
		Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("secret", "change-me")

	v.SetDefault("websocket.read_limit", 32768)
	v.SetDefault("websocket.ping_period", "54s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "5s")
	v.SetDefault("websocket.send_buffer", 64)

	v.SetDefault("rate_limit.messages", 30)
	v.SetDefault("rate_limit.interval", "1s")

	v.SetDefault("backpressure.policy", "kick")

	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})

	v.SetDefault("events.driver", "none")
	v.SetDefault("events.channel", "watchparty:rooms")
	v.SetDefault("events.buffer", 256)
	v.SetDefault("events.redis.address", "localhost:6379")
	v.SetDefault("events.redis.password", "")
	v.SetDefault("events.redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
}

func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.WebSocket.SendBuffer <= 0:
		return fmt.Errorf("websocket.send_buffer must be positive, got %d", c.WebSocket.SendBuffer)
	case c.WebSocket.PingPeriod >= c.WebSocket.PongWait:
		return fmt.Errorf("websocket.ping_period (%s) must be shorter than pong_wait (%s)", c.WebSocket.PingPeriod, c.WebSocket.PongWait)
	case c.RateLimit.Messages <= 0 || c.RateLimit.Interval <= 0:
		return errors.New("rate_limit.messages and rate_limit.interval must be positive")
	}
	switch c.Backpressure.Policy {
	case "kick", "drop":
	default:
		return fmt.Errorf("unknown backpressure.policy %q", c.Backpressure.Policy)
	}
	switch c.Events.Driver {
	case "none", "log", "redis":
	default:
		return fmt.Errorf("unknown events.driver %q", c.Events.Driver)
	}
	return nil
}

// GetICEServers returns the STUN/TURN servers handed to browsers for their
// peer connections.
func (c *Config) GetICEServers() []webrtc.ICEServer {
	servers := make([]webrtc.ICEServer, 0, len(c.ICEServers))
	for _, s := range c.ICEServers {
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		servers = append(servers, srv)
	}
	return servers
}
