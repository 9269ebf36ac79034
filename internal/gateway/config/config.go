package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	Env        string
	ScenePath  string
	WatchScene bool

	FrameRate            int
	SenderID             uint8
	LightIntensityFactor float32
	CacheEntries         int

	Update UpdateConfig
	Log    LogConfig
}

type UpdateMode string

const (
	// UpdateListen serves /updates and lets the tracer connect.
	UpdateListen UpdateMode = "listen"
	// UpdateDial connects out to the tracer's update endpoint.
	UpdateDial UpdateMode = "dial"
)

type UpdateConfig struct {
	Mode         UpdateMode
	URL          string
	Timeout      time.Duration
	StrictLength bool
	Backlog      int
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads .env, flags and the environment, in that order of precedence
// from lowest to highest.
func Load() (*Config, error) {
	return load(flag.CommandLine, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) (*Config, error) {
	_ = godotenv.Load()

	port := fs.String("port", ":5555", "server port")
	scenePath := fs.String("scene", "", "scene description file (empty serves the demo scene)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := &Config{
		Port:      *port,
		Env:       env,
		ScenePath: firstNonEmpty(strings.TrimSpace(os.Getenv("SCENE_PATH")), *scenePath),
		Log: LogConfig{
			Level: firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), defaultLogLevel(env)),
			File:  strings.TrimSpace(os.Getenv("LOG_FILE")),
		},
	}

	var err error
	if cfg.WatchScene, err = envBool("SCENE_WATCH", cfg.ScenePath != ""); err != nil {
		return nil, err
	}
	if cfg.FrameRate, err = envInt("FRAME_RATE", 60, 1, 255); err != nil {
		return nil, err
	}
	sender, err := envInt("SENDER_ID", 1, 0, 255)
	if err != nil {
		return nil, err
	}
	cfg.SenderID = uint8(sender)
	if cfg.LightIntensityFactor, err = envFloat("LIGHT_INTENSITY_FACTOR", 1); err != nil {
		return nil, err
	}
	if cfg.CacheEntries, err = envInt("REPLY_CACHE_ENTRIES", 16, 0, 1<<16); err != nil {
		return nil, err
	}
	if cfg.Update, err = loadUpdateConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadUpdateConfig() (UpdateConfig, error) {
	u := UpdateConfig{
		Mode: UpdateMode(strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("UPDATE_MODE")), string(UpdateListen)))),
		URL:  firstNonEmpty(strings.TrimSpace(os.Getenv("UPDATE_URL")), "ws://127.0.0.1:5556/updates"),
	}
	if u.Mode != UpdateListen && u.Mode != UpdateDial {
		return u, fmt.Errorf("UPDATE_MODE: unknown mode %q", u.Mode)
	}

	u.Timeout = time.Millisecond
	if raw := strings.TrimSpace(os.Getenv("UPDATE_RECV_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return u, fmt.Errorf("UPDATE_RECV_TIMEOUT: %w", err)
		}
		u.Timeout = d
	}
	var err error
	if u.StrictLength, err = envBool("UPDATE_STRICT_LENGTH", true); err != nil {
		return u, err
	}
	if u.Backlog, err = envInt("UPDATE_BACKLOG", 64, 1, 1<<16); err != nil {
		return u, err
	}
	return u, nil
}

func defaultLogLevel(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return "debug"
	}
	return "info"
}

func envBool(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envInt(key string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	if v < min || v > max {
		return def, fmt.Errorf("%s: %d outside [%d, %d]", key, v, min, max)
	}
	return v, nil
}

func envFloat(key string, def float32) (float32, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return float32(v), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
