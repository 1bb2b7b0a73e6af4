package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// StaticDir is the absolute path to the directory served at /static/.
	// Set via STATIC_DIR (relative paths are resolved against the process working directory at startup).
	StaticDir string

	DB       DBConfig
	Prefs    PrefsConfig
	Alerts   AlertsConfig
	Upstream UpstreamConfig
	Weather  WeatherConfig
}

type DBConfig struct {
	Driver          string
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type PrefsConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

type AlertsConfig struct {
	Sink            string
	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTTopicPrefix string
	KafkaBrokers    []string
	KafkaTopic      string
}

type UpstreamConfig struct {
	GeocodingURL   string
	ForecastURL    string
	AirQualityURL  string
	IPPrimaryURL   string
	IPSecondaryURL string
	NewsProxyURL   string
	NewsMode       string
	Timeout        time.Duration
	RPS            float64
	Burst          int
}

type WeatherConfig struct {
	DefaultCity        string
	GeolocationTimeout time.Duration
	SuggestDebounce    time.Duration
	SessionIdleTTL     time.Duration
}

// LoadDotEnv reads a .env file into the environment when one exists.
// Variables already set win over the file.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envString("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	staticDir, err := filepath.Abs(envString("STATIC_DIR", "static"))
	if err != nil {
		return Config{}, fmt.Errorf("STATIC_DIR %q: %w", os.Getenv("STATIC_DIR"), err)
	}

	cfg := Config{
		AppEnv:    appEnv,
		LogLevel:  level,
		HTTPAddr:  envString("HTTP_ADDR", ":8080"),
		StaticDir: staticDir,
	}

	if cfg.DB, err = loadDB(); err != nil {
		return Config{}, err
	}
	if cfg.Prefs, err = loadPrefs(); err != nil {
		return Config{}, err
	}
	if cfg.Alerts, err = loadAlerts(); err != nil {
		return Config{}, err
	}
	if cfg.Upstream, err = loadUpstream(); err != nil {
		return Config{}, err
	}
	if cfg.Weather, err = loadWeather(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDB() (DBConfig, error) {
	driver := envString("DB_DRIVER", "sqlite3")
	switch driver {
	case "sqlite3", "postgres":
	default:
		return DBConfig{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite3, postgres)", driver)
	}
	dsn := envString("DB_DSN", "")
	if driver == "postgres" && dsn == "" {
		return DBConfig{}, fmt.Errorf("DB_DSN is required when DB_DRIVER is postgres")
	}

	maxOpen, err := envInt("DB_MAX_OPEN_CONNS", "1")
	if err != nil {
		return DBConfig{}, err
	}
	maxIdle, err := envInt("DB_MAX_IDLE_CONNS", "1")
	if err != nil {
		return DBConfig{}, err
	}
	lifetime, err := envDuration("DB_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return DBConfig{}, err
	}
	return DBConfig{
		Driver:          driver,
		DSN:             dsn,
		Path:            envString("SQLITE_PATH", "data/weatherdash.db"),
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: lifetime,
	}, nil
}

func loadPrefs() (PrefsConfig, error) {
	backend := envString("PREFS_BACKEND", "sql")
	switch backend {
	case "sql", "redis":
	default:
		return PrefsConfig{}, fmt.Errorf("invalid PREFS_BACKEND %q (allowed: sql, redis)", backend)
	}
	redisDB, err := envInt("REDIS_DB", "0")
	if err != nil {
		return PrefsConfig{}, err
	}
	ttl, err := envDuration("PREFS_TTL", "0s")
	if err != nil {
		return PrefsConfig{}, err
	}
	return PrefsConfig{
		Backend:       backend,
		RedisAddr:     envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		TTL:           ttl,
	}, nil
}

func loadAlerts() (AlertsConfig, error) {
	sink := envString("ALERT_SINK", "none")
	switch sink {
	case "none", "mqtt", "kafka":
	default:
		return AlertsConfig{}, fmt.Errorf("invalid ALERT_SINK %q (allowed: none, mqtt, kafka)", sink)
	}
	port, err := envInt("MQTT_PORT", "1883")
	if err != nil {
		return AlertsConfig{}, err
	}
	var brokers []string
	for _, b := range strings.Split(envString("KAFKA_BROKERS", "localhost:9092"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if sink == "kafka" && len(brokers) == 0 {
		return AlertsConfig{}, fmt.Errorf("KAFKA_BROKERS is required when ALERT_SINK is kafka")
	}
	return AlertsConfig{
		Sink:            sink,
		MQTTBroker:      envString("MQTT_BROKER", "localhost"),
		MQTTPort:        port,
		MQTTClientID:    envString("MQTT_CLIENT_ID", "weatherdash"),
		MQTTTopicPrefix: strings.TrimRight(envString("MQTT_TOPIC_PREFIX", "weatherdash/alerts"), "/"),
		KafkaBrokers:    brokers,
		KafkaTopic:      envString("KAFKA_TOPIC_ALERTS", "weather-alerts"),
	}, nil
}

func loadUpstream() (UpstreamConfig, error) {
	mode := envString("NEWS_MODE", "proxy")
	switch mode {
	case "proxy", "direct":
	default:
		return UpstreamConfig{}, fmt.Errorf("invalid NEWS_MODE %q (allowed: proxy, direct)", mode)
	}
	timeout, err := envDuration("UPSTREAM_TIMEOUT", "0s")
	if err != nil {
		return UpstreamConfig{}, err
	}
	rpsStr := envString("UPSTREAM_RPS", "10")
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil || rps < 0 {
		return UpstreamConfig{}, fmt.Errorf("invalid UPSTREAM_RPS %q (want a non-negative number)", rpsStr)
	}
	burst, err := envInt("UPSTREAM_BURST", "5")
	if err != nil {
		return UpstreamConfig{}, err
	}
	return UpstreamConfig{
		GeocodingURL:   envString("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		ForecastURL:    envString("FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		AirQualityURL:  envString("AIR_QUALITY_URL", "https://air-quality-api.open-meteo.com/v1/air-quality"),
		IPPrimaryURL:   envString("IP_PRIMARY_URL", "https://get.geojs.io/v1/ip/geo"),
		IPSecondaryURL: envString("IP_SECONDARY_URL", "https://ipapi.co"),
		NewsProxyURL:   envString("NEWS_PROXY_URL", "https://api.rss2json.com/v1/api.json"),
		NewsMode:       mode,
		Timeout:        timeout,
		RPS:            rps,
		Burst:          burst,
	}, nil
}

func loadWeather() (WeatherConfig, error) {
	geoTimeout, err := envDuration("GEOLOCATION_TIMEOUT", "10s")
	if err != nil {
		return WeatherConfig{}, err
	}
	debounce, err := envDuration("SUGGEST_DEBOUNCE", "300ms")
	if err != nil {
		return WeatherConfig{}, err
	}
	idle, err := envDuration("SESSION_IDLE_TTL", "30m")
	if err != nil {
		return WeatherConfig{}, err
	}
	return WeatherConfig{
		DefaultCity:        envString("DEFAULT_CITY", "Belgrade"),
		GeolocationTimeout: geoTimeout,
		SuggestDebounce:    debounce,
		SessionIdleTTL:     idle,
	}, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key, def string) (int, error) {
	s := envString(key, def)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envDuration(key, def string) (time.Duration, error) {
	s := envString(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
