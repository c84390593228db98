package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host          string
	Port          int
	AllowOrigins  []string
	LogLevel      string
	MaxUploadMB   int
	LogFile       string
	DBPath        string
	AlertInterval time.Duration
	ForecastSeed  int64
}

func Load() Config {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getenv("PORT", "8083"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "64"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	intervalMin, _ := strconv.Atoi(getenv("ALERT_INTERVAL_MIN", "5"))
	if intervalMin <= 0 {
		intervalMin = 5
	}
	seed, _ := strconv.ParseInt(getenv("FORECAST_SEED", "0"), 10, 64)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return Config{
		Host:          getenv("HOST", "127.0.0.1"),
		Port:          port,
		AllowOrigins:  origins,
		LogLevel:      getenv("LOG_LEVEL", "info"),
		MaxUploadMB:   mb,
		LogFile:       getenv("LOG_FILE", "logs/pricewatch-service.log"),
		DBPath:        getenv("DB_PATH", "data/pricewatch.db"),
		AlertInterval: time.Duration(intervalMin) * time.Minute,
		ForecastSeed:  seed,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
