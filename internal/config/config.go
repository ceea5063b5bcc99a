package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every environment-derived setting the regime-streaming
// binaries need. Fields are grouped the same way the rest of the
// repository groups its config: one nested struct per concern.
type Config struct {
	Environment string
	LogLevel    string

	Regime RegimeConfig

	Monitoring struct {
		PrometheusPort int
		HealthPort     int
	}
}

// RegimeConfig surfaces every row of the detector's configuration table
// (spec.md §6) as environment-overridable settings.
type RegimeConfig struct {
	Symbol       string
	DCThetaPct   float64
	ThetaOpen    float64
	ThetaClose   float64
	ConfirmOpen  int
	ConfirmClose int
	MinTrends    int
	UseBayes     bool
}

// Load reads a .env file into the process environment if one is
// present, then builds a Config from environment variables, falling
// back to spec.md's default values. A missing .env file is not an
// error — godotenv.Load is best-effort, matching the teacher's bot
// startup sequence.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		Regime: RegimeConfig{
			Symbol:       getEnv("REGIME_SYMBOL", "EURUSD"),
			DCThetaPct:   getEnvFloat("REGIME_DC_THETA_PCT", 0.4),
			ThetaOpen:    getEnvFloat("REGIME_THETA_OPEN", 0.80),
			ThetaClose:   getEnvFloat("REGIME_THETA_CLOSE", 0.50),
			ConfirmOpen:  getEnvInt("REGIME_CONFIRM_OPEN", 2),
			ConfirmClose: getEnvInt("REGIME_CONFIRM_CLOSE", 2),
			MinTrends:    getEnvInt("REGIME_MIN_TRENDS", 2),
			UseBayes:     getEnvBool("REGIME_USE_BAYES", false),
		},

		Monitoring: struct {
			PrometheusPort int
			HealthPort     int
		}{
			PrometheusPort: getEnvInt("PROMETHEUS_PORT", 8080),
			HealthPort:     getEnvInt("HEALTH_PORT", 8081),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
