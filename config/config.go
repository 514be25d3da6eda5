package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	APIBaseURL        string `mapstructure:"API_BASE_URL"`
	APITimeoutSeconds int    `mapstructure:"API_TIMEOUT_SECONDS"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// DataDir is where the local sqlite store lives. The shell points this
	// at the platform's app-data directory.
	DataDir string `mapstructure:"DATA_DIR"`

	// BookingSearchDays is the default search window (maxDays) for a
	// booking request when the student did not narrow it.
	BookingSearchDays int `mapstructure:"BOOKING_SEARCH_DAYS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("API_BASE_URL", "https://api.scuolaguida.app")
	viper.SetDefault("API_TIMEOUT_SECONDS", 10)
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 60)
	viper.SetDefault("DATA_DIR", ".")
	viper.SetDefault("BOOKING_SEARCH_DAYS", 14)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
