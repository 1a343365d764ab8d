package config

import (
	"os"
	"strconv"
	"time"

	"museumtour/internal/tour"
)

type Config struct {
	Port            string
	DatabaseURL     string
	ContentPath     string // empty means the embedded default tour
	SettleMs        int
	CompleteMs      int
	ClickCooldownMs int
	DoorDebounceMs  int
	PreloadDistance int
	AutoUnlock      bool
}

func Load() Config {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ContentPath:     os.Getenv("CONTENT_PATH"),
		SettleMs:        getEnvInt("TRANSITION_SETTLE_MS", 1500),
		CompleteMs:      getEnvInt("TRANSITION_COMPLETE_MS", 500),
		ClickCooldownMs: getEnvInt("CLICK_COOLDOWN_MS", 300),
		DoorDebounceMs:  getEnvInt("DOOR_DEBOUNCE_MS", 2000),
		PreloadDistance: getEnvInt("PRELOAD_DISTANCE", 1),
		AutoUnlock:      getEnvBool("AUTO_UNLOCK_DOORS", true),
	}
	return cfg
}

// TourConfig converts the env values into the tour's timing configuration.
func (c Config) TourConfig() tour.Config {
	return tour.Config{
		SettleDelay:     time.Duration(c.SettleMs) * time.Millisecond,
		CompleteDelay:   time.Duration(c.CompleteMs) * time.Millisecond,
		ClickCooldown:   time.Duration(c.ClickCooldownMs) * time.Millisecond,
		DoorDebounce:    time.Duration(c.DoorDebounceMs) * time.Millisecond,
		PreloadDistance: c.PreloadDistance,
		AutoUnlock:      c.AutoUnlock,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
