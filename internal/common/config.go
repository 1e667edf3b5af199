package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Dirs     DirConfig
	Database DatabaseConfig
	Watcher  WatcherConfig
	OCR      OCRConfig
	Classify ClassifyConfig

	// PreprocessConfigPath points at the YAML stage configuration; empty means
	// built-in defaults.
	PreprocessConfigPath string
}

// DirConfig holds the three staging locations.
type DirConfig struct {
	WatchDir string
	WorkDir  string
	FinalDir string
}

// DatabaseConfig holds document-store configuration.
type DatabaseConfig struct {
	DSN         string
	DialTimeout time.Duration
}

// WatcherConfig holds intake-watcher configuration.
type WatcherConfig struct {
	PollInterval  time.Duration
	StableTimeout time.Duration
}

// OCRConfig holds text-recognition configuration.
type OCRConfig struct {
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	OEM           int
	HeaderCropPx  int
	CacheDir      string
}

// ClassifyConfig holds classifier configuration.
type ClassifyConfig struct {
	ModelPath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Dirs: DirConfig{
			WatchDir: getEnv("WATCH_DIR", ""),
			WorkDir:  getEnv("WORK_DIR", ""),
			FinalDir: getEnv("FINAL_DIR", ""),
		},
		Database: DatabaseConfig{
			DSN:         getEnv("DB_DSN", "file:documents.db"),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Watcher: WatcherConfig{
			PollInterval:  getEnvAsDuration("WATCH_POLL_INTERVAL", time.Second),
			StableTimeout: getEnvAsDuration("WATCH_STABLE_TIMEOUT", 60*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			OEM:           getEnvAsInt("TESSERACT_OEM", 1),
			HeaderCropPx:  getEnvAsInt("HEADER_CROP_PX", 60),
			CacheDir:      getEnv("OCR_CACHE_DIR", "./tmp"),
		},
		Classify: ClassifyConfig{
			ModelPath: getEnv("CLASSIFIER_MODEL_PATH", ""),
		},
		PreprocessConfigPath: getEnv("PREPROCESS_CONFIG", ""),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Dirs.WatchDir == "" {
		return NewAppError("CONFIG_ERROR", "WATCH_DIR is required", ErrInvalidInput)
	}
	if c.Dirs.WorkDir == "" {
		return NewAppError("CONFIG_ERROR", "WORK_DIR is required", ErrInvalidInput)
	}
	if c.Dirs.FinalDir == "" {
		return NewAppError("CONFIG_ERROR", "FINAL_DIR is required", ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_DSN is required", ErrInvalidInput)
	}
	return nil
}
