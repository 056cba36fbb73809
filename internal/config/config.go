// Package config loads Lectio configuration from the environment with an
// optional YAML overlay file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderBedrock   = "bedrock"
	ProviderNone      = ""
)

// Object store backends.
const (
	StoreFS = "fs"
	StoreS3 = "s3"
)

// Key-value backends.
const (
	KVMemory  = "memory"
	KVSurreal = "surrealdb"
)

// Config holds all configuration values.
type Config struct {
	// Object store
	StoreBackend string
	DataDir      string
	S3Bucket     string

	// Key-value store
	KVBackend          string
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Media extraction
	FFmpegPath  string
	FFprobePath string

	// Speech to text
	OpenAIAPIKey string
	WhisperModel string

	// OCR
	OCRLanguage string
	OCRWorkers  int

	// LLM
	LLMProvider     string
	LLMModel        string
	AnthropicAPIKey string
	OllamaHost      string

	// Server
	ServerPort string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables, then applies the YAML
// file pointed at by LECTIO_CONFIG (if set) on top.
func Load() (Config, error) {
	cfg := Config{
		StoreBackend: getEnv("LECTIO_STORE", StoreFS),
		DataDir:      getEnv("LECTIO_DATA_DIR", defaultDataDir()),
		S3Bucket:     getEnv("LECTIO_S3_BUCKET", ""),

		KVBackend:          getEnv("LECTIO_KV", KVMemory),
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "lectio"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "lectures"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		FFmpegPath:  getEnv("LECTIO_FFMPEG", "ffmpeg"),
		FFprobePath: getEnv("LECTIO_FFPROBE", "ffprobe"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		WhisperModel: getEnv("LECTIO_WHISPER_MODEL", "whisper-1"),

		OCRLanguage: getEnv("LECTIO_OCR_LANG", "eng"),
		OCRWorkers:  getEnvInt("LECTIO_OCR_WORKERS", 1),

		LLMProvider:     getEnv("LECTIO_LLM_PROVIDER", ProviderNone),
		LLMModel:        getEnv("LECTIO_LLM_MODEL", "gpt-4o-mini"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),

		ServerPort: getEnv("LECTIO_SERVER_PORT", "8484"),

		LogFile:  getEnv("LECTIO_LOG_FILE", "/tmp/lectio.log"),
		LogLevel: parseLogLevel(getEnv("LECTIO_LOG_LEVEL", "INFO")),
	}

	if path := os.Getenv("LECTIO_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	return cfg, nil
}

// fileConfig mirrors the YAML config file. All fields are optional; unset
// fields keep their environment/default values.
type fileConfig struct {
	Store       *string `yaml:"store"`
	DataDir     *string `yaml:"dataDir"`
	S3Bucket    *string `yaml:"s3Bucket"`
	KV          *string `yaml:"kv"`
	SurrealDB   *string `yaml:"surrealdbUrl"`
	FFmpeg      *string `yaml:"ffmpeg"`
	FFprobe     *string `yaml:"ffprobe"`
	Whisper     *string `yaml:"whisperModel"`
	OCRLanguage *string `yaml:"ocrLang"`
	OCRWorkers  *int    `yaml:"ocrWorkers"`
	LLMProvider *string `yaml:"llmProvider"`
	LLMModel    *string `yaml:"llmModel"`
	ServerPort  *string `yaml:"serverPort"`
	LogFile     *string `yaml:"logFile"`
	LogLevel    *string `yaml:"logLevel"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	setString(&c.StoreBackend, fc.Store)
	setString(&c.DataDir, fc.DataDir)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.KVBackend, fc.KV)
	setString(&c.SurrealDBURL, fc.SurrealDB)
	setString(&c.FFmpegPath, fc.FFmpeg)
	setString(&c.FFprobePath, fc.FFprobe)
	setString(&c.WhisperModel, fc.Whisper)
	setString(&c.OCRLanguage, fc.OCRLanguage)
	setString(&c.LLMProvider, fc.LLMProvider)
	setString(&c.LLMModel, fc.LLMModel)
	setString(&c.ServerPort, fc.ServerPort)
	setString(&c.LogFile, fc.LogFile)
	if fc.OCRWorkers != nil {
		c.OCRWorkers = *fc.OCRWorkers
	}
	if fc.LogLevel != nil {
		c.LogLevel = parseLogLevel(*fc.LogLevel)
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./lectio-data"
	}
	return home + "/.lectio/data"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
