// Package config carrega a configuração do serviço a partir do ambiente.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"balancete-service/internal/core/balancete"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Host            string
	Port            int
	LogLevel        string
	DevMode         bool
	OutputDir       string // pasta padrão das planilhas geradas; vazio usa o diretório atual
	InputEncoding   string
	BatchWorkers    int // acima de 1, saídas com o mesmo nome disputam o destino (ver balancete.Options)
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64

	ReadHeaderTimeout time.Duration
}

// Addr devolve host:porta para o http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables, after an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:            getEnv("HOST", "127.0.0.1"),
		Port:            getEnvAsInt("PORT", 5000),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		OutputDir:       getEnv("OUTPUT_DIR", ""),
		InputEncoding:   strings.ToLower(getEnv("INPUT_ENCODING", balancete.EncodingUTF8)),
		BatchWorkers:    getEnvAsInt("BATCH_WORKERS", 1),
		ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT", 5)) * time.Second,
		MaxUploadBytes:  int64(getEnvAsInt("MAX_UPLOAD_MB", 32)) << 20,

		ReadHeaderTimeout: time.Duration(getEnvAsInt("READ_HEADER_TIMEOUT", 10)) * time.Second,
	}

	if !balancete.ValidEncoding(cfg.InputEncoding) {
		return nil, fmt.Errorf("INPUT_ENCODING inválido: %q (use utf-8, latin1 ou auto)", cfg.InputEncoding)
	}
	if cfg.BatchWorkers < 1 {
		cfg.BatchWorkers = 1
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
