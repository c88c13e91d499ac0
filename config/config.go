package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Source kinds understood by the loader.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataSource    string
	ValuesPath    string
	LabelsPath    string
	ValuesTable   string
	LabelsTable   string
	LoadWorkers   int
	MaxRetries    int
	CatalogPath   string
	LiteracyGoal  float64
	OutputDir     string
	ChromeBin     string
	ChartWidthIn  float64
	ChartHeightIn float64

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		DataSource:    getEnv("DATA_SOURCE", SourceCSV),
		ValuesPath:    getEnv("SDG_VALUES_PATH", "SDG_DATA_NATIONAL.csv"),
		LabelsPath:    getEnv("SDG_LABELS_PATH", "SDG_LABEL.csv"),
		ValuesTable:   getEnv("SDG_VALUES_TABLE", "sdg_data_national"),
		LabelsTable:   getEnv("SDG_LABELS_TABLE", "sdg_label"),
		LoadWorkers:   getEnvInt("LOAD_WORKERS", 2),
		MaxRetries:    getEnvInt("MAX_RETRIES", 3),
		CatalogPath:   getEnv("CATALOG_PATH", ""),
		LiteracyGoal:  getEnvFloat("LITERACY_TARGET", 90),
		OutputDir:     getEnv("OUTPUT_DIR", "./output"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		ChartWidthIn:  getEnvFloat("CHART_WIDTH_IN", 10),
		ChartHeightIn: getEnvFloat("CHART_HEIGHT_IN", 5),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "sdg"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "sdg123"),
		PostgresDB:       getEnv("POSTGRES_DB", "sdg_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
