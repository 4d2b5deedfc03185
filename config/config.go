package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment   string
	HTTPPort      string
	HTTPSPort     string
	Domains       []string
	CertCacheDir  string
	DatabaseURL   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ChatModel     string
	EmbedModel    string
	CodeTTL       time.Duration
	ProtocolRules string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		HTTPPort:      getEnv("HTTP_PORT", "8086"),
		HTTPSPort:     getEnv("HTTPS_PORT", "443"),
		Domains:       []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir:  getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/aeropulse"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		ChatModel:     getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		EmbedModel:    getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		CodeTTL:       time.Duration(getEnvAsInt("CODE_TTL", 600)) * time.Second,
		ProtocolRules: getEnv("PROTOCOL_RULES", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
