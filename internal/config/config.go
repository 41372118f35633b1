package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DBDSN             string
	DataDir           string
	LogFile           string
	ChatAPIBaseURL    string
	IdentityURL       string
	IdentityJWTSecret string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file, using environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "shopchat.db"
	} // sqlite file in project root
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data" // guest session documents
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./shopchat.log"
	}

	cfg := Config{
		Port:              port,
		DBDSN:             dsn,
		DataDir:           dataDir,
		LogFile:           logFile,
		ChatAPIBaseURL:    os.Getenv("CHAT_API_BASE_URL"),
		IdentityURL:       os.Getenv("IDENTITY_URL"),
		IdentityJWTSecret: os.Getenv("IDENTITY_JWT_SECRET"),
	}
	// No default for the chat backend: without it the proxy fails closed.
	log.Printf("[config] PORT=%s DB_DSN=%s DATA_DIR=%s LOG_FILE=%s CHAT_API_BASE_URL=%s IDENTITY_URL=%s",
		cfg.Port, cfg.DBDSN, cfg.DataDir, cfg.LogFile, cfg.ChatAPIBaseURL, cfg.IdentityURL)
	return cfg
}
