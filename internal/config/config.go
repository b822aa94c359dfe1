package config

import (
	"log"
	"os"
)

type Config struct {
	Port     string
	DBDSN    string
	ImageDir string
	LogFile  string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "beststore.db"
	} // sqlite file in project root
	images := os.Getenv("IMAGE_DIR")
	if images == "" {
		images = "./public/images"
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./beststore.log" // default log sink in project root
	}

	cfg := Config{Port: port, DBDSN: dsn, ImageDir: images, LogFile: logFile}
	log.Printf("[config] PORT=%s DB_DSN=%s IMAGE_DIR=%s LOG_FILE=%s", cfg.Port, cfg.DBDSN, cfg.ImageDir, cfg.LogFile)
	return cfg
}
