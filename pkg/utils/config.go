package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("CATEDRAHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("CATEDRAHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "catedrahub"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("CATEDRAHUB_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

type ServerConfig struct {
	HTTPAddr   string
	EventsAddr string
}

func LoadServerConfig() ServerConfig {
	httpAddr := os.Getenv("CATEDRAHUB_HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	eventsAddr := os.Getenv("CATEDRAHUB_EVENTS_ADDR")
	if eventsAddr == "" {
		eventsAddr = ":7070"
	}

	return ServerConfig{
		HTTPAddr:   httpAddr,
		EventsAddr: eventsAddr,
	}
}
