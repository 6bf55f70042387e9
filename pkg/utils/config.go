package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

// LoadAuthConfig reads the token signing configuration from the environment.
// There is deliberately no fallback secret: the service must not accept
// traffic with a guessable signing key.
func LoadAuthConfig() (AuthConfig, error) {
	secret := os.Getenv("BOOKHUB_JWT_SECRET")
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("BOOKHUB_JWT_SECRET is not set")
	}

	issuer := os.Getenv("BOOKHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "bookhub"
	}

	// tokens live 7 days unless overridden
	duration := 168 * time.Hour
	if ttl := os.Getenv("BOOKHUB_JWT_TTL_HOURS"); ttl != "" {
		hours, err := strconv.Atoi(ttl)
		if err != nil || hours <= 0 {
			return AuthConfig{}, fmt.Errorf("invalid BOOKHUB_JWT_TTL_HOURS: %q", ttl)
		}
		duration = time.Duration(hours) * time.Hour
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}, nil
}

type ServerConfig struct {
	Addr string
}

func LoadServerConfig() ServerConfig {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return ServerConfig{Addr: ":" + port}
}
