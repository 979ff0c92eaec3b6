package app

import (
	"strings"

	"github.com/tierfolio/tierfolio-backend/internal/pkg/envutil"
)

type Config struct {
	HTTPAddr       string
	JWTSecretKey   string
	AllowedOrigins []string
	Environment    string
	Version        string
}

func LoadConfig() Config {
	var origins []string
	for _, o := range strings.Split(envutil.String("CORS_ALLOWED_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{
		HTTPAddr:       envutil.String("HTTP_ADDR", ":8080"),
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AllowedOrigins: origins,
		Environment:    envutil.String("APP_ENV", "development"),
		Version:        envutil.String("APP_VERSION", "dev"),
	}
}
