package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          string
	MongoURI      string
	DBName        string
	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string
	JWTSecret     string
	MaxUploadMB   int64

	// Bootstrap super admin, seeded on first login when the users
	// collection is empty.
	AdminEmail string
	AdminPass  string

	// External PDF-processing service. Both must be set for
	// notifications to be sent; otherwise the client is a no-op.
	ProcessorURL    string
	ProcessorAPIKey string
}

func Load() (*Config, error) {
	_ = os.Setenv("AWS_REGION", getEnv("AWS_REGION", "us-east-1"))
	maxMB := int64(50)
	if v := getEnv("MAX_UPLOAD_MB", "50"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxMB = n
		}
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("MONGODB_DB", "bookhaven"),
		S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		S3Region:        getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		MaxUploadMB:     maxMB,
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPass:       getEnv("ADMIN_PASSWORD", "password"),
		ProcessorURL:    strings.TrimRight(getEnv("SOCKET_SERVER_URL", ""), "/"),
		ProcessorAPIKey: getEnv("WEBHOOK_API_KEY", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// RequiredEnvVars are checked at startup; app exits if any are unset.
var RequiredEnvVars = []string{
	"MONGODB_URI",
	"MONGODB_DB",
	"JWT_SECRET",
	"ADMIN_EMAIL",
	"ADMIN_PASSWORD",
}

// OptionalEnvVars are logged at startup so you can confirm they are loaded when set.
var OptionalEnvVars = []string{
	"PORT",
	"AWS_S3_BUCKET",
	"AWS_REGION",
	"MAX_UPLOAD_MB",
	"SOCKET_SERVER_URL",
	"WEBHOOK_API_KEY",
}

// secretEnvVars are never echoed back in logs.
var secretEnvVars = map[string]bool{
	"JWT_SECRET":            true,
	"ADMIN_PASSWORD":        true,
	"AWS_ACCESS_KEY_ID":     true,
	"AWS_SECRET_ACCESS_KEY": true,
	"WEBHOOK_API_KEY":       true,
}

// ValidateEnv checks that all required env vars are set and logs status of required + optional.
// Calls log.Fatal if any required var is missing.
func ValidateEnv() {
	var missing []string
	for _, key := range RequiredEnvVars {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		} else {
			log.Printf("env %s loaded", key)
		}
	}
	if len(missing) > 0 {
		log.Fatalf("missing required env: %s (set these in .env or environment)", strings.Join(missing, ", "))
	}
	for _, key := range OptionalEnvVars {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			log.Printf("env %s not set (optional)", key)
			continue
		}
		if secretEnvVars[key] {
			log.Printf("env %s loaded", key)
		} else {
			log.Printf("env %s = %s", key, v)
		}
	}
	if j := os.Getenv("JWT_SECRET"); j == "change-me-in-production" {
		log.Fatal("JWT_SECRET must be set to a strong secret (not the default change-me-in-production)")
	}
}
