package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env             string
	DatabaseURL     string
	JWTSecret       string
	Port            string
	GoogleClientIDs []string
	OwnerOpenID     string
	SessionCookie   string
	AllowOrigins    string

	// Object storage. An empty bucket keeps uploads on local disk.
	FirebaseServiceAccount string
	StorageBucket          string
	UploadDir              string
	MaxUploadBytes         int64

	RollbarToken string
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: failed to load .env: %v", err)
	}

	v := viper.New()
	v.SetDefault("env", "dev")
	v.SetDefault("database_url", "study.db")
	v.SetDefault("jwt_secret", "your-secret-key-change-in-production")
	v.SetDefault("port", "8080")
	v.SetDefault("google_client_ids", "")
	v.SetDefault("owner_open_id", "")
	v.SetDefault("session_cookie", "app_session_id")
	v.SetDefault("allow_origins", "*")
	v.SetDefault("firebase_service_account", "")
	v.SetDefault("storage_bucket", "")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("max_upload_bytes", int64(50<<20))
	v.SetDefault("rollbar_token", "")
	v.AutomaticEnv()

	return &Config{
		Env:                    strings.ToLower(v.GetString("env")),
		DatabaseURL:            v.GetString("database_url"),
		JWTSecret:              v.GetString("jwt_secret"),
		Port:                   v.GetString("port"),
		GoogleClientIDs:        splitList(v.GetString("google_client_ids")),
		OwnerOpenID:            v.GetString("owner_open_id"),
		SessionCookie:          v.GetString("session_cookie"),
		AllowOrigins:           v.GetString("allow_origins"),
		FirebaseServiceAccount: v.GetString("firebase_service_account"),
		StorageBucket:          v.GetString("storage_bucket"),
		UploadDir:              v.GetString("upload_dir"),
		MaxUploadBytes:         v.GetInt64("max_upload_bytes"),
		RollbarToken:           v.GetString("rollbar_token"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
