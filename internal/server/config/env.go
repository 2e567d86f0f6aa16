package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file
// in the working directory is loaded first when present; real environment
// variables win over the file. Unset variables leave the current value.
func parseEnv(config *Config) {

	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("ENDPOINT_ADDR_HTTP", &config.EndpointAddrHTTP)
	setString("BASE_URL", &config.BaseURL)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setDuration("ACCESS_TOKEN_VALIDITY_DURATION", &config.AccessTokenValidityDuration)
	setDuration("REFRESH_TOKEN_VALIDITY_DURATION", &config.RefreshTokenValidityDuration)
	setDuration("EMAIL_TOKEN_VALIDITY_DURATION", &config.EmailTokenValidityDuration)
	setDuration("USER_CACHE_TTL", &config.UserCacheTTL)
	setString("REDIS_ADDR", &config.RedisAddr)
	setString("REDIS_PASSWORD", &config.RedisPassword)
	setInt("REDIS_DB", &config.RedisDB)
	setString("S3_ROOT_USER", &config.S3RootUser)
	setString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	setString("SMTP_HOST", &config.SMTPHost)
	setInt("SMTP_PORT", &config.SMTPPort)
	setString("SMTP_USERNAME", &config.SMTPUsername)
	setString("SMTP_PASSWORD", &config.SMTPPassword)
	setString("MAIL_FROM", &config.MailFrom)
}
