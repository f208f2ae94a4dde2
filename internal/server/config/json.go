package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/cinecircle/cinecircle/internal/flagx"
	"github.com/cinecircle/cinecircle/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which parses both
// string values such as "15m" and integer nanoseconds. After unmarshalling,
// its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3User                       string         `json:"s3_user"`
	S3Password                   string         `json:"s3_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	SignedURLTTL                 timex.Duration `json:"signed_url_ttl"`
	RedisAddr                    string         `json:"redis_addr"`
	RateLimitMax                 int            `json:"rate_limit_max"`
	RateLimitWindow              timex.Duration `json:"rate_limit_window"`
	CORSAllowOrigins             string         `json:"cors_allow_origins"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config. The file path is taken from the -c or -config command-line flags;
// when neither is set, no JSON file is loaded. An unreadable or malformed
// file panics: a config file that was explicitly requested must be usable.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.S3User = c.S3User
	config.S3Password = c.S3Password
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.SignedURLTTL = time.Duration(c.SignedURLTTL.Duration)
	config.RedisAddr = c.RedisAddr
	config.RateLimitMax = c.RateLimitMax
	config.RateLimitWindow = time.Duration(c.RateLimitWindow.Duration)
	config.CORSAllowOrigins = c.CORSAllowOrigins
}
