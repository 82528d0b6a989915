package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ChatWSURL        = "CHAT_WS_URL"
	ChatAPIURL       = "CHAT_API_URL"
	AgentToken       = "AGENT_TOKEN"
	AgentEmail       = "AGENT_EMAIL"
	ProjectUUID      = "PROJECT_UUID"
	ListenAddr       = "AGENT_LISTEN_ADDR"
	APISecret        = "AGENT_API_SECRET"
	ChatRedisURL     = "CHAT_REDIS_URL"
	ChatRedisPass    = "CHAT_REDIS_PASS"
	PrefsTable       = "AGENT_PREFS_TABLE"
	AWSRegion        = "AWS_REGION"
	AWSID            = "AWS_ID"
	AWSSecret        = "AWS_SECRET"
	AWSToken         = "AWS_TOKEN"
	DynamoDBEndpoint = "DYNAMODB_ENDPOINT"
	LogLevel         = "LOG_LEVEL"
	LogPretty        = "LOG_PRETTY"
	AllowedOrigins   = "AGENT_ALLOWED_ORIGINS"
)

// Load reads a .env file into the process environment when one exists.
// Variables already set in the environment win.
func Load(files ...string) {
	_ = godotenv.Load(files...)
}

// Required reports every key from keys that has no value.
func Required(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("env: required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func GetBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// GetList splits a comma separated value, dropping empty entries.
func GetList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
