package util

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Settings carries everything main wires together. Loaded once at startup.
type Settings struct {
	Env                 string
	BotToken            string `validate:"required"`
	AdminIDs            []int64
	DBDriver            string `validate:"oneof=sqlite postgres"`
	DBDSN               string `validate:"required"`
	TestLength          int    `validate:"min=1"`
	DefaultAttemptLimit *int
	MaterialsDir        string `validate:"required"`
	ExportsDir          string `validate:"required"`
	HTTPAddr            string
	JWTSecret           string `validate:"required"`
	AdminEmail          string
	AdminPasswordHash   string
	RedisAddr           string
	SessionTTL          time.Duration
	GCSBucket           string
}

// IsAdmin reports whether a telegram id is in the configured admin set.
func (s *Settings) IsAdmin(userID int64) bool {
	for _, id := range s.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// LoadSettings reads configuration from the environment. In the DEV
// environments a .env file is loaded first; in production the bot token, JWT
// secret, admin credentials and DSN come from one Secret Manager payload.
func LoadSettings() (*Settings, error) {
	env := os.Getenv("ENV")
	if env == "DEV" || env == "DEV_DB" {
		if err := godotenv.Load(); err != nil {
			return nil, errors.New("couldn't get environment variables")
		}
	}

	s := &Settings{
		Env:               env,
		BotToken:          os.Getenv("BOT_TOKEN"),
		DBDriver:          envOr("DB_DRIVER", "sqlite"),
		DBDSN:             os.Getenv("DB_DSN"),
		MaterialsDir:      envOr("MATERIALS_DIR", "materials"),
		ExportsDir:        envOr("EXPORTS_DIR", "exports"),
		HTTPAddr:          envOr("HTTP_ADDR", ":8080"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
	}

	if env != "DEV" && env != "DEV_DB" {
		if err := s.loadProdSecrets(); err != nil {
			return nil, err
		}
	}

	if s.DBDSN == "" {
		switch s.DBDriver {
		case "postgres":
			s.DBDSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"),
				os.Getenv("DB_PASS"), os.Getenv("DB_NAME"), envOr("SSL_MODE", "disable"))
		default:
			s.DBDSN = "file:htmlbot.db?cache=shared&mode=rwc"
		}
	}

	ids, err := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}
	s.AdminIDs = ids

	s.TestLength, err = envOrInt("TEST_LENGTH", 10)
	if err != nil {
		return nil, err
	}

	s.DefaultAttemptLimit, err = parseAttemptLimit(envOr("DEFAULT_ATTEMPT_LIMIT", "1"))
	if err != nil {
		return nil, err
	}

	ttl := envOr("SESSION_TTL", "2h")
	s.SessionTTL, err = time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", ttl, err)
	}

	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// loadProdSecrets pulls one whitespace-separated payload from Secret Manager:
// bot token, JWT secret, admin email, admin password hash, then the DSN.
func (s *Settings) loadProdSecrets() error {
	name := os.Getenv("SECRET_NAME")
	if name == "" {
		name = fmt.Sprintf("projects/%s/secrets/htmlbot/versions/latest", os.Getenv("GCP_PROJECT_ID"))
	}
	ctx := context.Background()
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return errors.New("couldn't get cloud secret")
	}
	defer client.Close()
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	}
	result, err := client.AccessSecretVersion(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to access secret version: %w", err)
	}
	words := strings.Fields(string(result.Payload.Data))
	if len(words) < 4 {
		return errors.New("secret payload is missing fields")
	}
	s.BotToken = words[0]
	s.JWTSecret = words[1]
	s.AdminEmail = words[2]
	s.AdminPasswordHash = words[3]
	if len(words) > 4 {
		s.DBDSN = strings.Join(words[4:], " ")
	}
	return nil
}

// ParseAttemptLimit turns admin input into a nullable limit. "unlimited",
// "none" and "inf" all mean no limit.
func ParseAttemptLimit(raw string) (*int, error) {
	return parseAttemptLimit(raw)
}

func parseAttemptLimit(raw string) (*int, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "unlimited", "none", "inf":
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("attempt limit must be a positive number or 'unlimited', got %q", raw)
	}
	return &n, nil
}

func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_IDS entry %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}
