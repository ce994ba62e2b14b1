package config

import (
	"fmt"
	"time"
)

type Settings struct {
	Server   ServerSettings
	Database DatabaseSettings
	Uploads  UploadSettings
	Auth     AuthSettings
	Redis    RedisSettings
	Mail     MailSettings
	Cleanup  CleanupSettings
	Owner    OwnerSettings

	BaseURL     string
	LogLevel    string
	WorkerCount int

	ProvisionOwner       bool
	GenerateModels       bool
	GenerateColumnReport bool
}

type ServerSettings struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	AcceptedOrigins []string
}

type DatabaseSettings struct {
	Type        string
	URL         string
	ReplicaURLs []string
}

// Upload backends.
const (
	UploadBackendLocal = "local"
	UploadBackendS3    = "s3"
)

type UploadSettings struct {
	Backend        string
	Folder         string
	MaxUploadBytes int64
	MaxWidth       int
	MaxHeight      int
	MaxPixels      int64
	S3Bucket       string
	S3Region       string
	S3Prefix       string
}

type AuthSettings struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type RedisSettings struct {
	Addr     string
	Password string
	DB       int
}

type MailSettings struct {
	ResendAPIKey string
	ResendURL    string
	From         string
}

// Enabled reports whether outbound e-mail is configured.
func (m MailSettings) Enabled() bool {
	return m.ResendAPIKey != "" && m.From != ""
}

type CleanupSettings struct {
	Schedule string
	Grace    time.Duration
}

type OwnerSettings struct {
	Username string
	Email    string
	Name     string
	Password string
}

// Load reads typed settings out of an environment map produced by New.
func Load(c map[string]string) (Settings, error) {
	s := Settings{
		Server: ServerSettings{
			Port:            GetString(c, "PORT", "8080"),
			ReadTimeout:     GetSeconds(c, "READ_TIMEOUT_SECONDS", 180),
			WriteTimeout:    GetSeconds(c, "WRITE_TIMEOUT_SECONDS", 180),
			IdleTimeout:     GetSeconds(c, "IDLE_TIMEOUT_SECONDS", 180),
			AcceptedOrigins: GetList(c, "ACCEPTED_ORIGINS"),
		},
		Database: DatabaseSettings{
			Type:        GetString(c, "DB_TYPE", "postgres"),
			ReplicaURLs: GetList(c, "DATABASE_REPLICA_URLS"),
		},
		Uploads: UploadSettings{
			Backend:        GetString(c, "UPLOAD_BACKEND", UploadBackendLocal),
			Folder:         GetString(c, "UPLOAD_FOLDER", "static/uploads"),
			MaxUploadBytes: int64(GetInt(c, "MAX_UPLOAD_BYTES", 16<<20)),
			MaxWidth:       GetInt(c, "IMAGE_MAX_WIDTH", 800),
			MaxHeight:      GetInt(c, "IMAGE_MAX_HEIGHT", 600),
			MaxPixels:      int64(GetInt(c, "IMAGE_MAX_PIXELS", 89478485)),
			S3Bucket:       GetString(c, "S3_BUCKET", ""),
			S3Region:       GetString(c, "S3_REGION", "us-east-1"),
			S3Prefix:       GetString(c, "S3_PREFIX", "uploads"),
		},
		Auth: AuthSettings{
			JWTSecret: GetString(c, "JWT_SECRET", ""),
			TokenTTL:  time.Duration(GetInt(c, "TOKEN_TTL_HOURS", 24)) * time.Hour,
		},
		Redis: RedisSettings{
			Addr:     GetString(c, "REDIS_ADDR", ""),
			Password: GetString(c, "REDIS_PASSWORD", ""),
			DB:       GetInt(c, "REDIS_DB", 0),
		},
		Mail: MailSettings{
			ResendAPIKey: GetString(c, "RESEND_API_KEY", ""),
			ResendURL:    GetString(c, "RESEND_API_URL", "https://api.resend.com"),
			From:         GetString(c, "RESEND_FROM_EMAIL", ""),
		},
		Cleanup: CleanupSettings{
			Schedule: GetString(c, "CLEANUP_SCHEDULE", "@daily"),
			Grace:    time.Duration(GetInt(c, "CLEANUP_GRACE_MINUTES", 60)) * time.Minute,
		},
		Owner: OwnerSettings{
			Username: GetString(c, "OWNER_USERNAME", "admin"),
			Email:    GetString(c, "OWNER_EMAIL", "admin@portfolio.local"),
			Name:     GetString(c, "OWNER_NAME", "Portfolio Owner"),
			Password: GetString(c, "OWNER_PASSWORD", ""),
		},
		BaseURL:              GetString(c, "BASE_URL", "http://localhost:8080"),
		LogLevel:             GetString(c, "LOG_LEVEL", "info"),
		WorkerCount:          GetInt(c, "WORKER_COUNT", 2),
		ProvisionOwner:       GetBool(c, "PROVISION_OWNER", false),
		GenerateModels:       GetBool(c, "GENERATE_MODELS", false),
		GenerateColumnReport: GetBool(c, "GENERATE_COLUMN_REPORT", false),
	}

	url, err := databaseURL(c, s.Database.Type)
	if err != nil {
		return Settings{}, err
	}
	s.Database.URL = url

	switch {
	case s.Auth.JWTSecret == "":
		return Settings{}, fmt.Errorf("JWT_SECRET is required")
	case s.Uploads.MaxWidth <= 0 || s.Uploads.MaxHeight <= 0:
		return Settings{}, fmt.Errorf("IMAGE_MAX_WIDTH and IMAGE_MAX_HEIGHT must be positive")
	case s.Uploads.MaxPixels <= 0:
		return Settings{}, fmt.Errorf("IMAGE_MAX_PIXELS must be positive")
	case s.Uploads.Backend == UploadBackendS3 && s.Uploads.S3Bucket == "":
		return Settings{}, fmt.Errorf("S3_BUCKET is required when UPLOAD_BACKEND=s3")
	case s.Uploads.Backend != UploadBackendS3 && s.Uploads.Backend != UploadBackendLocal:
		return Settings{}, fmt.Errorf("unsupported UPLOAD_BACKEND %q", s.Uploads.Backend)
	}

	return s, nil
}

func databaseURL(c map[string]string, dbType string) (string, error) {
	switch dbType {
	case "supa":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			GetString(c, "SUPABASE_DB_HOST", ""),
			GetString(c, "SUPABASE_DB_USER", ""),
			GetString(c, "SUPABASE_DB_PASSWORD", ""),
			GetString(c, "SUPABASE_DB_NAME", ""),
			GetString(c, "SUPABASE_DB_PORT", "5432"),
		), nil
	case "postgres":
		url := GetString(c, "DATABASE_URL", "")
		if url == "" {
			return "", fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
		}
		return url, nil
	default:
		return "", fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}
