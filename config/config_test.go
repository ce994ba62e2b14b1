package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":    "9090",
		"BAD_INT": "nine",
		"FLAG":    "true",
		"ORIGINS": "https://a.dev, ,https://b.dev",
		"EMPTY":   "",
	}

	require.Equal(t, "9090", GetString(c, "PORT", "8080"))
	require.Equal(t, "fallback", GetString(c, "EMPTY", "fallback"))
	require.Equal(t, "fallback", GetString(nil, "PORT", "fallback"))
	require.Equal(t, 9090, GetInt(c, "PORT", 1))
	require.Equal(t, 7, GetInt(c, "BAD_INT", 7))
	require.True(t, GetBool(c, "FLAG", false))
	require.True(t, GetBool(c, "MISSING", true))
	require.Equal(t, []string{"https://a.dev", "https://b.dev"}, GetList(c, "ORIGINS"))
	require.Equal(t, 9090*time.Second, GetSeconds(c, "PORT", 1))
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("PORTFOLIO_TEST_KEY", "a=b")
	require.Equal(t, "a=b", New()["PORTFOLIO_TEST_KEY"])
}

func TestLoad(t *testing.T) {
	base := func() map[string]string {
		return map[string]string{
			"DB_TYPE":      "postgres",
			"DATABASE_URL": "postgres://localhost/portfolio",
			"JWT_SECRET":   "secret",
		}
	}

	s, err := Load(base())
	require.NoError(t, err)
	require.Equal(t, "8080", s.Server.Port)
	require.Equal(t, 800, s.Uploads.MaxWidth)
	require.Equal(t, 600, s.Uploads.MaxHeight)
	require.Equal(t, int64(89478485), s.Uploads.MaxPixels)
	require.Equal(t, int64(16<<20), s.Uploads.MaxUploadBytes)
	require.Equal(t, "local", s.Uploads.Backend)
	require.Equal(t, 24*time.Hour, s.Auth.TokenTTL)
	require.False(t, s.Mail.Enabled())

	c := base()
	delete(c, "JWT_SECRET")
	_, err = Load(c)
	require.Error(t, err)

	c = base()
	c["UPLOAD_BACKEND"] = "s3"
	_, err = Load(c)
	require.ErrorContains(t, err, "S3_BUCKET")

	c = base()
	c["DB_TYPE"] = "supa"
	c["SUPABASE_DB_HOST"] = "db.example"
	s, err = Load(c)
	require.NoError(t, err)
	require.Contains(t, s.Database.URL, "host=db.example")
	require.Contains(t, s.Database.URL, "sslmode=require")

	c = base()
	c["DB_TYPE"] = "mysql"
	_, err = Load(c)
	require.Error(t, err)
}
