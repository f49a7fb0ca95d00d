package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestRead_Defaults(t *testing.T) {
	p := writeConfig(t, "jwt:\n  secret: s3cret\n")

	c, err := Read(p)
	require.NoError(t, err)

	assert.Equal(t, 5000, c.App.HTTP.Port)
	assert.Equal(t, "/api", c.App.HTTP.BasePath)
	assert.Equal(t, 24*time.Hour, c.JWT.TTL())
	assert.Equal(t, "linkbio", c.JWT.Issuer)
	assert.Equal(t, int64(2<<20), c.Upload.MaxAvatarBytes)
	assert.Equal(t, time.Minute, c.Redis.ProfileTTL())
	assert.Equal(t, 10*time.Second, c.App.HTTP.RequestTimeout())
	assert.Equal(t, []string{"*"}, c.App.HTTP.CORSOrigins)
}

func TestRead_FileAndEnvOverride(t *testing.T) {
	p := writeConfig(t, `
app:
  http:
    port: 8080
    basePath: /v1
jwt:
  secret: from-file
storage:
  driver: memory
  publicBaseURL: http://cdn.local/bucket
`)
	t.Setenv("APP_JWT_SECRET", "from-env")

	c, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, 8080, c.App.HTTP.Port)
	assert.Equal(t, "/v1", c.App.HTTP.BasePath)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, "http://cdn.local/bucket", c.Storage.PublicBaseURL)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	p := writeConfig(t, "app:\n  name: x\n")
	_, err = Read(p)
	assert.ErrorContains(t, err, "jwt.secret")
}
