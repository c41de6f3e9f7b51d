package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	t.Setenv("POSTGRES_USER", "test")
	t.Setenv("POSTGRES_DB", "customers")

	cfg, err := Build()
	require.NoError(t, err, "no error must be raised")
	require.Equal(t, 3000, cfg.HTTPCfg.Port)
	require.Equal(t, 10*time.Second, cfg.HTTPCfg.ShutdownTimeout)
	require.Equal(t, StoreBackendPostgres, cfg.StoreCfg.Backend)
	require.Equal(t, "disable", cfg.PostgresCfg.SslMode)
	require.Equal(t, TracingExporterNone, cfg.TracingCfg.Exporter)
	require.Empty(t, cfg.RedisCfg.Addr, "redis must be disabled by default")
	require.False(t, cfg.DiagnosticsCfg.Protected(), "diagnostics must be public by default")
	require.False(t, cfg.AuthCfg.Enabled(), "auth must be disabled without public key")
	require.Equal(t, "EdDSA", cfg.AuthCfg.JwtCfg.SigningMethod.Alg())
}

func TestBuildUnsupportedBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "cassandra")

	_, err := Build()
	require.Error(t, err, "unsupported backend has been provided but no error raised")
}

func TestBuildMissingPostgresCredentials(t *testing.T) {
	t.Setenv("STORE_BACKEND", StoreBackendPostgres)
	t.Setenv("POSTGRES_USER", "")

	_, err := Build()
	require.Error(t, err, "postgres user is missing but no error raised")
}

func TestBuildWithJwtKeys(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err, "failed to generate keys")

	dir := t.TempDir()
	privDer, privErr := x509.MarshalPKCS8PrivateKey(priv)
	pubDer, pubErr := x509.MarshalPKIXPublicKey(pub)
	privFile := writePEM(t, dir, "private.pem", "PRIVATE KEY", mustMarshal(t, privDer, privErr))
	pubFile := writePEM(t, dir, "public.pem", "PUBLIC KEY", mustMarshal(t, pubDer, pubErr))

	t.Setenv("STORE_BACKEND", StoreBackendMongo)
	t.Setenv("MONGO_USER", "test")
	t.Setenv("AUTH_JWT_PRIVATE_KEY_FILE", privFile)
	t.Setenv("AUTH_JWT_PUBLIC_KEY_FILE", pubFile)

	cfg, err := Build()
	require.NoError(t, err, "no error must be raised")
	require.True(t, cfg.AuthCfg.Enabled(), "auth must be enabled when public key is provided")
	require.NotNil(t, cfg.AuthCfg.JwtCfg.PrivateKey, "private key must be loaded")
}

func mustMarshal(t *testing.T, b []byte, err error) []byte {
	t.Helper()
	require.NoError(t, err, "failed to marshal key")
	return b
}

func writePEM(t *testing.T, dir, name, blockType string, b []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: b}), 0o600)
	require.NoError(t, err, "failed to write key file")
	return path
}
