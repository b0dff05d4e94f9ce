package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensekey/internal/keyring"
	"licensekey/pkg/licensekey"
)

const generatorYAML = `hasher:
  algorithm: xor
vectors:
  - [114, 83, 170]
  - [60, 208, 27]
  - [69, 14, 202]
  - [61, 232, 54]
`

type fixture struct {
	dir        string
	configPath string
	generator  string
	verifier   string
	metrics    string
}

func setupFixture(t *testing.T, extra string) fixture {
	t.Helper()

	dir := t.TempDir()
	f := fixture{
		dir:        dir,
		configPath: filepath.Join(dir, "licensekey.yaml"),
		generator:  filepath.Join(dir, "generator.yaml"),
		verifier:   filepath.Join(dir, "verifier.yaml"),
		metrics:    filepath.Join(dir, "metrics", "licensekey.prom"),
	}

	require.NoError(t, os.WriteFile(f.generator, []byte(generatorYAML), 0o600))

	gf, err := keyring.ParseGenerator([]byte(generatorYAML))
	require.NoError(t, err)
	vf, err := gf.VerifierFor(0, 2)
	require.NoError(t, err)
	vf.Blocked = []uint64{999}
	require.NoError(t, vf.Save(f.verifier))

	cfg := fmt.Sprintf(`keyring:
  generator_file: %s
  verifier_file: %s
telemetry:
  metrics_textfile: %s
%s`, f.generator, f.verifier, f.metrics, extra)
	require.NoError(t, os.WriteFile(f.configPath, []byte(cfg), 0o600))

	return f
}

func TestNewApplication(t *testing.T) {
	f := setupFixture(t, "")
	logs := &bytes.Buffer{}

	a, err := NewApplication(context.Background(), f.configPath, logs)
	require.NoError(t, err)
	defer a.Stop(context.Background())

	assert.Equal(t, f.generator, a.Config.Keyring.GeneratorFile)
	assert.Equal(t, licensekey.HexCodec{}, a.Codec())
	assert.NotNil(t, a.OTelProviders.Registry)
}

func TestNewApplicationBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch:\n  workers: 0\n"), 0o600))

	_, err := NewApplication(context.Background(), path, nil)
	assert.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	f := setupFixture(t, "")
	ctx := context.Background()

	a, err := NewApplication(ctx, f.configPath, &bytes.Buffer{})
	require.NoError(t, err)

	issuer, err := a.IssuerService("")
	require.NoError(t, err)
	issued, err := issuer.Issue(ctx, 12345, "acme")
	require.NoError(t, err)
	assert.Equal(t, "0000000000003039b2ceb8da552e", issued.Text)

	verifier, err := a.VerifierService("")
	require.NoError(t, err)
	status, err := verifier.Check(ctx, issued.Text)
	require.NoError(t, err)
	assert.Equal(t, licensekey.Valid, status)

	_, err = verifier.Issue(ctx, 1, "")
	assert.Error(t, err, "verifier service cannot issue")
	assert.Equal(t, []uint64{999}, verifier.Blocked())

	require.NoError(t, a.Stop(ctx))

	data, err := os.ReadFile(f.metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "license_keys_issued_total")
	assert.Contains(t, string(data), `status="valid"`)
	assert.Contains(t, string(data), "system_goroutines")
}

func TestGroupedCodecFromConfig(t *testing.T) {
	f := setupFixture(t, "")
	require.NoError(t, os.WriteFile(f.configPath, append(mustRead(t, f.configPath), []byte("batch:\n  workers: 2\n")...), 0o600))
	t.Setenv("LICENSEKEY_KEYRING_CODEC", "grouped")

	a, err := NewApplication(context.Background(), f.configPath, &bytes.Buffer{})
	require.NoError(t, err)
	defer a.Stop(context.Background())

	assert.Equal(t, licensekey.DefaultGroupedCodec, a.Codec())
	assert.Equal(t, 2, a.Config.Batch.Workers)

	issuer, err := a.IssuerService("")
	require.NoError(t, err)
	issued, err := issuer.Issue(context.Background(), 12345, "")
	require.NoError(t, err)
	assert.Equal(t, "0000-0000-0000-3039-B2CE-B8DA-552E", issued.Text)
}

func TestMissingKeyring(t *testing.T) {
	f := setupFixture(t, "")

	a, err := NewApplication(context.Background(), f.configPath, &bytes.Buffer{})
	require.NoError(t, err)
	defer a.Stop(context.Background())

	_, err = a.IssuerService(filepath.Join(f.dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = a.VerifierService(filepath.Join(f.dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPathOverrides(t *testing.T) {
	f := setupFixture(t, "")

	a, err := NewApplication(context.Background(), f.configPath, &bytes.Buffer{})
	require.NoError(t, err)
	defer a.Stop(context.Background())

	assert.Equal(t, f.generator, a.GeneratorPath(""))
	assert.Equal(t, "other.yaml", a.GeneratorPath("other.yaml"))
	assert.Equal(t, f.verifier, a.VerifierPath(""))
	assert.Equal(t, "other.yaml", a.VerifierPath("other.yaml"))
}

func TestStopWithFileLogging(t *testing.T) {
	f := setupFixture(t, fmt.Sprintf("logging:\n  output: file\n  file_path: %s\n", filepath.Join(t.TempDir(), "logs", "app.log")))

	a, err := NewApplication(context.Background(), f.configPath, &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, a.logFile)

	require.NoError(t, a.Stop(context.Background()))
	assert.Nil(t, a.logFile)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
