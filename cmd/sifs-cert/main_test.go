package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sifs_backend/internals/configs"
)

func fakeAPI(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if bytes.Contains(raw, []byte(`"QUIZ-7"`)) {
			_, _ = w.Write([]byte(`{"success":true,"data":{"certificate":{"name":"Budi","certificate_number":"QUIZ-7","formatted_issue_date":"1 March 2025"},"verification":{"certificate_type":"quiz_certificate"}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"message":"Not found"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	srv := fakeAPI(t)
	load := func(*zap.Logger) (*configs.Config, error) {
		return &configs.Config{
			CertAPIBaseURL: srv.URL,
			CertAPITimeout: 5 * time.Second,
			CertRenderer:   "raster",
		}, nil
	}
	cmd := newRootCmd(load)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVerifyCommand(t *testing.T) {
	out, err := run(t, "verify", "QUIZ-7")
	require.NoError(t, err)
	assert.Contains(t, out, "Budi")
	assert.Contains(t, out, "quiz_certificate")
	assert.Contains(t, out, "1 March 2025")
}

func TestVerifyCommandNotFound(t *testing.T) {
	_, err := run(t, "verify", "NOPE")
	require.Error(t, err)
	assert.Equal(t, "Not found", err.Error())
}

func TestVerifyCommandNeedsArgument(t *testing.T) {
	_, err := run(t, "verify")
	assert.Error(t, err)
}

func TestExportCommandWritesPNG(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "export", "QUIZ-7", "--out", dir)
	require.NoError(t, err)

	p := filepath.Join(dir, "SIFS_Certificate_QUIZ-7.png")
	assert.Contains(t, out, p)
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestMigrateNeedsDatabase(t *testing.T) {
	_, err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
}
