// File: cmd/cosctl/cmd_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosctl/internal/config"
	"cosctl/pkg/archive"
)

const restoredHeader = `ongoing-request="false", expiry-date="Fri, 18 Dec 2026 00:00:00 GMT"`

func newTestApp(t *testing.T, stdin string) *appContainer {
	t.Helper()
	manager := config.NewConfigManagerAt(filepath.Join(t.TempDir(), config.ConfigFileName))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := buildApp(manager, strings.NewReader(stdin), io.Discard, logger)
	require.NoError(t, err)
	return app
}

// execute runs the root command with args and returns what it wrote to stdout
func execute(t *testing.T, app *appContainer, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(withApp(context.Background(), app))
	return out.String(), err
}

func TestArchiveDecode_Flags(t *testing.T) {
	app := newTestApp(t, "")

	out, err := execute(t, app, "", "archive", "decode",
		"--storage-class", "GLACIER",
		"--restore", restoredHeader,
		"-o", "json")
	require.NoError(t, err)

	var status archive.Status
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, archive.StateRestored, status.State)
	assert.False(t, status.OngoingRestore)
	assert.Equal(t, "Fri, 18 Dec 2026 00:00:00 GMT", status.RestoreExpiryDate)
}

func TestArchiveDecode_FromStdin(t *testing.T) {
	app := newTestApp(t, "")
	input := `{"StorageClass": "GLACIER", "Restore": "ongoing-request=\"true\""}`

	out, err := execute(t, app, input, "archive", "decode", "--from", "-", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "state: restoring")
	assert.Contains(t, out, "ongoingRestore: true")
}

func TestArchiveDecode_FromFile(t *testing.T) {
	app := newTestApp(t, "")
	path := filepath.Join(t.TempDir(), "head.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"StorageClass": "STANDARD"}`), 0o600))

	out, err := execute(t, app, "", "archive", "decode", "--from", path)
	require.NoError(t, err)
	assert.Contains(t, out, "normal")
}

func TestArchiveDecode_InvalidField(t *testing.T) {
	app := newTestApp(t, "")

	_, err := execute(t, app, `{"Restore": 42}`, "archive", "decode", "--from", "-")
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrInvalidInput)
}

func TestArchiveDecode_FromExcludesFlags(t *testing.T) {
	app := newTestApp(t, "")

	_, err := execute(t, app, "{}", "archive", "decode", "--from", "-", "--restore", "x")
	assert.Error(t, err)
}

func TestOutputFlag_Invalid(t *testing.T) {
	app := newTestApp(t, "")

	_, err := execute(t, app, "", "archive", "decode", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestConfigCommands(t *testing.T) {
	app := newTestApp(t, "")

	out, err := execute(t, app, "", "config", "set", "cos.bucket", "demo-bucket")
	require.NoError(t, err)
	assert.Contains(t, out, "cos.bucket = demo-bucket")

	out, err = execute(t, app, "", "config", "set", "cos.apikey", "supersecretkey1234")
	require.NoError(t, err)
	assert.NotContains(t, out, "supersecretkey1234")
	assert.Contains(t, out, "1234")

	out, err = execute(t, app, "", "config", "get", "cos.bucket")
	require.NoError(t, err)
	assert.Contains(t, out, "demo-bucket")

	out, err = execute(t, app, "", "config", "list", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "demo-bucket")
	assert.NotContains(t, out, "supersecretkey1234")

	_, err = execute(t, app, "", "config", "set", "unknown.key", "x")
	assert.Error(t, err)
}

func TestBucketOrDefault(t *testing.T) {
	app := newTestApp(t, "")

	_, err := bucketOrDefault(app, "")
	assert.Error(t, err)

	name, err := bucketOrDefault(app, "given")
	require.NoError(t, err)
	assert.Equal(t, "given", name)

	app.Config.COS.Bucket = "configured"
	name, err = bucketOrDefault(app, "")
	require.NoError(t, err)
	assert.Equal(t, "configured", name)
}

func TestProviderOrDefault(t *testing.T) {
	app := newTestApp(t, "")

	assert.Equal(t, "cos", providerOrDefault(app, ""))
	assert.Equal(t, "aws", providerOrDefault(app, "AWS"))

	app.Config.Workflow.Provider = "gcp"
	assert.Equal(t, "gcp", providerOrDefault(app, ""))
}

func TestResolveProvidersForList_Unsupported(t *testing.T) {
	app := newTestApp(t, "")

	_, err := resolveProvidersForList([]string{"azure"}, app.ProviderFactory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported providers")
}

func TestResolveProvidersForList_NotConfigured(t *testing.T) {
	app := newTestApp(t, "")

	_, err := resolveProvidersForList([]string{"gcp"}, app.ProviderFactory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestBucketDelete_Cancelled(t *testing.T) {
	app := newTestApp(t, "wrong-name\n")

	out, err := execute(t, app, "", "bucket", "delete", "demo", "-p", "cos")
	require.NoError(t, err)
	assert.Contains(t, out, "Deletion cancelled.")
}

func TestEndpointsURL(t *testing.T) {
	cfg := &config.Config{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Equal(t, "https://control.cloud-object-storage.cloud.ibm.com/v2/endpoints", endpointsURL(cfg, logger))

	cfg.COS.EndpointsURL = "https://example.test/endpoints"
	assert.Equal(t, "https://example.test/endpoints", endpointsURL(cfg, logger))
}
