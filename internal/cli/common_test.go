package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/orizon-lang/derivcheck/internal/assert"
)

func fixedLogger(verbose, debug bool) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(verbose, debug)
	l.Out = &buf
	l.now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }
	return l, &buf
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name           string
		verbose, debug bool
		want           []string
	}{
		{"quiet", false, false, []string{"[WARN] 15:04:05: w", "[ERROR] 15:04:05: e"}},
		{"verbose", true, false, []string{"[INFO] 15:04:05: i", "[WARN] 15:04:05: w", "[ERROR] 15:04:05: e"}},
		{"debug", false, true, []string{"[INFO] 15:04:05: i", "[DEBUG] 15:04:05: d", "[WARN] 15:04:05: w", "[ERROR] 15:04:05: e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := fixedLogger(tt.verbose, tt.debug)
			l.Info("i")
			l.Debug("d")
			l.Warn("w")
			l.Error("e")
			got := strings.Split(strings.TrimSpace(buf.String()), "\n")
			assert.DeepEqual(t, got, tt.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
	if assert.NoError(t, err) {
		assert.Equal(t, cfg.Ruleset, "lm.nd")
		assert.Equal(t, cfg.Watch.Debounce, 200*time.Millisecond)
	}

	path := filepath.Join(dir, "derivcheck.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(`
verbose: true
ruleset: lm.nd@^1
color: never
serve:
  addr: ":9443"
watch:
  debounce: 50ms
report:
  ignore_codes: [PREMISE_ORDER]
  max_errors: 5
`), 0o644))
	cfg, err = LoadConfig(path)
	if assert.NoError(t, err) {
		assert.True(t, cfg.Verbose)
		assert.Equal(t, cfg.Ruleset, "lm.nd@^1")
		assert.Equal(t, cfg.Language, "lm.quantificational")
		assert.Equal(t, cfg.Color, ColorNever)
		assert.Equal(t, cfg.Serve.Addr, ":9443")
		assert.Equal(t, cfg.Watch.Debounce, 50*time.Millisecond)
		assert.DeepEqual(t, cfg.Report.IgnoreCodes, []string{"PREMISE_ORDER"})
		assert.Equal(t, cfg.Report.MaxErrors, 5)
	}

	assert.NoError(t, os.WriteFile(path, []byte("color: sometimes\n"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	assert.NoError(t, os.WriteFile(path, []byte("report:\n  ignore_codes: [TYPO]\n"), 0o644))
	_, err = LoadConfig(path)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), `unknown diagnostic code "TYPO"`)
	}

	assert.NoError(t, os.WriteFile(path, []byte("verbose: [\n"), 0o644))
	_, err = LoadConfig(path)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "failed to parse config file")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Debug = true
	cfg.Serve.Cert = "cert.pem"
	assert.NoError(t, cfg.SaveConfig(path))

	got, err := LoadConfig(path)
	if assert.NoError(t, err) {
		assert.DeepEqual(t, got, cfg)
	}
}

func TestUseColor(t *testing.T) {
	assert.True(t, UseColor(ColorAlways, nil))
	assert.False(t, UseColor(ColorNever, os.Stdout))

	f, err := os.CreateTemp(t.TempDir(), "out")
	if assert.NoError(t, err) {
		defer f.Close()
		assert.False(t, UseColor(ColorAuto, f), "a regular file is not a terminal")
	}
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintVersion(&buf, "derivcheck", false)
	assert.Contains(t, buf.String(), "derivcheck v"+Version)

	buf.Reset()
	PrintVersion(&buf, "derivcheck", true)
	assert.Contains(t, buf.String(), `"tool": "derivcheck"`)
}
