package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/orizon-lang/derivcheck/internal/assert"
	"github.com/orizon-lang/derivcheck/internal/cli"
	"github.com/orizon-lang/derivcheck/internal/registry"
)

const goodProof = `% language: lm.sentential
1. P → Q :: P
2. P :: P
3. Q :: 1,2 →E
`

const badProof = `% language: lm.sentential
1. P → Q :: P
2. P :: P
3. P :: 1,2 →E
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCmd runs the tool with a configuration file that does not exist, so
// the defaults apply regardless of the working directory
func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if len(args) > 0 && args[0] != "version" && args[0] != "help" && args[0] != "init" {
		args = append([]string{args[0], "--config", filepath.Join(t.TempDir(), "none.yaml")}, args[1:]...)
	}
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestUsageErrors(t *testing.T) {
	code, _, stderr := runCmd(t)
	assert.Equal(t, code, 2)
	assert.Contains(t, stderr, "COMMANDS:")

	code, _, stderr = runCmd(t, "prove")
	assert.Equal(t, code, 2)
	assert.Contains(t, stderr, "unknown command: prove")

	code, _, _ = runCmd(t, "check")
	assert.Equal(t, code, 2)

	code, _, _ = runCmd(t, "check", "--no-such-flag", "x")
	assert.Equal(t, code, 2)
}

func TestVersionAndHelp(t *testing.T) {
	code, stdout, _ := runCmd(t, "version")
	assert.Equal(t, code, 0)
	assert.Contains(t, stdout, "derivcheck v"+cli.Version)

	code, stdout, _ = runCmd(t, "help", "check")
	assert.Equal(t, code, 0)
	assert.Contains(t, stdout, "derivcheck check - Check derivation files")
}

func TestCheckExitCodes(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.proof", goodProof)
	bad := writeFile(t, dir, "bad.proof", badProof)

	code, stdout, _ := runCmd(t, "check", good)
	assert.Equal(t, code, 0)
	assert.Contains(t, stdout, "fully checked")

	code, stdout, _ = runCmd(t, "check", "--color", "never", "--ruleset", "lm.nd@1", good, bad)
	assert.Equal(t, code, 1)
	assert.Contains(t, stdout, "[NO_APPLICABLE_FORM] Line 3 does not result from (1) and (2) by →E.")
	assert.Contains(t, stdout, "2 files, 6 lines")

	code, _, stderr := runCmd(t, "check", filepath.Join(dir, "missing.proof"))
	assert.Equal(t, code, 2)
	assert.Contains(t, stderr, "failed to read derivation file")

	code, _, stderr = runCmd(t, "check", "--ruleset", "lm.nope", good)
	assert.Equal(t, code, 2)
	assert.Contains(t, stderr, "not found")
}

func TestCheckReportSettings(t *testing.T) {
	dir := t.TempDir()
	messy := writeFile(t, dir, "messy.proof", badProof+"4. Q :: nonsense\n")

	code, stdout, _ := runCmd(t, "check", "--color", "never", "--max-errors", "1", messy)
	assert.Equal(t, code, 1)
	assert.Contains(t, stdout, "[NO_APPLICABLE_FORM]")
	assert.Contains(t, stdout, "1 more diagnostics not shown")

	cfg := writeFile(t, dir, "derivcheck.yaml", "report:\n  ignore_codes: [NO_APPLICABLE_FORM]\n")
	code, stdout, _ = runCmd(t, "check", "--color", "never", "--config", cfg, messy)
	assert.Equal(t, code, 1)
	assert.NotContains(t, stdout, "[NO_APPLICABLE_FORM]")
	assert.Contains(t, stdout, "2 of 4 lines failed")
}

func TestCheckJSON(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.proof", goodProof)
	bad := writeFile(t, dir, "bad.proof", badProof)

	code, stdout, _ := runCmd(t, "check", "--json", "--ruleset", "lm.nd@^2", good, bad)
	assert.Equal(t, code, 1)

	var got struct {
		Reports []struct {
			File    string `json:"file"`
			Ruleset string `json:"ruleset"`
		} `json:"reports"`
		Summary struct {
			Failed int `json:"failed"`
		} `json:"summary"`
	}
	if !assert.NoError(t, json.Unmarshal([]byte(stdout), &got)) {
		return
	}
	assert.Len(t, got.Reports, 2)
	assert.Equal(t, got.Reports[0].File, good)
	assert.Equal(t, got.Reports[1].Ruleset, "lm.nd@2.0.0")
	assert.Equal(t, got.Summary.Failed, 1)
}

func TestRulesCommand(t *testing.T) {
	code, stdout, _ := runCmd(t, "rules")
	assert.Equal(t, code, 0)
	assert.Contains(t, stdout, "lm.ad@1.0.0")
	assert.Contains(t, stdout, "lm.quantificational@1.0.0")

	code, stdout, _ = runCmd(t, "rules", "lm.nd@1")
	assert.Equal(t, code, 0)
	assert.Contains(t, stdout, "lm.nd@1.0.0")
	assert.Contains(t, stdout, "∧I")

	code, _, _ = runCmd(t, "rules", "lm.nope")
	assert.Equal(t, code, 2)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "derivcheck.yaml")
	code, _, _ := runCmd(t, "init", path)
	assert.Equal(t, code, 0)

	cfg, err := cli.LoadConfig(path)
	if assert.NoError(t, err) {
		assert.Equal(t, cfg.Ruleset, "lm.nd")
	}

	code, _, stderr := runCmd(t, "init", path)
	assert.Equal(t, code, 2)
	assert.Contains(t, stderr, "already exists")
}

func testEnv() *env {
	logger := cli.NewLogger(false, false)
	logger.Out = &bytes.Buffer{}
	return &env{cfg: cli.DefaultConfig(), logger: logger, reg: registry.Default()}
}

func TestSession(t *testing.T) {
	s := newSession(testEnv(), "lm.sentential", "lm.nd@1")
	var out bytes.Buffer

	for _, row := range []string{"P → Q :: P", "P :: P", "P :: 1,2 →E"} {
		assert.False(t, s.exec(row, &out))
	}
	assert.Contains(t, out.String(), "ok 1\n")
	assert.Contains(t, out.String(), "ok 2\n")
	assert.Contains(t, out.String(), "fail 3 [NO_APPLICABLE_FORM]")

	out.Reset()
	s.exec(":undo", &out)
	s.exec("Q :: 1,2 →E", &out)
	assert.Equal(t, out.String(), "ok 3\n")

	out.Reset()
	s.exec(":list", &out)
	assert.Equal(t, out.String(), "P → Q :: P\nP :: P\nQ :: 1,2 →E\n")

	out.Reset()
	s.exec(":check", &out)
	assert.Contains(t, out.String(), "fully checked")

	out.Reset()
	s.exec(":ruleset lm.nope", &out)
	assert.Contains(t, out.String(), "error:")
	assert.Equal(t, s.ruleset, "lm.nd@1")

	out.Reset()
	s.exec(":frobnicate", &out)
	assert.Contains(t, out.String(), "unknown command :frobnicate")

	assert.True(t, s.exec(":quit", &out))
}

func TestSessionHelpExample(t *testing.T) {
	s := newSession(testEnv(), "lm.sentential", "lm.nd@1")
	var out bytes.Buffer
	s.exec(":help", &out)

	var rows []string
	for _, line := range strings.Split(out.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" && line[0] >= '1' && line[0] <= '9' {
			rows = append(rows, line)
		}
	}
	if !assert.Len(t, rows, 2) {
		return
	}

	out.Reset()
	for _, row := range rows {
		s.exec(row, &out)
	}
	assert.Equal(t, out.String(), "ok 1\nok 2\n")
}

func TestSessionMalformedFormula(t *testing.T) {
	s := newSession(testEnv(), "lm.sentential", "lm.nd@1")
	var out bytes.Buffer
	s.exec("P → → Q :: P", &out)

	assert.Contains(t, out.String(), "fail 1 [MALFORMED_EXPRESSION]")
	assert.Contains(t, out.String(), "    P → → Q\n        ^\n")
}

func TestSessionSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.proof")
	s := newSession(testEnv(), "lm.sentential", "lm.nd@1")
	var out bytes.Buffer
	s.exec("P :: P", &out)
	s.exec("P ∨ Q :: 1 ∨I", &out)
	s.exec(":save "+path, &out)
	assert.Equal(t, out.String(), "ok 1\nok 2\n")

	other := newSession(testEnv(), "lm.sentential", "lm.nd@1")
	other.exec(":load "+path, &out)
	assert.Len(t, other.rows, 2)
	assert.Equal(t, other.rows[0], "1. P :: P")

	out.Reset()
	other.exec(":clear", &out)
	other.exec(":list", &out)
	assert.Equal(t, out.String(), "")
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mp.proof", goodProof)

	var out syncBuffer
	o := &checkOptions{color: "never", related: true}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.watchFiles(ctx, &out, testEnv(), 20*time.Millisecond, []string{path}) }()

	assert.Eventually(t, func() bool { return strings.Contains(out.String(), "fully checked") }, 2*time.Second, 10*time.Millisecond)
	writeFile(t, dir, "mp.proof", badProof)
	assert.Eventually(t, func() bool { return strings.Contains(out.String(), "NO_APPLICABLE_FORM") }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
