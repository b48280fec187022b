package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/backmassage/pixmaster/internal/config"
)

// recordingLogger collects log lines by level.
type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) add(level, format string, args ...any) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Info(f string, a ...any)    { r.add("INFO", f, a...) }
func (r *recordingLogger) Success(f string, a ...any) { r.add("SUCCESS", f, a...) }
func (r *recordingLogger) Warn(f string, a ...any)    { r.add("WARN", f, a...) }
func (r *recordingLogger) Error(f string, a ...any)   { r.add("ERROR", f, a...) }
func (r *recordingLogger) Debug(f string, a ...any)   { r.add("DEBUG", f, a...) }

func (r *recordingLogger) has(prefix, substr string) bool {
	for _, l := range r.lines {
		if strings.HasPrefix(l, prefix) && strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func nativeCfg() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendNative
	return &cfg
}

func TestCheckDeps_Native(t *testing.T) {
	if err := CheckDeps(context.Background(), nativeCfg()); err != nil {
		t.Errorf("CheckDeps(native) = %v", err)
	}
}

func TestCheckDeps_ToolMissing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tool = filepath.Join(t.TempDir(), "no-such-convert")

	err := CheckDeps(context.Background(), &cfg)
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("err = %v, want ErrToolNotFound", err)
	}
}

func TestCheckDeps_ToolBroken(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	script := filepath.Join(t.TempDir(), "broken-convert")
	body := "#!/bin/sh\necho 'convert: delegate library support not built-in' >&2\nexit 1\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Tool = script

	err := CheckDeps(context.Background(), &cfg)
	if !errors.Is(err, ErrToolTestFailed) {
		t.Errorf("err = %v, want ErrToolTestFailed", err)
	}
	if err != nil && !strings.Contains(err.Error(), "delegate library") {
		t.Errorf("err should carry the tool's last line: %v", err)
	}
}

func TestCheckDeps_ImageMagick(t *testing.T) {
	if _, err := exec.LookPath("convert"); err != nil {
		t.Skip("convert not available")
	}
	cfg := config.DefaultConfig()
	if err := CheckDeps(context.Background(), &cfg); err != nil {
		t.Errorf("CheckDeps = %v", err)
	}
}

func TestRunCheck_Native(t *testing.T) {
	log := &recordingLogger{}
	RunCheck(context.Background(), nativeCfg(), log)

	if !log.has("INFO", "webp") {
		t.Errorf("decoder list not logged: %v", log.lines)
	}
	if !log.has("SUCCESS", "Test pixelation works") {
		t.Errorf("test pixelation not reported: %v", log.lines)
	}
}

func TestRunCheck_ToolMissing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tool = "convert-does-not-exist"
	log := &recordingLogger{}
	RunCheck(context.Background(), &cfg, log)

	if !log.has("ERROR", "convert-does-not-exist not found") {
		t.Errorf("missing tool not reported: %v", log.lines)
	}
	if !log.has("ERROR", "Test pixelation failed") {
		t.Errorf("test failure not reported: %v", log.lines)
	}
}
