package transform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writerFunc adapts a function to the Transformer interface.
type writerFunc func(ctx context.Context, req Request) Result

func (f writerFunc) Transform(ctx context.Context, req Request) Result { return f(ctx, req) }

func TestWriteAtomic_Success(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "a_pix.jpg")

	var staged string
	tr := writerFunc(func(_ context.Context, req Request) Result {
		staged = req.Output
		if err := os.WriteFile(req.Output, []byte("pixels"), 0o644); err != nil {
			return Result{Err: err}
		}
		return Result{}
	})

	res := WriteAtomic(context.Background(), tr, Request{Input: "a.png", Output: out})
	if !res.OK() {
		t.Fatalf("WriteAtomic: %v", res.Err)
	}
	if staged == out {
		t.Error("transform should write to a temp path, not the final output")
	}
	if !IsTemp(staged) || filepath.Ext(staged) != ".jpg" {
		t.Errorf("staged path %q should be hidden and keep .jpg", staged)
	}
	b, err := os.ReadFile(out)
	if err != nil || string(b) != "pixels" {
		t.Errorf("output content = %q, %v", b, err)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Errorf("temp file should be gone after rename, stat err = %v", err)
	}
}

// Backends truncate the staged file in place, so its mode is what the
// finished output ends up with.
func TestWriteAtomic_OutputIsWorldReadable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a_pix.jpg")
	tr := writerFunc(func(_ context.Context, req Request) Result {
		f, err := os.Create(req.Output)
		if err != nil {
			return Result{Err: err}
		}
		defer f.Close()
		_, err = f.WriteString("pixels")
		return Result{Err: err}
	})

	if res := WriteAtomic(context.Background(), tr, Request{Input: "a.png", Output: out}); !res.OK() {
		t.Fatalf("WriteAtomic: %v", res.Err)
	}
	fi, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := fi.Mode().Perm(); got != OutputPerm {
		t.Errorf("output mode = %v, want %v", got, OutputPerm)
	}
}

func TestWriteAtomic_FailureLeavesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a_pix.jpg")
	if err := os.WriteFile(out, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := writerFunc(func(_ context.Context, req Request) Result {
		os.WriteFile(req.Output, []byte("partial"), 0o644)
		return Result{ExitCode: 1, Err: &ExitError{Code: 1, Class: ErrCorruptInput}}
	})

	res := WriteAtomic(context.Background(), tr, Request{Output: out})
	if res.OK() {
		t.Fatal("expected failure")
	}
	if !errors.Is(res.Err, ErrCorruptInput) || !errors.Is(res.Err, ErrNonZeroExit) {
		t.Errorf("error classification lost: %v", res.Err)
	}
	b, _ := os.ReadFile(out)
	if string(b) != "old" {
		t.Errorf("existing output clobbered: %q", b)
	}
	assertNoTemps(t, dir)
}

func TestWriteAtomic_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a_pix.jpg")
	ctx, cancel := context.WithCancel(context.Background())

	tr := writerFunc(func(_ context.Context, req Request) Result {
		os.WriteFile(req.Output, []byte("x"), 0o644)
		cancel()
		return Result{}
	})

	res := WriteAtomic(ctx, tr, Request{Output: out})
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", res.Err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("cancelled transform must not publish output")
	}
	assertNoTemps(t, dir)
}

func TestExitError(t *testing.T) {
	e := &ExitError{Code: 1, Class: ErrNonZeroExit}
	if !errors.Is(e, ErrNonZeroExit) {
		t.Error("plain exit error should match ErrNonZeroExit")
	}
	if errors.Is(e, ErrUnsupportedFormat) {
		t.Error("plain exit error must not match ErrUnsupportedFormat")
	}
	if !strings.Contains(e.Error(), "exit 1") {
		t.Errorf("Error() = %q", e.Error())
	}
}

func assertNoTemps(t *testing.T, dir string) {
	t.Helper()
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if IsTemp(e.Name()) {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		w, h, down, up int
		sw, sh, ow, oh int
	}{
		{100, 60, 10, 500, 10, 6, 50, 30},
		{1920, 1080, 10, 300, 192, 108, 576, 324},
		{5, 5, 10, 500, 1, 1, 5, 5},
		{15, 25, 10, 500, 2, 3, 10, 15},
		{100, 100, 100, 100, 100, 100, 100, 100},
	}
	for _, tt := range tests {
		sw, sh, ow, oh := TargetSize(tt.w, tt.h, tt.down, tt.up)
		if sw != tt.sw || sh != tt.sh || ow != tt.ow || oh != tt.oh {
			t.Errorf("TargetSize(%d,%d,%d,%d) = %d,%d,%d,%d want %d,%d,%d,%d",
				tt.w, tt.h, tt.down, tt.up, sw, sh, ow, oh, tt.sw, tt.sh, tt.ow, tt.oh)
		}
	}
}
