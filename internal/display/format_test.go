package display

import (
	"strings"
	"testing"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/term"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
		{"typical photo 3.2 MiB", 3355443, "3.2 MiB"},
		{"pixelated thumbnail", 48230, "47.1 KiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatBytesWithSign(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"positive", 1024 * 1024, "+ 1.0 MiB"},
		{"negative", -1024 * 1024, "- 1.0 MiB"},
		{"zero", 0, "0 B"},
		{"shrunk batch", -5 * 1024 * 1024, "- 5.0 MiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytesWithSign(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytesWithSign(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestPrintBanner(t *testing.T) {
	term.Configure(config.ColorNever)
	var buf strings.Builder
	PrintBanner(&buf)
	if strings.Contains(buf.String(), "\033[") {
		t.Error("banner must not contain escape codes when colors are off")
	}
	if strings.Count(buf.String(), "\n") != 5 {
		t.Errorf("banner should be five lines, got:\n%s", buf.String())
	}
}

func TestFormatRatio(t *testing.T) {
	tests := []struct {
		out, in int64
		want    string
	}{
		{50, 100, "50%"},
		{250, 100, "250%"},
		{1, 3, "33%"},
		{10, 0, "n/a"},
	}
	for _, tt := range tests {
		if got := FormatRatio(tt.out, tt.in); got != tt.want {
			t.Errorf("FormatRatio(%d, %d) = %q, want %q", tt.out, tt.in, got, tt.want)
		}
	}
}
