package planner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/probe"
)

func defaultCfg() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}

func TestBuildPlan_Defaults(t *testing.T) {
	plan := BuildPlan(defaultCfg(), "photos/a.png", nil, "photos/a_pix.jpg")

	if plan.Action != ActionPixelate {
		t.Errorf("Action = %v, want pixelate", plan.Action)
	}
	r := plan.Request
	if r.Input != "photos/a.png" || r.Output != "photos/a_pix.jpg" {
		t.Errorf("request paths = %q -> %q", r.Input, r.Output)
	}
	if r.Downscale != 10 || r.Upscale != 500 || r.Format != "jpg" {
		t.Errorf("request = %+v, want 10%%/500%% jpg", r)
	}
	if plan.Dimensions() != "" {
		t.Errorf("Dimensions() = %q, want empty without probe info", plan.Dimensions())
	}
}

func TestBuildPlan_TargetSizes(t *testing.T) {
	cfg := defaultCfg()
	cfg.UpscalePercent = 300
	info := &probe.ImageInfo{Width: 1920, Height: 1080}

	plan := BuildPlan(cfg, "a.jpg", info, "a_pix.jpg")
	if plan.SmallWidth != 192 || plan.SmallHeight != 108 {
		t.Errorf("small = %dx%d, want 192x108", plan.SmallWidth, plan.SmallHeight)
	}
	if plan.OutWidth != 576 || plan.OutHeight != 324 {
		t.Errorf("out = %dx%d, want 576x324", plan.OutWidth, plan.OutHeight)
	}
	if want := "1920x1080 -> 192x108 -> 576x324"; plan.Dimensions() != want {
		t.Errorf("Dimensions() = %q, want %q", plan.Dimensions(), want)
	}
}

func TestBuildPlan_SkipExisting(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a_pix.jpg")
	os.WriteFile(out, []byte("x"), 0o644)

	tests := []struct {
		name         string
		skipExisting bool
		output       string
		want         Action
	}{
		{"exists, flag off", false, out, ActionPixelate},
		{"exists, flag on", true, out, ActionSkipExisting},
		{"missing, flag on", true, filepath.Join(dir, "b_pix.jpg"), ActionPixelate},
		{"directory is not an output", true, dir, ActionPixelate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultCfg()
			cfg.SkipExisting = tt.skipExisting
			plan := BuildPlan(cfg, "a.png", nil, tt.output)
			if plan.Action != tt.want {
				t.Errorf("Action = %v, want %v", plan.Action, tt.want)
			}
			if tt.want == ActionSkipExisting && !strings.Contains(plan.SkipReason, "a_pix.jpg") {
				t.Errorf("SkipReason = %q", plan.SkipReason)
			}
		})
	}
}

func TestAction_String(t *testing.T) {
	if ActionPixelate.String() != "pixelate" || ActionSkipExisting.String() != "skip-existing" {
		t.Error("unexpected action names")
	}
	if Action(9).String() != "Action(9)" {
		t.Errorf("unknown action = %q", Action(9).String())
	}
}
