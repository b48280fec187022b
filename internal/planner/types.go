package planner

import (
	"fmt"

	"github.com/backmassage/pixmaster/internal/transform"
)

// Action describes the per-file processing decision.
type Action int

const (
	ActionPixelate Action = iota
	ActionSkipExisting
)

func (a Action) String() string {
	switch a {
	case ActionPixelate:
		return "pixelate"
	case ActionSkipExisting:
		return "skip-existing"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// FilePlan holds every decision for one input file. Source dimensions are
// zero when the input was not probed.
type FilePlan struct {
	Action     Action
	SkipReason string

	InputPath  string
	OutputPath string
	Request    transform.Request

	SrcWidth, SrcHeight     int
	SmallWidth, SmallHeight int
	OutWidth, OutHeight     int
}

// Dimensions renders the size chain, e.g. "1920x1080 -> 192x108 -> 960x540".
// It returns "" when the source size is unknown.
func (p *FilePlan) Dimensions() string {
	if p.SrcWidth <= 0 || p.SrcHeight <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d -> %dx%d -> %dx%d",
		p.SrcWidth, p.SrcHeight, p.SmallWidth, p.SmallHeight, p.OutWidth, p.OutHeight)
}
