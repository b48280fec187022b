package naming

import (
	"path/filepath"
	"strings"
)

// OutputOptions carries the naming parameters shared by every file in a run.
type OutputOptions struct {
	InputRoot string // Root of the scanned tree; only used with OutputDir.
	OutputDir string // Empty: co-locate outputs with inputs.
	Suffix    string // Marker appended to the stem, e.g. "_pix".
	Format    string // Output extension without dot, e.g. "jpg".
}

// Stem returns the base name of path with its final extension removed.
// Dotfiles such as ".hidden" keep their whole name, and so does a name whose
// only dot is its first character.
func Stem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return base
	}
	return stem
}

// GetOutputPath builds the output path for input.
//
//	assets/photography/a.png -> assets/photography/a_pix.jpg
func GetOutputPath(input string, opts OutputOptions) string {
	dir := filepath.Dir(input)
	if opts.OutputDir != "" {
		dir = mirrorDir(dir, opts.InputRoot, opts.OutputDir)
	}
	return filepath.Join(dir, Stem(input)+opts.Suffix+"."+opts.Format)
}

// mirrorDir maps dir (inside root) to the same relative location under
// outDir. Directories outside root collapse to outDir itself.
func mirrorDir(dir, root, outDir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return outDir
	}
	return filepath.Join(outDir, rel)
}

// IsProcessed reports whether path names an output of a previous run: its
// stem ends with suffix and has at least one character before it.
func IsProcessed(path, suffix string) bool {
	if suffix == "" {
		return false
	}
	stem := Stem(path)
	return len(stem) > len(suffix) && strings.HasSuffix(stem, suffix)
}
