// Package naming derives output paths for pixelated images, recognizes files
// that are already outputs (marker suffix), and tracks in-run output claims
// so two inputs that map to the same output are detected.
//
// Naming rules:
//
//	input:   <dir>/<stem>.<ext>
//	output:  <dir>/<stem><suffix>.<format>          (co-located, default)
//	         <outDir>/<rel dir>/<stem><suffix>.<format>  (with an output directory)
//
// A file is an output when its stem ends with the suffix and something
// precedes it, so "a_pix.jpg" is skipped but a file literally named
// "_pix.jpg" is still an input.
package naming
