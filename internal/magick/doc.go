// Package magick builds and executes ImageMagick commands for pixelation.
//
// The command is assembled as an argv slice and run without a shell, so
// paths containing spaces, quotes or shell metacharacters reach the tool
// verbatim:
//
//	convert <input>[0] -scale 10% -scale 500% [-quality N] jpeg:<output>
//
// stderr is always captured; on failure it is classified into the
// transform package's sentinel errors.
package magick
