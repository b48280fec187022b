// Package probe reads image headers to report format and dimensions without
// decoding pixel data.
package probe
