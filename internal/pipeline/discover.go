package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/pixmaster/internal/naming"
	"github.com/backmassage/pixmaster/internal/transform"
)

// Entry is one file eligible for pixelation.
type Entry struct {
	Path string
	Dir  string
	Stem string // Base name without its final extension.
}

func newEntry(path string) Entry {
	return Entry{Path: path, Dir: filepath.Dir(path), Stem: naming.Stem(path)}
}

// DiscoverOptions controls which files Discover returns.
type DiscoverOptions struct {
	Suffix     string   // Output marker; files whose stem ends with it are skipped.
	Extensions []string // Lowercase ".ext" allow-list; empty admits every file.
	Prune      []string // Directories (outputs) never descended into.
}

// Discover walks root and returns every eligible file, sorted by path.
// Unreadable paths are collected in the second return value and skipped;
// the walk continues past them.
func Discover(root string, opts DiscoverOptions) ([]Entry, []error) {
	var (
		entries []Entry
		errs    []error
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && opts.pruned(path, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			fi, err := os.Stat(path)
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			if fi.IsDir() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		if opts.Eligible(path) {
			entries = append(entries, newEntry(path))
		}
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, errs
}

// Eligible reports whether a file path should be pixelated.
func (o DiscoverOptions) Eligible(path string) bool {
	base := filepath.Base(path)
	if isHidden(base) || transform.IsTemp(base) {
		return false
	}
	if naming.IsProcessed(path, o.Suffix) {
		return false
	}
	if len(o.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range o.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (o DiscoverOptions) pruned(path, name string) bool {
	if isHidden(name) {
		return true
	}
	for _, p := range o.Prune {
		if p != "" && filepath.Clean(path) == filepath.Clean(p) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}
