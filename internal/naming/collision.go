package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/backmassage/pixmaster/internal/config"
)

// CollisionResolver tracks output paths claimed by input files during one
// pipeline run. With [config.CollisionOverwrite] the latest claimant takes
// the path and the displaced owner is reported; with [config.CollisionDedupe]
// later claimants get a " - dupN" variant inserted before the marker suffix,
// so deduped outputs are still recognized by [IsProcessed]. All methods are
// goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	policy   config.CollisionPolicy
	suffix   string
	owners   map[string]string            // output path → input path that owns it
	claims   map[string]map[string]string // base output path → input → deduped output
	counters map[string]int               // base output path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver(policy config.CollisionPolicy, suffix string) *CollisionResolver {
	return &CollisionResolver{
		policy:   policy,
		suffix:   suffix,
		owners:   make(map[string]string),
		claims:   make(map[string]map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final output path for input and, under the overwrite
// policy, the input previously owning that path ("" when there was none).
// If requestedOutput is unclaimed (or already owned by input), it is
// returned as-is.
func (cr *CollisionResolver) Resolve(input, requestedOutput string) (output, displaced string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	owner, exists := cr.owners[requestedOutput]
	if !exists || owner == input {
		cr.owners[requestedOutput] = input
		return requestedOutput, ""
	}

	if cr.policy != config.CollisionDedupe {
		cr.owners[requestedOutput] = input
		return requestedOutput, owner
	}

	if prev, ok := cr.claims[requestedOutput][input]; ok {
		return prev, ""
	}

	dir := filepath.Dir(requestedOutput)
	base := filepath.Base(requestedOutput)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(strings.TrimSuffix(base, ext), cr.suffix)

	counter := cr.counters[requestedOutput]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s%s", stem, counter, cr.suffix, ext))
		cOwner, cExists := cr.owners[candidate]
		if !cExists || cOwner == input {
			cr.counters[requestedOutput] = counter + 1
			cr.owners[candidate] = input
			if cr.claims[requestedOutput] == nil {
				cr.claims[requestedOutput] = make(map[string]string)
			}
			cr.claims[requestedOutput][input] = candidate
			return candidate, ""
		}
		counter++
	}
}
