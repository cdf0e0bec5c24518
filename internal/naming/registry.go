package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrPathTooLong is returned when the full output path would exceed the
// configured filesystem ceiling. Resolution fails rather than producing a
// truncated, possibly colliding name.
var ErrPathTooLong = errors.New("output path exceeds maximum length")

// Registry is the set of output filenames claimed within one batch. Claims
// are strictly serialized: two workers resolving the same desired name
// always receive distinct paths, whichever acquires the lock first getting
// the unsuffixed one. The registry is the only state shared between
// workers besides the queue and the results, and it is never read or
// written except through Resolve and Seed.
type Registry struct {
	mu      sync.Mutex
	dir     string
	ext     string
	maxPath int
	claimed map[string]struct{}
}

// NewRegistry creates a registry scoped to one batch writing files with
// the given extension into dir.
func NewRegistry(dir, ext string, maxPath int) *Registry {
	return &Registry{
		dir:     dir,
		ext:     ext,
		maxPath: maxPath,
		claimed: make(map[string]struct{}),
	}
}

// Seed pre-claims every name already present in the output directory, so
// a batch re-run into a non-empty directory never silently overwrites
// output from a previous run. Must be called before any worker starts.
func (r *Registry) Seed() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		r.claimed[entry.Name()] = struct{}{}
	}
	return nil
}

// Resolve claims a collision-free output path for the desired base name
// and returns it. renamed reports whether a " (n)" suffix had to be
// appended to avoid a collision. The claim is recorded before returning,
// so concurrent resolutions of the same base name are safe.
func (r *Registry) Resolve(base string) (path string, renamed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidate := base + r.ext
	if _, taken := r.claimed[candidate]; !taken {
		return r.claim(candidate, false)
	}

	for n := 1; ; n++ {
		candidate = fmt.Sprintf("%s (%d)%s", base, n, r.ext)
		if _, taken := r.claimed[candidate]; taken {
			continue
		}
		return r.claim(candidate, true)
	}
}

// claim validates the candidate's full path length and records the claim.
// Nothing is claimed when validation fails.
func (r *Registry) claim(name string, renamed bool) (string, bool, error) {
	full := filepath.Join(r.dir, name)
	if len(full) > r.maxPath {
		return "", false, ErrPathTooLong
	}
	r.claimed[name] = struct{}{}
	return full, renamed, nil
}
