package coordinator

import (
	"sort"
	"sync"
)

// pathLocks serializes operations per document path. The lock set for
// one logical operation is acquired in sorted order, so two operations
// sharing the ledger or a day note cannot deadlock. Scoped to the
// coordinator's lifetime; it does not protect against an external editor
// writing the same file outside the process.
type pathLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newPathLocks() *pathLocks {
	return &pathLocks{m: make(map[string]*sync.Mutex)}
}

func (p *pathLocks) get(path string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.m[path]
	if !ok {
		l = &sync.Mutex{}
		p.m[path] = l
	}
	return l
}

// acquire locks every path (deduplicated, in sorted order) and returns
// the release function.
func (p *pathLocks) acquire(paths ...string) func() {
	uniq := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		uniq = append(uniq, path)
	}
	sort.Strings(uniq)

	locks := make([]*sync.Mutex, len(uniq))
	for i, path := range uniq {
		locks[i] = p.get(path)
		locks[i].Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}
