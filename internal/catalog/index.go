package catalog

import (
	"slices"
	"sync"
)

// memoLimit bounds the number of cached filter results per Index. Search terms
// come straight from user input, so the key space is unbounded.
const memoLimit = 256

// Index owns one project list and memoizes everything derived from it: the
// category and technology facets are computed once, filter results are cached
// by criteria. It is safe for concurrent use.
type Index struct {
	projects     []Project
	categories   []string
	technologies []string

	mu   sync.Mutex
	memo map[Criteria][]Project
	hits uint64
}

func NewIndex(projects []Project) *Index {
	owned := slices.Clone(projects)
	return &Index{
		projects:     owned,
		categories:   Categories(owned),
		technologies: Technologies(owned),
		memo:         make(map[Criteria][]Project),
	}
}

func (ix *Index) Len() int { return len(ix.projects) }

func (ix *Index) Projects() []Project { return slices.Clone(ix.projects) }

func (ix *Index) Categories() []string { return slices.Clone(ix.categories) }

func (ix *Index) Technologies() []string { return slices.Clone(ix.technologies) }

// Filter is Filter over the indexed list, served from the memo when the same
// criteria were seen before.
func (ix *Index) Filter(c Criteria) []Project {
	key := c.Normalize()

	ix.mu.Lock()
	cached, ok := ix.memo[key]
	if ok {
		ix.hits++
	}
	ix.mu.Unlock()
	if ok {
		return slices.Clone(cached)
	}

	result := Filter(ix.projects, key)

	ix.mu.Lock()
	if len(ix.memo) >= memoLimit {
		clear(ix.memo)
	}
	ix.memo[key] = result
	ix.mu.Unlock()

	return slices.Clone(result)
}

// Hits returns how many Filter calls were answered from the memo.
func (ix *Index) Hits() uint64 {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.hits
}
