package catalog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexMemoizesEquivalentCriteria(t *testing.T) {
	ix := NewIndex(testProjects())

	first := ix.Filter(Criteria{Technology: "React"})
	second := ix.Filter(Criteria{Category: All, Technology: "React"})

	assert.Equal(t, first, second)
	assert.Equal(t, uint64(1), ix.Hits())
}

func TestIndexResultsAreIndependentCopies(t *testing.T) {
	ix := NewIndex(testProjects())

	got := ix.Filter(Criteria{})
	got[0] = Project{Slug: "mutated"}

	again := ix.Filter(Criteria{})
	assert.Equal(t, "a", again[0].Slug)
	assert.Equal(t, "a", ix.Projects()[0].Slug)
}

func TestIndexOwnsItsList(t *testing.T) {
	src := testProjects()
	ix := NewIndex(src)
	src[0] = Project{Slug: "mutated"}

	assert.Equal(t, "a", ix.Projects()[0].Slug)
	assert.Equal(t, 4, ix.Len())
}

func TestIndexFacets(t *testing.T) {
	ix := NewIndex(testProjects())

	cats := ix.Categories()
	cats[0] = "mutated"

	assert.Equal(t, Categories(testProjects()), ix.Categories())
	assert.Equal(t, Technologies(testProjects()), ix.Technologies())
}

func TestIndexMemoIsBounded(t *testing.T) {
	ix := NewIndex(testProjects())
	for i := 0; i < memoLimit+10; i++ {
		ix.Filter(Criteria{Search: fmt.Sprintf("term-%d", i)})
	}

	ix.mu.Lock()
	size := len(ix.memo)
	ix.mu.Unlock()
	assert.LessOrEqual(t, size, memoLimit)
}

func TestIndexConcurrentFilter(t *testing.T) {
	ix := NewIndex(testProjects())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := Criteria{Search: []string{"react", "horn", ""}[i%3]}
			assert.Equal(t, Filter(testProjects(), c), ix.Filter(c))
		}(i)
	}
	wg.Wait()
}
