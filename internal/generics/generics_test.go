package generics

import (
	"github.com/stretchr/testify/assert"
	"slices"
	"testing"
)

func TestSortedKeys(t *testing.T) {
	m := map[int]string{1: "1", 5: "5", 3: "3"}
	// Since the builtin map iterator in Go is deliberately non-deterministic, we
	// run it a bunch of times to show it is stably sorted.
	want := []int{1, 3, 5}
	for range 100 {
		got := slices.Collect(SortedKeys(m))
		if !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestSliceMapAndMean(t *testing.T) {
	in := []int{1, 2, 3}
	assert.Equal(t, []string{"1", "22", "333"}, SliceMap(in, func(e int) string {
		return string(slices.Repeat([]byte{byte('0' + e)}, e))
	}))
	assert.InDelta(t, 2.0, Mean(in, func(e int) float32 { return float32(e) }), 1e-6)
	assert.Equal(t, float32(0), Mean([]int(nil), func(e int) float32 { return float32(e) }))
}

func TestSet(t *testing.T) {
	// Sets are created empty.
	s := MakeSet[int](10)
	assert.Len(t, s, 0)

	// Check inserting and recovery.
	s.Insert(3, 7)
	assert.Len(t, s, 2)
	assert.True(t, s.Has(3))
	assert.True(t, s.Has(7))
	assert.False(t, s.Has(5))

	s2 := SetWith(5, 7)
	assert.Len(t, s2, 2)
	assert.True(t, s2.Has(5))
	assert.False(t, s2.Has(3))
	assert.False(t, s.Equal(s2))

	delete(s2, 5)
	s2.Insert(3)
	assert.True(t, s.Equal(s2))
}
