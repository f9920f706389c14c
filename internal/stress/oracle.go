package stress

import (
	"cmp"
	"slices"
)

// oracle keeps the expected keys sorted in the tree order.
type oracle struct {
	keys []int64
	cmp  func(a, b int64) int
}

func newOracle(capacity int, desc bool) *oracle {
	o := &oracle{
		keys: make([]int64, 0, capacity),
		cmp:  cmp.Compare[int64],
	}
	if desc {
		o.cmp = func(a, b int64) int {
			return cmp.Compare(b, a)
		}
	}
	return o
}

func (o *oracle) contains(key int64) bool {
	_, found := slices.BinarySearchFunc(o.keys, key, o.cmp)
	return found
}

func (o *oracle) insert(key int64) bool {
	i, found := slices.BinarySearchFunc(o.keys, key, o.cmp)
	if found {
		return false
	}
	o.keys = slices.Insert(o.keys, i, key)
	return true
}

func (o *oracle) remove(key int64) bool {
	i, found := slices.BinarySearchFunc(o.keys, key, o.cmp)
	if !found {
		return false
	}
	o.keys = slices.Delete(o.keys, i, i+1)
	return true
}
