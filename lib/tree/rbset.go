package tree

import (
	"iter"
	"slices"

	"github.com/benz9527/xrbtree/lib/infra"
)

var _ RBSet[int] = (*rbSet[int])(nil)

type rbSet[K infra.OrderedKey] struct {
	tree *rbTree[K, struct{}]
}

func (set *rbSet[K]) Len() int64 {
	return set.tree.Len()
}

func (set *rbSet[K]) Insert(key K) error {
	return set.tree.Insert(key, struct{}{})
}

// InsertAll returns the rejected duplicate keys in encounter order.
func (set *rbSet[K]) InsertAll(keys ...K) []K {
	return set.tree.InsertAll(func(yield func(K, struct{}) bool) {
		for key := range slices.Values(keys) {
			if !yield(key, struct{}{}) {
				return
			}
		}
	})
}

func (set *rbSet[K]) Remove(key K) (K, bool) {
	node, ok := set.tree.Remove(key)
	if !ok {
		var zero K
		return zero, false
	}
	return node.Key(), true
}

func (set *rbSet[K]) Find(key K) RBNode[K, struct{}] {
	return set.tree.Find(key)
}

func (set *rbSet[K]) Contains(key K) bool {
	return set.tree.Contains(key)
}

func (set *rbSet[K]) Min() (K, bool) {
	return keyOf(set.tree.Min())
}

func (set *rbSet[K]) Max() (K, bool) {
	return keyOf(set.tree.Max())
}

func (set *rbSet[K]) Predecessor(node RBNode[K, struct{}]) RBNode[K, struct{}] {
	return set.tree.Pred(node)
}

func (set *rbSet[K]) Successor(node RBNode[K, struct{}]) RBNode[K, struct{}] {
	return set.tree.Succ(node)
}

func (set *rbSet[K]) Keys() iter.Seq[K] {
	return set.tree.Keys()
}

func (set *rbSet[K]) Iterator() RBIterator[K, struct{}] {
	return set.tree.Iterator()
}

func (set *rbSet[K]) Tree() RBTree[K, struct{}] {
	return set.tree
}

func keyOf[K infra.OrderedKey](node RBNode[K, struct{}]) (K, bool) {
	if node == nil {
		var zero K
		return zero, false
	}
	return node.Key(), true
}

func NewRBSet[K infra.OrderedKey](opts ...RBTreeOpt[K, struct{}]) RBSet[K] {
	return &rbSet[K]{
		tree: newRBTree[K, struct{}](opts...),
	}
}

// NewRBSetFrom bulk loads the keys and returns the skipped duplicates.
func NewRBSetFrom[K infra.OrderedKey](keys []K, opts ...RBTreeOpt[K, struct{}]) (RBSet[K], []K) {
	set := NewRBSet[K](opts...)
	return set, set.InsertAll(keys...)
}
