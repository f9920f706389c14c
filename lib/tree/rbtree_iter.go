package tree

import (
	"iter"
	"math/bits"

	"github.com/benz9527/xrbtree/lib/infra"
)

// maxHeight is the upper bound of a rbtree height, 2*log2(n+1).
func maxHeight(size int64) int {
	if size <= 0 {
		return 0
	}
	return 2 * bits.Len64(uint64(size)+1)
}

// rbWalker is the inorder traversal with an explicit stack.
// The stack holds the pending ancestors only, O(height) memory.
type rbWalker[K infra.OrderedKey, V any] struct {
	tree    *rbTree[K, V]
	stack   []*rbNode[K, V]
	version uint64
	reverse bool
}

func newRBWalker[K infra.OrderedKey, V any](tree *rbTree[K, V], reverse bool) *rbWalker[K, V] {
	w := &rbWalker[K, V]{
		tree:    tree,
		reverse: reverse,
		stack:   make([]*rbNode[K, V], 0, maxHeight(tree.Len())),
	}
	w.reset()
	return w
}

func (w *rbWalker[K, V]) reset() {
	clear(w.stack)
	w.stack = w.stack[:0]
	w.version = w.tree.version
	w.push(w.tree.root)
}

func (w *rbWalker[K, V]) push(aux *rbNode[K, V]) {
	for aux != nil {
		w.stack = append(w.stack, aux)
		if w.reverse {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
}

// next returns nil when the walk is exhausted.
func (w *rbWalker[K, V]) next() (*rbNode[K, V], error) {
	if w.version != w.tree.version {
		return nil, ErrRBTreeIteratorInvalidated
	}
	size := len(w.stack)
	if size == 0 {
		return nil, nil
	}
	aux := w.stack[size-1]
	w.stack[size-1] = nil
	w.stack = w.stack[:size-1]
	if w.reverse {
		w.push(aux.left)
	} else {
		w.push(aux.right)
	}
	return aux, nil
}

func (w *rbWalker[K, V]) release() {
	clear(w.stack)
	w.stack = nil
}

var _ RBIterator[int, struct{}] = (*rbIterator[int, struct{}])(nil)

type rbIterator[K infra.OrderedKey, V any] struct {
	walker *rbWalker[K, V]
	cur    *rbNode[K, V]
	err    error
}

func (it *rbIterator[K, V]) Next() bool {
	if it.err != nil {
		return false
	}
	it.cur, it.err = it.walker.next()
	return it.cur != nil
}

func (it *rbIterator[K, V]) Key() K {
	if it.cur == nil {
		var zero K
		return zero
	}
	return it.cur.key
}

func (it *rbIterator[K, V]) Val() V {
	if it.cur == nil {
		var zero V
		return zero
	}
	return it.cur.val
}

func (it *rbIterator[K, V]) Err() error {
	return it.err
}

// Reset restarts the walk from the first key of the current tree.
func (it *rbIterator[K, V]) Reset() {
	it.cur, it.err = nil, nil
	it.walker.reset()
}

func (tree *rbTree[K, V]) Iterator() RBIterator[K, V] {
	return &rbIterator[K, V]{
		walker: newRBWalker(tree, false),
	}
}

// Keys panics if the tree is mutated inside the range loop body.
func (tree *rbTree[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for node := range tree.walk(false) {
			if !yield(node.key) {
				return
			}
		}
	}
}

func (tree *rbTree[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for node := range tree.walk(false) {
			if !yield(node.key, node.val) {
				return
			}
		}
	}
}

func (tree *rbTree[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for node := range tree.walk(true) {
			if !yield(node.key, node.val) {
				return
			}
		}
	}
}

func (tree *rbTree[K, V]) walk(reverse bool) iter.Seq[*rbNode[K, V]] {
	return func(yield func(*rbNode[K, V]) bool) {
		w := newRBWalker(tree, reverse)
		defer w.release()
		for {
			aux, err := w.next()
			if err != nil {
				panic(err)
			}
			if aux == nil || !yield(aux) {
				return
			}
		}
	}
}
