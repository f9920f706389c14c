package tree

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xrbtree/lib/infra"
)

func isBlack[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node != nil && node.Color() == Red
}

func blackDepthTo[K infra.OrderedKey, V any](target, to RBNode[K, V]) int {
	depth := 0
	for aux := target; aux != nil && aux != to; aux = aux.Parent() {
		if isBlack[K, V](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// inorder walks the tree through the public node handles, so the
// validators never trust the internal links they are checking.
func inorder[K infra.OrderedKey, V any](tree RBTree[K, V], action func(node RBNode[K, V]) error) error {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	stack := make([]RBNode[K, V], 0, maxHeight(tree.Len()))
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		if err := action(aux); err != nil {
			return err
		}
		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

// RedViolationValidate checks the black root and that no red node
// has a red child.
func RedViolationValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	if root := tree.Root(); isRed[K, V](root) {
		return infra.WrapErrorStackWithMessage(ErrRBTreeRedViolation,
			fmt.Sprintf("root %v is red", root.Key()),
		)
	}
	return inorder[K, V](tree, func(node RBNode[K, V]) error {
		if !isRed[K, V](node) {
			return nil
		}
		if isRed[K, V](node.Left()) || isRed[K, V](node.Right()) {
			return infra.WrapErrorStackWithMessage(ErrRBTreeRedViolation,
				fmt.Sprintf("red node %v has a red child", node.Key()),
			)
		}
		return nil
	})
}

// BFS traversal to load all nodes owning a NIL leaf.
func bfsLeaves[K infra.OrderedKey, V any](tree RBTree[K, V]) []RBNode[K, V] {
	size := tree.Len()
	var aux RBNode[K, V] = tree.Root()
	if size <= 0 || aux == nil {
		return nil
	}

	leaves := make([]RBNode[K, V], 0, size>>1+1)
	queue := make([]RBNode[K, V], 0, size>>1+1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            <16>

Each NIL leaf to root black depth are equal.
*/
func BlackViolationValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	leaves := bfsLeaves[K, V](tree)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[K, V](leaves[0], nil)
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo[K, V](leaves[i], nil); depth != blackDepth {
			return infra.WrapErrorStackWithMessage(ErrRBTreeBlackViolation,
				fmt.Sprintf("node %v black depth %d, expected %d", leaves[i].Key(), depth, blackDepth),
			)
		}
	}
	return nil
}

// OrderViolationValidate checks the inorder keys are strictly increasing
// under the tree order.
func OrderViolationValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	var prev RBNode[K, V]
	return inorder[K, V](tree, func(node RBNode[K, V]) error {
		if prev != nil && tree.Compare(prev.Key(), node.Key()) >= 0 {
			return infra.WrapErrorStackWithMessage(ErrRBTreeOrderViolation,
				fmt.Sprintf("key %v is not before key %v", prev.Key(), node.Key()),
			)
		}
		prev = node
		return nil
	})
}

// LinkViolationValidate checks parent links and the element count.
func LinkViolationValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	if root := tree.Root(); root != nil && root.Parent() != nil {
		return infra.WrapErrorStackWithMessage(ErrRBTreeLinkViolation,
			fmt.Sprintf("root %v has a parent", root.Key()),
		)
	}
	count := int64(0)
	err := inorder[K, V](tree, func(node RBNode[K, V]) error {
		count++
		for _, child := range [2]RBNode[K, V]{node.Left(), node.Right()} {
			if child != nil && child.Parent() != node {
				return infra.WrapErrorStackWithMessage(ErrRBTreeLinkViolation,
					fmt.Sprintf("child %v is not linked back to %v", child.Key(), node.Key()),
				)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if count != tree.Len() {
		return infra.WrapErrorStackWithMessage(ErrRBTreeLinkViolation,
			fmt.Sprintf("%d nodes linked, %d counted", count, tree.Len()),
		)
	}
	return nil
}

// Validate runs all the validators and combines their errors.
func Validate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	return multierr.Combine(
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
		OrderViolationValidate[K, V](tree),
		LinkViolationValidate[K, V](tree),
	)
}
