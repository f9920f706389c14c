package tree

import (
	"github.com/benz9527/xrbtree/lib/infra"
)

var _ RBNode[int, struct{}] = (*rbNode[int, struct{}])(nil)

// A nil *rbNode stands for the NIL leaf and is always black.
type rbNode[K infra.OrderedKey, V any] struct {
	parent *rbNode[K, V]
	left   *rbNode[K, V]
	right  *rbNode[K, V]
	key    K
	val    V
	color  RBColor
}

func (node *rbNode[K, V]) Color() RBColor {
	if node == nil {
		return Black
	}
	return node.color
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil {
		return nil
	}
	return node.left.handle()
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil {
		return nil
	}
	return node.parent.handle()
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil {
		return nil
	}
	return node.right.handle()
}

// handle avoids leaking a typed nil pointer through the RBNode interface.
func (node *rbNode[K, V]) handle() RBNode[K, V] {
	if node == nil {
		return nil
	}
	return node
}

func (node *rbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K, V]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	switch {
	case node.parent == nil:
		return Root
	case node == node.parent.left:
		return Left
	case node == node.parent.right:
		return Right
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] node is not linked by its parent")
}

func (node *rbNode[K, V]) child(dir RBDirection) *rbNode[K, V] {
	switch dir {
	case Left:
		return node.left
	case Right:
		return node.right
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] child direction must be left or right")
}

func (node *rbNode[K, V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[K, V]) minimum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K, V]) maximum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order
func (node *rbNode[K, V]) pred() *rbNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *rbNode[K, V]) succ() *rbNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}

func (node *rbNode[K, V]) sibling() *rbNode[K, V] {
	return node.parent.child(node.Direction().opposite())
}
