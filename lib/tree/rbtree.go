package tree

import (
	"iter"
	"sync/atomic"

	"github.com/benz9527/xrbtree/lib/infra"
)

var _ RBTree[int, struct{}] = (*rbTree[int, struct{}])(nil)

type rbTree[K infra.OrderedKey, V any] struct {
	root          *rbNode[K, V]
	count         int64
	version       uint64 // bumped by every structural mutation
	isDesc        bool
	isRmBorrowPre bool
	stats         *rbTreeStats
}

func (tree *rbTree[K, V]) keyCompare(k1, k2 K) int64 {
	if tree.isDesc {
		return infra.DescendingCompare[K](k1, k2)
	}
	return infra.AscendingCompare[K](k1, k2)
}

func (tree *rbTree[K, V]) Compare(i, j K) int64 {
	return tree.keyCompare(i, j)
}

func (tree *rbTree[K, V]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	return tree.root.handle()
}

func (tree *rbTree[K, V]) mutated(delta int64) {
	atomic.AddInt64(&tree.count, delta)
	tree.version++
	tree.stats.RecordSize(delta)
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// If a node has exactly one child, that child must be red. Otherwise,
// black-violation.

/*
		 |                         |
		 X                         Y
		/ \     leftRotate(X)     / \
	   A   Y    ============>    X   C
		  / \                   / \
		 B   C                 A   B
*/
func (tree *rbTree[K, V]) leftRotate(x *rbNode[K, V]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.parent = p
	tree.stats.IncreaseRotation(Left)
}

/*
		   |                         |
		   X                         Y
		  / \     rightRotate(X)    / \
		 Y   C    ============>    A   X
		/ \                           / \
	   A   B                         B   C
*/
func (tree *rbTree[K, V]) rightRotate(x *rbNode[K, V]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.parent = p
	tree.stats.IncreaseRotation(Right)
}

// rotate moves x down to the dir side of its other child.
func (tree *rbTree[K, V]) rotate(x *rbNode[K, V], dir RBDirection) {
	switch dir {
	case Left:
		tree.leftRotate(x)
	case Right:
		tree.rightRotate(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate direction must be left or right")
	}
}

// i1: Empty rbtree, the new node becomes the black root.
// i2: Equal key found, reject it and leave the tree untouched.
// i3: Attach a red node to the NIL position and fix the red-violation.
func (tree *rbTree[K, V]) Insert(key K, val V) error {
	if /* i1 */ tree.root == nil {
		tree.root = &rbNode[K, V]{
			key:   key,
			val:   val,
			color: Black,
		}
		tree.mutated(1)
		return nil
	}

	var (
		x, y = tree.root, (*rbNode[K, V])(nil)
		res  int64
	)
	for x != nil {
		y = x
		res = tree.keyCompare(key, x.key)
		if /* i2 */ res == 0 {
			tree.stats.IncreaseDuplicate()
			return ErrRBTreeDuplicateKey
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}

	/* i3 */
	z := &rbNode[K, V]{
		key:    key,
		val:    val,
		color:  Red,
		parent: y,
	}
	if res < 0 {
		y.left = z
	} else {
		y.right = z
	}
	tree.mutated(1)
	tree.insertRebalance(z)
	return nil
}

// InsertAll keeps going on duplicates and returns the skipped keys
// in encounter order.
func (tree *rbTree[K, V]) InsertAll(entries iter.Seq2[K, V]) []K {
	var skipped []K
	for key, val := range entries {
		if err := tree.Insert(key, val); err != nil {
			skipped = append(skipped, key)
		}
	}
	return skipped
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

im1: Uncle U is red, grandpa G must be black. Repaint P and U into black,
G into red. G may conflict with its own parent now, continue with G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im2: Uncle U is black and X is the inner grandchild.
Rotate P toward its own direction to straighten the line,
then X and P exchange their roles and enter im3.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im3: Uncle U is black and X, P, G are in a line.
Repaint P into black, G into red and rotate G to the opposite direction.

	    [G]                 [P]
	    / \    rotate(G)    / \
	  <P> [U]  ========>  <X> <G>
	  /                         \
	<X>                         [U]
*/
func (tree *rbTree[K, V]) insertRebalance(x *rbNode[K, V]) {
	for !x.isRoot() && x.parent.isRed() {
		p := x.parent
		gp := p.parent
		if gp == nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] red parent without grandpa, violate (im)")
		}

		dir := p.Direction()
		if uncle := gp.child(dir.opposite()); /* im1 */ uncle.isRed() {
			p.color, uncle.color, gp.color = Black, Black, Red
			tree.stats.IncreaseInsertFixup(insertFixupUncleRed)
			x = gp
			continue
		}

		if /* im2 */ x.Direction() != dir {
			tree.rotate(p, dir)
			tree.stats.IncreaseInsertFixup(insertFixupInnerChild)
			x, p = p, x
		}

		/* im3 */
		p.color, gp.color = Black, Red
		tree.rotate(gp, dir.opposite())
		tree.stats.IncreaseInsertFixup(insertFixupOuterChild)
		break
	}
	tree.root.color = Black
}

func (tree *rbTree[K, V]) search(key K) *rbNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

// Remove returns a detached snapshot of the removed key and value.
func (tree *rbTree[K, V]) Remove(key K) (RBNode[K, V], bool) {
	z := tree.search(key)
	if z == nil {
		tree.stats.IncreaseMiss()
		return nil, false
	}
	return tree.removeNode(z), true
}

func (tree *rbTree[K, V]) RemoveMin() (RBNode[K, V], bool) {
	if tree.root == nil {
		return nil, false
	}
	return tree.removeNode(tree.root.minimum()), true
}

func (tree *rbTree[K, V]) RemoveMax() (RBNode[K, V], bool) {
	if tree.root == nil {
		return nil, false
	}
	return tree.removeNode(tree.root.maximum()), true
}

/*
r1: Node Z has two children. Borrow the key and value of the succ
(or the pred if configured) and remove that node instead.
The borrowed node has one child at most.

	  |                    |
	  Z                    S
	 / \                  / \
	L  ..   copy(S, Z)   L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..                X  ..

r2: Node Y has exactly one child, the child must be red.
Replace Y by the child and repaint the child into black.

r3: Node Y is the only node, the tree becomes empty.

r4: Node Y is a leaf. A red leaf is removed directly.
A black leaf stays in place while fixing the black-violation,
it is detached afterwards.
*/
func (tree *rbTree[K, V]) removeNode(z *rbNode[K, V]) *rbNode[K, V] {
	res := &rbNode[K, V]{
		key:   z.key,
		val:   z.val,
		color: z.color,
	}

	y := z
	if /* r1 */ z.left != nil && z.right != nil {
		if tree.isRmBorrowPre {
			y = z.left.maximum()
		} else {
			y = z.right.minimum()
		}
		z.key, z.val = y.key, y.val
	}

	replace := y.left
	if replace == nil {
		replace = y.right
	}

	switch {
	case /* r2 */ replace != nil:
		tree.transplant(y, replace)
		if y.isBlack() {
			tree.removeRebalance(replace)
		}
	case /* r3 */ y.isRoot():
		tree.root = nil
	default /* r4 */ :
		if y.isBlack() {
			tree.removeRebalance(y)
		}
		switch y.Direction() {
		case Left:
			y.parent.left = nil
		case Right:
			y.parent.right = nil
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] removed leaf turns into root, violate (r4)")
		}
	}

	y.parent, y.left, y.right = nil, nil, nil
	tree.mutated(-1)
	return res
}

// transplant links v to the position of u. u keeps its own links.
func (tree *rbTree[K, V]) transplant(u, v *rbNode[K, V]) {
	switch u.Direction() {
	case Root:
		tree.root = v
	case Left:
		u.parent.left = v
	case Right:
		u.parent.right = v
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to transplant")
	}
	v.parent = u.parent
}

/*
X carries an extra black (double black).

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

N is X's near nephew, the child of sibling S on the same side as X.
F is X's far nephew, the child of S on the opposite side.

rm1: Sibling S is red, so P, N and F must be black.
Repaint S into black, P into red and rotate P toward X.
The new sibling (old N) is black, enter rm2-rm4.

	  [P]                   [S]
	  / \    rotate(P)      / \
	[X] <S>  ========>    <P> [F]
	    / \               / \
	  [N] [F]           [X] [N]

rm2: Sibling S, N and F are black. Repaint S into red, the extra black
moves up to P. A red P absorbs it and the loop ends.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	  [N] [F]         [N] [F]

rm3: Sibling S is black, N is red and F is black.
Repaint N into black, S into red and rotate S away from X.
The old N becomes the sibling with a red far nephew, enter rm4.

	  {P}                  {P}
	  / \    rotate(S)     / \
	[X] [S]  ========>   [X] [N]
	    / \                    \
	  <N> [F]                  <S>
	                             \
	                             [F]

rm4: Sibling S is black and F is red.
S takes P's color, P and F are repainted into black,
then rotate P toward X. The extra black is consumed.

	  {P}                   {S}
	  / \    rotate(P)      / \
	[X] [S]  ========>    [P] [F]
	    / \               / \
	  {N} <F>           [X] {N}
*/
func (tree *rbTree[K, V]) removeRebalance(x *rbNode[K, V]) {
	for !x.isRoot() && x.isBlack() {
		dir := x.Direction()
		p := x.parent
		sibling := x.sibling()
		if /* rm1 */ sibling.isRed() {
			sibling.color, p.color = Black, Red
			tree.rotate(p, dir)
			tree.stats.IncreaseRemoveFixup(removeFixupSiblingRed)
			sibling = x.sibling()
		}

		near, far := sibling.child(dir), sibling.child(dir.opposite())
		if /* rm2 */ near.isBlack() && far.isBlack() {
			sibling.color = Red
			tree.stats.IncreaseRemoveFixup(removeFixupNephewsBlack)
			x = p
			continue
		}

		if /* rm3 */ far.isBlack() {
			near.color, sibling.color = Black, Red
			tree.rotate(sibling, dir.opposite())
			tree.stats.IncreaseRemoveFixup(removeFixupNearNephewRed)
			sibling = x.sibling()
			far = sibling.child(dir.opposite())
		}

		/* rm4 */
		sibling.color, p.color, far.color = p.color, Black, Black
		tree.rotate(p, dir)
		tree.stats.IncreaseRemoveFixup(removeFixupFarNephewRed)
		x = tree.root
	}
	x.color = Black
}

func (tree *rbTree[K, V]) Release() {
	aux := tree.root
	tree.root = nil
	size := atomic.SwapInt64(&tree.count, 0)
	tree.version++
	tree.stats.RecordRelease(size)
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, maxHeight(size))
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)
	for len(stack) > 0 {
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.parent, aux.left, aux.right = nil, nil, nil
	}
}

type RBTreeOpt[K infra.OrderedKey, V any] func(*rbTree[K, V])

func WithRBTreeDesc[K infra.OrderedKey, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isDesc = true
	}
}

// WithRBTreeRemoveBorrowPred removes a node with two children by
// borrowing its pred instead of its succ.
func WithRBTreeRemoveBorrowPred[K infra.OrderedKey, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isRmBorrowPre = true
	}
}

// WithRBTreeStats records rotations, fixup cases and the size through
// the global otel meter provider.
func WithRBTreeStats[K infra.OrderedKey, V any](name string) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.stats = newRBTreeStats(rbTreeMeter(name))
	}
}

func NewRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	return newRBTree[K, V](opts...)
}

func newRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) *rbTree[K, V] {
	tree := &rbTree[K, V]{}
	for _, o := range opts {
		o(tree)
	}
	return tree
}
