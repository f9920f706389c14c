package tree

func (tree *rbTree[K, V]) Find(key K) RBNode[K, V] {
	return tree.search(key).handle()
}

func (tree *rbTree[K, V]) Get(key K) (V, bool) {
	if node := tree.search(key); node != nil {
		return node.val, true
	}
	var zero V
	return zero, false
}

func (tree *rbTree[K, V]) Contains(key K) bool {
	return tree.search(key) != nil
}

func (tree *rbTree[K, V]) Min() RBNode[K, V] {
	return tree.root.minimum().handle()
}

func (tree *rbTree[K, V]) Max() RBNode[K, V] {
	return tree.root.maximum().handle()
}

func (tree *rbTree[K, V]) Pred(node RBNode[K, V]) RBNode[K, V] {
	x, ok := tree.owned(node)
	if !ok {
		return nil
	}
	return x.pred().handle()
}

func (tree *rbTree[K, V]) Succ(node RBNode[K, V]) RBNode[K, V] {
	x, ok := tree.owned(node)
	if !ok {
		return nil
	}
	return x.succ().handle()
}

// owned reports whether the handle is still linked into this tree.
// Nil, foreign and detached handles are rejected.
func (tree *rbTree[K, V]) owned(node RBNode[K, V]) (*rbNode[K, V], bool) {
	x, ok := node.(*rbNode[K, V])
	if !ok || x == nil || tree.root == nil {
		return nil, false
	}
	aux := x
	for ; aux.parent != nil; aux = aux.parent {
	}
	return x, aux == tree.root
}

// Foreach visits the nodes in order until the action returns false.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	idx := int64(0)
	for aux := range tree.walk(false) {
		if !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
	}
}
