package tree

import (
	"iter"

	"github.com/benz9527/xrbtree/lib/infra"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (dir RBDirection) opposite() RBDirection {
	return -dir
}

type RBTreeErr string

const (
	ErrRBTreeDuplicateKey        RBTreeErr = "[rbtree] duplicate key"
	ErrRBTreeIteratorInvalidated RBTreeErr = "[rbtree] tree mutated during iteration"
	ErrRBTreeRedViolation        RBTreeErr = "[rbtree] red violation"
	ErrRBTreeBlackViolation      RBTreeErr = "[rbtree] black violation"
	ErrRBTreeOrderViolation      RBTreeErr = "[rbtree] order violation"
	ErrRBTreeLinkViolation       RBTreeErr = "[rbtree] link violation"
)

func (err RBTreeErr) Error() string {
	return string(err)
}

// RBNode is a read-only handle of a tree node.
// A handle is only valid until the next insert or remove of its tree.
type RBNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// RBIterator walks the tree in order lazily. It is restartable by Reset.
// Inserting or removing while an iteration is in progress invalidates it,
// Next returns false and Err returns ErrRBTreeIteratorInvalidated.
type RBIterator[K infra.OrderedKey, V any] interface {
	Next() bool
	Key() K
	Val() V
	Err() error
	Reset()
}

// RBTree is not safe for concurrent use. Callers sharing a tree across
// goroutines have to guard it by themselves.
type RBTree[K infra.OrderedKey, V any] interface {
	Len() int64
	Root() RBNode[K, V]
	Compare(i, j K) int64
	Insert(key K, val V) error
	InsertAll(entries iter.Seq2[K, V]) []K
	Remove(key K) (RBNode[K, V], bool)
	RemoveMin() (RBNode[K, V], bool)
	RemoveMax() (RBNode[K, V], bool)
	Find(key K) RBNode[K, V]
	Get(key K) (V, bool)
	Contains(key K) bool
	Min() RBNode[K, V]
	Max() RBNode[K, V]
	Pred(node RBNode[K, V]) RBNode[K, V]
	Succ(node RBNode[K, V]) RBNode[K, V]
	Iterator() RBIterator[K, V]
	Keys() iter.Seq[K]
	All() iter.Seq2[K, V]
	Backward() iter.Seq2[K, V]
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Release()
}

// RBSet is the key only view of a RBTree.
type RBSet[K infra.OrderedKey] interface {
	Len() int64
	Insert(key K) error
	InsertAll(keys ...K) []K
	Remove(key K) (K, bool)
	Find(key K) RBNode[K, struct{}]
	Contains(key K) bool
	Min() (K, bool)
	Max() (K, bool)
	Predecessor(node RBNode[K, struct{}]) RBNode[K, struct{}]
	Successor(node RBNode[K, struct{}]) RBNode[K, struct{}]
	Keys() iter.Seq[K]
	Iterator() RBIterator[K, struct{}]
	Tree() RBTree[K, struct{}]
}
