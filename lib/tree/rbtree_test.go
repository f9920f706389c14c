package tree

import (
	"math"
	randv2 "math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xrbtree/lib/id"
)

type checkData struct {
	color RBColor
	key   uint64
}

func requireColors(t *testing.T, tree RBTree[uint64, uint64], expected []checkData) {
	t.Helper()
	require.Equal(t, int64(len(expected)), tree.Len())
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, expected[idx].color, color, "key %d", key)
		require.Equal(t, expected[idx].key, key)
		return true
	})
	require.NoError(t, Validate[uint64, uint64](tree))
}

func TestNilNode(t *testing.T) {
	var nilNode RBNode[uint64, uint64] = nil
	require.True(t, nilNode == nil)

	var nilNode2 *rbNode[uint64, uint64] = nil
	nilNode = nilNode2
	require.True(t, nilNode != nil)
	require.Nil(t, nilNode2.handle())
	require.Equal(t, Black, nilNode2.Color())
	require.True(t, nilNode2.isBlack())
	require.False(t, nilNode2.isRed())
	require.Nil(t, nilNode2.Left())
	require.Nil(t, nilNode2.Right())
	require.Nil(t, nilNode2.Parent())
	require.Panics(t, func() {
		nilNode2.Direction()
	})
}

func TestRBTreeInsertAndRemove_Colors(t *testing.T) {
	type testcase struct {
		name      string
		opts      []RBTreeOpt[uint64, uint64]
		afterRm24 []checkData
	}
	testcases := []testcase{
		{
			name: "rm by succ",
			afterRm24: []checkData{
				{Red, 3}, {Black, 35}, {Black, 47}, {Black, 52},
			},
		},
		{
			name: "rm by pred",
			opts: []RBTreeOpt[uint64, uint64]{WithRBTreeRemoveBorrowPred[uint64, uint64]()},
			afterRm24: []checkData{
				{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52},
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewRBTree[uint64, uint64](tc.opts...)

			require.NoError(tt, tree.Insert(52, 1))
			requireColors(tt, tree, []checkData{{Black, 52}})

			require.NoError(tt, tree.Insert(47, 1))
			requireColors(tt, tree, []checkData{{Red, 47}, {Black, 52}})

			require.NoError(tt, tree.Insert(3, 1))
			requireColors(tt, tree, []checkData{{Red, 3}, {Black, 47}, {Red, 52}})

			require.NoError(tt, tree.Insert(35, 1))
			requireColors(tt, tree, []checkData{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}})

			require.NoError(tt, tree.Insert(24, 1))
			requireColors(tt, tree, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})
			require.Equal(tt, uint64(47), tree.Root().Key())

			// remove

			x, ok := tree.Remove(24)
			require.True(tt, ok)
			require.Equal(tt, uint64(24), x.Key())
			require.Nil(tt, x.Parent())
			requireColors(tt, tree, tc.afterRm24)

			x, ok = tree.Remove(47)
			require.True(tt, ok)
			require.Equal(tt, uint64(47), x.Key())
			requireColors(tt, tree, []checkData{{Black, 3}, {Black, 35}, {Black, 52}})

			x, ok = tree.Remove(52)
			require.True(tt, ok)
			require.Equal(tt, uint64(52), x.Key())
			requireColors(tt, tree, []checkData{{Red, 3}, {Black, 35}})

			x, ok = tree.Remove(3)
			require.True(tt, ok)
			require.Equal(tt, uint64(3), x.Key())
			requireColors(tt, tree, []checkData{{Black, 35}})

			x, ok = tree.Remove(35)
			require.True(tt, ok)
			require.Equal(tt, uint64(35), x.Key())
			require.Equal(tt, int64(0), tree.Len())
			require.Nil(tt, tree.Root())
		})
	}
}

func TestRBTree_RemoveMinMax(t *testing.T) {
	tree := NewRBTree[uint64, uint64]()
	for _, key := range []uint64{52, 47, 3, 35, 24} {
		require.NoError(t, tree.Insert(key, key*10))
	}
	requireColors(t, tree, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})

	// remove min

	x, ok := tree.RemoveMin()
	require.True(t, ok)
	require.Equal(t, uint64(3), x.Key())
	require.Equal(t, uint64(30), x.Val())
	require.Equal(t, Red, x.Color())
	requireColors(t, tree, []checkData{{Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})

	x, ok = tree.RemoveMin()
	require.True(t, ok)
	require.Equal(t, uint64(24), x.Key())
	require.Equal(t, Black, x.Color())
	requireColors(t, tree, []checkData{{Black, 35}, {Black, 47}, {Black, 52}})

	x, ok = tree.RemoveMin()
	require.True(t, ok)
	require.Equal(t, uint64(35), x.Key())
	requireColors(t, tree, []checkData{{Black, 47}, {Red, 52}})

	// remove max

	x, ok = tree.RemoveMax()
	require.True(t, ok)
	require.Equal(t, uint64(52), x.Key())
	require.Equal(t, Red, x.Color())
	requireColors(t, tree, []checkData{{Black, 47}})

	x, ok = tree.RemoveMax()
	require.True(t, ok)
	require.Equal(t, uint64(47), x.Key())
	require.Equal(t, int64(0), tree.Len())

	x, ok = tree.RemoveMin()
	require.False(t, ok)
	require.Nil(t, x)
	x, ok = tree.RemoveMax()
	require.False(t, ok)
	require.Nil(t, x)
}

func TestRBTree_ShiftedInsertThenRemove(t *testing.T) {
	tree := NewRBTree[int, struct{}]()
	for _, key := range []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 1} {
		require.NoError(t, tree.Insert(key, struct{}{}))
		require.NoError(t, Validate[int, struct{}](tree))
	}
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, slices.Collect(tree.Keys()))
	require.Equal(t, int64(10), tree.Len())

	for _, key := range []int{5, 6, 7, 8, 9} {
		x, ok := tree.Remove(key)
		require.True(t, ok)
		require.Equal(t, key, x.Key())
		require.NoError(t, Validate[int, struct{}](tree))
	}
	require.Equal(t, []int{1, 2, 3, 4, 10}, slices.Collect(tree.Keys()))
}

func TestRBTree_DuplicateInsert(t *testing.T) {
	tree := newRBTree[int, string]()
	for _, key := range []int{10, 20, 30} {
		require.NoError(t, tree.Insert(key, "origin"))
	}
	version, root := tree.version, tree.root
	rootColor := root.color

	err := tree.Insert(20, "replaced")
	require.ErrorIs(t, err, ErrRBTreeDuplicateKey)
	require.Equal(t, "[rbtree] duplicate key", err.Error())
	require.Equal(t, int64(3), tree.Len())
	require.Equal(t, version, tree.version)
	require.Same(t, root, tree.root)
	require.Equal(t, rootColor, tree.root.color)
	val, ok := tree.Get(20)
	require.True(t, ok)
	require.Equal(t, "origin", val)
	require.Equal(t, []int{10, 20, 30}, slices.Collect(tree.Keys()))
}

func TestRBTree_EmptyTree(t *testing.T) {
	tree := NewRBTree[int, int]()
	x, ok := tree.Remove(5)
	require.False(t, ok)
	require.Nil(t, x)
	require.Nil(t, tree.Find(5))
	require.False(t, tree.Contains(5))
	_, ok = tree.Get(5)
	require.False(t, ok)
	require.Nil(t, tree.Min())
	require.Nil(t, tree.Max())
	require.Nil(t, tree.Root())
	require.Empty(t, slices.Collect(tree.Keys()))
	require.NoError(t, Validate[int, int](tree))
	tree.Release()
	require.Equal(t, int64(0), tree.Len())
}

func TestRBTree_RemoveIsIdempotent(t *testing.T) {
	tree := NewRBTree[int, int]()
	require.Empty(t, tree.InsertAll(func(yield func(int, int) bool) {
		for i := 0; i < 16; i++ {
			if !yield(i, i) {
				return
			}
		}
	}))

	_, ok := tree.Remove(7)
	require.True(t, ok)
	keys := slices.Collect(tree.Keys())
	_, ok = tree.Remove(7)
	require.False(t, ok)
	require.Equal(t, keys, slices.Collect(tree.Keys()))
	require.Equal(t, int64(15), tree.Len())
}

func TestRBTree_InsertAll(t *testing.T) {
	tree := NewRBTree[string, int]()
	entries := []struct {
		key string
		val int
	}{
		{"b", 1}, {"a", 2}, {"b", 3}, {"c", 4}, {"a", 5},
	}
	skipped := tree.InsertAll(func(yield func(string, int) bool) {
		for _, e := range entries {
			if !yield(e.key, e.val) {
				return
			}
		}
	})
	require.Equal(t, []string{"b", "a"}, skipped)
	require.Equal(t, []string{"a", "b", "c"}, slices.Collect(tree.Keys()))
	val, ok := tree.Get("b")
	require.True(t, ok)
	require.Equal(t, 1, val)
}

func TestRBTree_FloatKeys(t *testing.T) {
	tree := NewRBTree[float64, struct{}]()
	nan := math.NaN
	require.NoError(t, tree.Insert(1.5, struct{}{}))
	require.NoError(t, tree.Insert(nan(), struct{}{}))
	require.NoError(t, tree.Insert(-2, struct{}{}))
	require.ErrorIs(t, tree.Insert(nan(), struct{}{}), ErrRBTreeDuplicateKey)
	require.NoError(t, Validate[float64, struct{}](tree))

	keys := slices.Collect(tree.Keys())
	require.Len(t, keys, 3)
	require.True(t, keys[0] != keys[0])
	require.Equal(t, []float64{-2, 1.5}, keys[1:])
	require.True(t, tree.Contains(nan()))
}

func rbtreeSequentialNumberRunCore(t *testing.T, borrowPred bool) {
	total := uint64(1000)
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	opts := make([]RBTreeOpt[uint64, uint64], 0, 1)
	if borrowPred {
		opts = append(opts, WithRBTreeRemoveBorrowPred[uint64, uint64]())
	}
	tree := NewRBTree[uint64, uint64](opts...)

	for i := uint64(0); i < insertTotal; i++ {
		require.NoError(t, tree.Insert(i, 1))
		require.NoError(t, RedViolationValidate[uint64, uint64](tree))
		require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		require.NoError(t, tree.Insert(i, 1))
		require.NoError(t, RedViolationValidate[uint64, uint64](tree))
		require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		if i == 892 {
			x := tree.Find(i)
			require.NotNil(t, x)
			require.Equal(t, uint64(892), x.Key())
		}
		x, ok := tree.Remove(i)
		require.True(t, ok)
		require.Equal(t, i, x.Key())
		require.NoError(t, Validate[uint64, uint64](tree))
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
	require.Equal(t, int64(insertTotal), tree.Len())
}

func TestRBTreeInsertAndRemove_SequentialNumber(t *testing.T) {
	type testcase struct {
		name       string
		borrowPred bool
	}
	testcases := []testcase{
		{
			name: "rm by succ",
		},
		{
			name:       "rm by pred",
			borrowPred: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeSequentialNumberRunCore(tt, tc.borrowPred)
		})
	}
}

func TestRBTreeInsert_SequentialNumber_Release(t *testing.T) {
	insertTotal := uint64(100_000)

	tree := newRBTree[uint64, uint64]()

	rand := uint64(randv2.Uint32() % 1_000)
	for i := uint64(0); i < insertTotal; i++ {
		require.NoError(t, tree.Insert(i, 1))
		if i%1000 == rand {
			require.NoError(t, RedViolationValidate[uint64, uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})

	root := tree.root
	tree.Release()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	require.Nil(t, root.left)
	require.Nil(t, root.right)
	require.Nil(t, root.parent)

	// Reusable after release.
	require.NoError(t, tree.Insert(1, 1))
	require.Equal(t, int64(1), tree.Len())
}

func TestRBTreeInsertAndRemove_ReverseSequentialNumber(t *testing.T) {
	total := int64(10000)
	insertTotal := int64(float64(total) * 0.8)
	removeTotal := int64(float64(total) * 0.2)

	tree := NewRBTree[int64, uint64](WithRBTreeDesc[int64, uint64]())

	rand := int64(randv2.Uint32() % 1_000)
	for i := insertTotal - 1; i >= 0; i-- {
		require.NoError(t, tree.Insert(i, 1))
		if i%1000 == rand {
			require.NoError(t, Validate[int64, uint64](tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, insertTotal-1-idx, key)
		return true
	})

	for i := removeTotal + insertTotal - 1; i >= insertTotal; i-- {
		require.NoError(t, tree.Insert(i, 1))
	}
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, removeTotal+insertTotal-1-idx, key)
		return true
	})
	require.Equal(t, removeTotal+insertTotal-1, tree.Min().Key())
	require.Equal(t, int64(0), tree.Max().Key())

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		x, ok := tree.Remove(i)
		require.True(t, ok)
		require.Equal(t, i, x.Key())
	}
	require.NoError(t, Validate[int64, uint64](tree))
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, insertTotal-1-idx, key)
		return true
	})
}

func rbtreeRandomMonoNumberRunCore(t *testing.T, total uint64, borrowPred bool, violationCheck bool) {
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	idGen, _ := id.MonotonicNonZeroID()
	insertElements := make([]uint64, 0, insertTotal)
	removeElements := make([]uint64, 0, removeTotal)

	ignore := uint32(0)

	for {
		num := idGen.Number()
		if ignore > 0 {
			ignore--
			continue
		}
		ignore = randv2.Uint32() % 100
		if ignore&0x1 == 0 && uint64(len(insertElements)) < insertTotal {
			insertElements = append(insertElements, num)
		} else if ignore&0x1 == 1 && uint64(len(removeElements)) < removeTotal {
			removeElements = append(removeElements, num)
		}
		if uint64(len(insertElements)) == insertTotal && uint64(len(removeElements)) == removeTotal {
			break
		}
	}

	randv2.Shuffle(len(insertElements), func(i, j int) {
		insertElements[i], insertElements[j] = insertElements[j], insertElements[i]
	})
	randv2.Shuffle(len(removeElements), func(i, j int) {
		removeElements[i], removeElements[j] = removeElements[j], removeElements[i]
	})

	opts := make([]RBTreeOpt[uint64, uint64], 0, 1)
	if borrowPred {
		opts = append(opts, WithRBTreeRemoveBorrowPred[uint64, uint64]())
	}
	tree := NewRBTree[uint64, uint64](opts...)

	for i := uint64(0); i < insertTotal; i++ {
		require.NoError(t, tree.Insert(insertElements[i], i))
		if violationCheck {
			require.NoError(t, RedViolationValidate[uint64, uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
		}
	}
	slices.Sort(insertElements)
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, insertElements[idx], key)
		return true
	})

	for i := uint64(0); i < removeTotal; i++ {
		require.NoError(t, tree.Insert(removeElements[i], 1))
		if violationCheck {
			require.NoError(t, RedViolationValidate[uint64, uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
		}
	}
	require.NoError(t, Validate[uint64, uint64](tree))

	for i := uint64(0); i < removeTotal; i++ {
		x, ok := tree.Remove(removeElements[i])
		require.True(t, ok)
		require.Equalf(t, removeElements[i], x.Key(), "value exp: %d, real: %d\n", removeElements[i], x.Key())
		if violationCheck {
			require.NoError(t, RedViolationValidate[uint64, uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, insertElements[idx], key)
		return true
	})
	require.NoError(t, Validate[uint64, uint64](tree))
}

func TestRBTreeInsertAndRemove_RandomMonotonicNumber(t *testing.T) {
	type testcase struct {
		name           string
		borrowPred     bool
		total          uint64
		violationCheck bool
	}
	testcases := []testcase{
		{
			name:  "rm by succ 100000",
			total: 100000,
		},
		{
			name:       "rm by pred 100000",
			borrowPred: true,
			total:      100000,
		},
		{
			name:           "violation check rm by succ 5000",
			total:          5000,
			violationCheck: true,
		},
		{
			name:           "violation check rm by pred 5000",
			borrowPred:     true,
			total:          5000,
			violationCheck: true,
		},
	}
	t.Parallel()
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomMonoNumberRunCore(tt, tc.total, tc.borrowPred, tc.violationCheck)
		})
	}
}

func BenchmarkRBTree_Random(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree := NewRBTree[int, []byte]()

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.Insert(rngArr[i], testByBytes)
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree := NewRBTree[int, []byte]()

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.Insert(i, testByBytes)
	}
}

func BenchmarkRBTree_InsertRemove(b *testing.B) {
	b.StopTimer()
	tree := NewRBTree[int, struct{}]()
	for i := 0; i < 1024; i++ {
		_ = tree.Insert(i, struct{}{})
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		key := 1024 + i
		_ = tree.Insert(key, struct{}{})
		tree.RemoveMin()
	}
}
