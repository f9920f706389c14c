package tree

import (
	randv2 "math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// sortedOracle mirrors the tree membership with a sorted slice.
type sortedOracle []int

func (o *sortedOracle) insert(key int) bool {
	i, found := slices.BinarySearch(*o, key)
	if found {
		return false
	}
	*o = slices.Insert(*o, i, key)
	return true
}

func (o *sortedOracle) remove(key int) bool {
	i, found := slices.BinarySearch(*o, key)
	if !found {
		return false
	}
	*o = slices.Delete(*o, i, i+1)
	return true
}

func TestRBTree_RandomOpsAgainstOracle(t *testing.T) {
	type testcase struct {
		name     string
		seed     uint64
		keySpace int
		opts     []RBTreeOpt[int, int]
	}
	testcases := []testcase{
		{name: "dense keys", seed: 1, keySpace: 64},
		{name: "sparse keys", seed: 2, keySpace: 4096},
		{name: "borrow pred", seed: 3, keySpace: 256, opts: []RBTreeOpt[int, int]{WithRBTreeRemoveBorrowPred[int, int]()}},
		{name: "negative keys", seed: 4, keySpace: 512},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rng := randv2.New(randv2.NewPCG(tc.seed, tc.seed^0x9e3779b97f4a7c15))
			tree := NewRBTree[int, int](tc.opts...)
			oracle := make(sortedOracle, 0, tc.keySpace)

			for op := 0; op < 1000; op++ {
				key := rng.IntN(tc.keySpace) - tc.keySpace/2
				if rng.IntN(3) < 2 {
					err := tree.Insert(key, key)
					if oracle.insert(key) {
						require.NoError(tt, err)
					} else {
						require.ErrorIs(tt, err, ErrRBTreeDuplicateKey)
					}
				} else {
					node, ok := tree.Remove(key)
					require.Equal(tt, oracle.remove(key), ok)
					if ok {
						require.Equal(tt, key, node.Key())
						require.Equal(tt, key, node.Val())
					}
				}

				require.Equal(tt, int64(len(oracle)), tree.Len())
				if op%50 == 0 {
					require.NoError(tt, Validate[int, int](tree))
					require.Equal(tt, []int(oracle), slices.AppendSeq(make([]int, 0, len(oracle)), tree.Keys()))
				}
			}
			require.NoError(tt, Validate[int, int](tree))
			require.Equal(tt, []int(oracle), slices.AppendSeq(make([]int, 0, len(oracle)), tree.Keys()))
			for _, key := range oracle {
				require.True(tt, tree.Contains(key))
			}
		})
	}
}

func TestRBTree_ManyShortSequencesAgainstOracle(t *testing.T) {
	optsOf := []func() []RBTreeOpt[int, int]{
		func() []RBTreeOpt[int, int] { return nil },
		func() []RBTreeOpt[int, int] { return []RBTreeOpt[int, int]{WithRBTreeRemoveBorrowPred[int, int]()} },
	}
	for seq := uint64(0); seq < 1000; seq++ {
		rng := randv2.New(randv2.NewPCG(seq, seq*31+7))
		tree := NewRBTree[int, int](optsOf[seq%2]()...)
		oracle := make(sortedOracle, 0, 32)

		for op := 0; op < 40; op++ {
			key := rng.IntN(32)
			if rng.IntN(2) == 0 {
				err := tree.Insert(key, key)
				require.Equal(t, oracle.insert(key), err == nil, "seq %d op %d insert %d", seq, op, key)
			} else {
				_, ok := tree.Remove(key)
				require.Equal(t, oracle.remove(key), ok, "seq %d op %d remove %d", seq, op, key)
			}
		}
		require.NoError(t, Validate[int, int](tree), "seq %d", seq)
		require.Equal(t, []int(oracle), slices.AppendSeq(make([]int, 0, len(oracle)), tree.Keys()), "seq %d", seq)
	}
}
