package config

import (
	"github.com/benz9527/xrbtree/lib/tree"
)

// RBTreeOpts translates the tree section into int64 keyed tree options.
// statsName names the meter when stats are enabled.
func RBTreeOpts[V any](c TreeConfig, statsName string) []tree.RBTreeOpt[int64, V] {
	opts := make([]tree.RBTreeOpt[int64, V], 0, 3)
	if c.Descending {
		opts = append(opts, tree.WithRBTreeDesc[int64, V]())
	}
	if c.RemoveBorrowPred {
		opts = append(opts, tree.WithRBTreeRemoveBorrowPred[int64, V]())
	}
	if c.Stats {
		opts = append(opts, tree.WithRBTreeStats[int64, V](statsName))
	}
	return opts
}
