// Package stress drives many independent trees with random operations
// and checks every one of them against a sorted slice oracle.
package stress

import (
	"context"
	"fmt"
	randv2 "math/rand/v2"
	"os"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/internal/config"
	"github.com/benz9527/xrbtree/lib/hostenv"
	"github.com/benz9527/xrbtree/lib/id"
	"github.com/benz9527/xrbtree/lib/infra"
	"github.com/benz9527/xrbtree/lib/tree"
	"github.com/benz9527/xrbtree/lib/xlog"
)

type StressErr string

func (err StressErr) Error() string {
	return string(err)
}

const (
	ErrOracleMismatch StressErr = "[stress] tree and oracle mismatch"
	ErrSessionPanic   StressErr = "[stress] session panicked"
)

type Options struct {
	config.StressConfig
	Tree config.TreeConfig
}

type SessionReport struct {
	ID         uint64
	Seed       uint64
	Inserts    int
	Duplicates int
	Removes    int
	Misses     int
	Finds      int
	Checks     int
	FinalSize  int64
	Elapsed    time.Duration
	Err        error
}

type Report struct {
	Seed     uint64
	Workers  int
	Sessions []SessionReport
	Elapsed  time.Duration
	RSS      uint64 // bytes, 0 if unavailable
	Host     hostenv.Host
}

func (r *Report) Ops() int {
	return lo.SumBy(r.Sessions, func(s SessionReport) int {
		return s.Inserts + s.Duplicates + s.Removes + s.Misses + s.Finds
	})
}

func (r *Report) Checks() int {
	return lo.SumBy(r.Sessions, func(s SessionReport) int {
		return s.Checks
	})
}

func (r *Report) Failed() []SessionReport {
	return lo.Filter(r.Sessions, func(s SessionReport, _ int) bool {
		return s.Err != nil
	})
}

// Err combines the errors of all the failed sessions.
func (r *Report) Err() error {
	var err error
	for _, s := range r.Sessions {
		err = multierr.Append(err, s.Err)
	}
	return err
}

type treeFactory func(opts config.TreeConfig) tree.RBTree[int64, uint64]

func newTree(opts config.TreeConfig) tree.RBTree[int64, uint64] {
	return tree.NewRBTree[int64, uint64](config.RBTreeOpts[uint64](opts, "stress")...)
}

type Runner struct {
	opts    Options
	logger  xlog.XLogger
	newTree treeFactory
}

func NewRunner(opts Options, logger xlog.XLogger) (*Runner, error) {
	if err := opts.StressConfig.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Seed == 0 {
		opts.Seed = randv2.Uint64()
	}
	return &Runner{
		opts:    opts,
		logger:  logger.Named("Stress"),
		newTree: newTree,
	}, nil
}

// Run blocks until every session is done or ctx is cancelled.
// Each session owns its tree, nothing is shared between the workers.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	pool, err := ants.NewPool(r.opts.Workers,
		ants.WithLogger(xlog.NewAntsXLogger(r.logger)),
		ants.WithPanicHandler(func(p any) {
			r.logger.Error(fmt.Errorf("%v", p), "stress worker panicked")
		}),
	)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "create stress pool")
	}
	defer pool.Release()

	idGen, err := id.MonotonicNonZeroID()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Seed:     r.opts.Seed,
		Workers:  r.opts.Workers,
		Sessions: make([]SessionReport, r.opts.Sessions),
		Host:     hostenv.Detect(),
	}
	r.logger.Info("stress started",
		zap.Int("sessions", r.opts.Sessions),
		zap.Int("ops", r.opts.Ops),
		zap.Int("keySpace", r.opts.KeySpace),
		zap.Int("workers", r.opts.Workers),
		zap.Uint64("seed", r.opts.Seed),
		zap.Object("host", report.Host),
	)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < r.opts.Sessions; i++ {
		sessionID := idGen.Number()
		seed := r.opts.Seed + uint64(i)
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			report.Sessions[i] = r.runSession(ctx, sessionID, seed)
		}); submitErr != nil {
			wg.Done()
			report.Sessions[i] = SessionReport{ID: sessionID, Seed: seed, Err: submitErr}
		}
	}
	wg.Wait()
	report.Elapsed = time.Since(start)
	report.RSS = currentRSS()

	if err = ctx.Err(); err != nil {
		return report, err
	}
	if failed := report.Failed(); len(failed) > 0 {
		r.logger.ErrorStack(report.Err(), "stress failed", zap.Int("failed", len(failed)))
	} else {
		r.logger.Info("stress passed",
			zap.Int("ops", report.Ops()),
			zap.Int("checks", report.Checks()),
			zap.Duration("elapsed", report.Elapsed),
		)
	}
	return report, nil
}

func (r *Runner) runSession(ctx context.Context, sessionID, seed uint64) (res SessionReport) {
	res = SessionReport{ID: sessionID, Seed: seed}
	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
		if p := recover(); p != nil {
			res.Err = infra.WrapErrorStackWithMessage(ErrSessionPanic,
				fmt.Sprintf("session %d: %v", sessionID, p),
			)
		}
		if res.Err != nil {
			r.logger.ErrorStack(res.Err, "stress session failed", zap.Uint64("session", sessionID), zap.Uint64("seed", seed))
		} else {
			r.logger.Debug("stress session done",
				zap.Uint64("session", sessionID),
				zap.Int64("size", res.FinalSize),
				zap.Duration("elapsed", res.Elapsed),
			)
		}
	}()

	rng := randv2.New(randv2.NewPCG(seed, sessionID))
	t := r.newTree(r.opts.Tree)
	defer t.Release()
	o := newOracle(r.opts.KeySpace, r.opts.Tree.Descending)

	for op := 0; op < r.opts.Ops; op++ {
		if op%r.opts.CheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				res.Err = err
				return res
			}
		}

		key := rng.Int64N(int64(r.opts.KeySpace))
		switch dice := rng.IntN(10); {
		case dice < 6:
			err := t.Insert(key, uint64(op))
			inserted := o.insert(key)
			if inserted != (err == nil) {
				res.Err = mismatch(sessionID, op, "insert", key, err)
				return res
			}
			if inserted {
				res.Inserts++
			} else {
				res.Duplicates++
			}
		case dice < 9:
			node, ok := t.Remove(key)
			if ok != o.remove(key) || (ok && node.Key() != key) {
				res.Err = mismatch(sessionID, op, "remove", key, nil)
				return res
			}
			if ok {
				res.Removes++
			} else {
				res.Misses++
			}
		default:
			if t.Contains(key) != o.contains(key) {
				res.Err = mismatch(sessionID, op, "find", key, nil)
				return res
			}
			res.Finds++
		}

		if (op+1)%r.opts.CheckEvery == 0 {
			if res.Err = check(t, o); res.Err != nil {
				return res
			}
			res.Checks++
		}
	}
	if res.Err = check(t, o); res.Err == nil {
		res.Checks++
	}
	res.FinalSize = t.Len()
	return res
}

func mismatch(sessionID uint64, op int, action string, key int64, err error) error {
	return infra.WrapErrorStackWithMessage(ErrOracleMismatch,
		fmt.Sprintf("session %d op %d %s key %d (tree err: %v)", sessionID, op, action, key, err),
	)
}

func check(t tree.RBTree[int64, uint64], o *oracle) error {
	if err := tree.Validate[int64, uint64](t); err != nil {
		return err
	}
	if t.Len() != int64(len(o.keys)) {
		return infra.WrapErrorStackWithMessage(ErrOracleMismatch,
			fmt.Sprintf("tree len %d, oracle len %d", t.Len(), len(o.keys)),
		)
	}
	keys := slices.AppendSeq(make([]int64, 0, len(o.keys)), t.Keys())
	if !slices.Equal(keys, o.keys) {
		return infra.WrapErrorStackWithMessage(ErrOracleMismatch, "inorder keys differ from the oracle")
	}
	return nil
}

func currentRSS() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	mem, err := proc.MemoryInfo()
	if err != nil || mem == nil {
		return 0
	}
	return mem.RSS
}
