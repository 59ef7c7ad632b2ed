package amplifier

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Result is the best phase ordering found by MaxSignal.
type Result struct {
	Phases []int64
	Signal int64
}

// Permutations returns every ordering of vals, generated with Heap's
// algorithm. vals is not modified.
func Permutations(vals []int64) [][]int64 {
	a := append([]int64(nil), vals...)
	out := [][]int64{append([]int64(nil), a...)}

	c := make([]int, len(a))
	for i := 0; i < len(a); {
		if c[i] < i {
			if i%2 == 0 {
				a[0], a[i] = a[i], a[0]
			} else {
				a[c[i]], a[i] = a[i], a[c[i]]
			}
			out = append(out, append([]int64(nil), a...))
			c[i] += 1
			i = 0
		} else {
			c[i] = 0
			i += 1
		}
	}
	return out
}

// MaxSignal tries every ordering of phases, one chain per ordering run
// concurrently, and returns the ordering that produces the highest signal
// from an input signal of 0. Ties go to the ordering Permutations lists first.
func MaxSignal(ctx context.Context, program []int64, phases []int64, opts ...ChainOpt) (*Result, error) {
	if len(phases) == 0 {
		return nil, errors.New("no phases")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	var (
		mu      sync.Mutex
		best    *Result
		bestIdx int
	)
	for i, perm := range Permutations(phases) {
		if ctx.Err() != nil {
			break
		}
		i, perm := i, perm
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			signal, err := NewChain(program, perm, opts...).Run(0)
			if err != nil {
				return errors.Wrapf(err, "phases %v", perm)
			}

			mu.Lock()
			defer mu.Unlock()
			if best == nil || signal > best.Signal || (signal == best.Signal && i < bestIdx) {
				best = &Result{Phases: perm, Signal: signal}
				bestIdx = i
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if best == nil {
		return nil, errors.Wrap(ctx.Err(), "search cancelled")
	}
	return best, nil
}
