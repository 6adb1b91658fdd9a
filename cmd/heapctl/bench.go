package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/joshuapare/heapkit/heap"
	"github.com/spf13/cobra"
)

var (
	benchOps     int
	benchSeed    int64
	benchMaxSize int
	benchLive    int
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVarP(&benchOps, "ops", "n", 1_000_000, "Number of operations to run")
	cmd.Flags().Int64Var(&benchSeed, "seed", 1, "Workload RNG seed")
	cmd.Flags().IntVar(&benchMaxSize, "max-size", 4096, "Largest request size in bytes")
	cmd.Flags().IntVar(&benchLive, "live", 1024, "Target number of live allocations")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic allocation workload",
		Long: `The bench command drives the allocator with a randomized mix of
allocations, frees, and reallocations, then reports throughput and
allocator statistics.

Example:
  heapctl bench
  heapctl bench --ops 5000000 --max-size 512 --mmap
  heapctl bench --seed 7 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}
}

func runBench() error {
	h, err := newHeap()
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(benchSeed))
	live := make([]heap.Ref, 0, benchLive)

	printVerbose("Running %s operations (seed %d, max size %d, target live %d)\n",
		formatNumber(int64(benchOps)), benchSeed, benchMaxSize, benchLive)

	start := time.Now()
	for i := 0; i < benchOps; i++ {
		switch {
		case len(live) == 0 || (len(live) < benchLive && rng.Intn(3) != 0):
			ref, _, err := h.Alloc(1 + rng.Intn(benchMaxSize))
			if err != nil {
				return fmt.Errorf("alloc at op %d: %w", i, err)
			}
			live = append(live, ref)
		case rng.Intn(4) == 0:
			j := rng.Intn(len(live))
			ref, _, err := h.Realloc(live[j], 1+rng.Intn(benchMaxSize))
			if err != nil {
				return fmt.Errorf("realloc at op %d: %w", i, err)
			}
			live[j] = ref
		default:
			j := rng.Intn(len(live))
			if err := h.Free(live[j]); err != nil {
				return fmt.Errorf("free at op %d: %w", i, err)
			}
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
		}
	}
	elapsed := time.Since(start)

	for _, ref := range live {
		if err := h.Free(ref); err != nil {
			return fmt.Errorf("final free: %w", err)
		}
	}

	printInfo("Ran %s ops in %s (%.0f ops/sec)\n",
		formatNumber(int64(benchOps)), elapsed.Round(time.Millisecond),
		float64(benchOps)/elapsed.Seconds())
	return printStats(h)
}
