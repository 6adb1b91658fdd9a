package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joshuapare/heapkit/heap"
	"github.com/spf13/cobra"
)

var replayCheckEvery int

func init() {
	cmd := newReplayCmd()
	cmd.Flags().IntVar(&replayCheckEvery, "check-every", 0,
		"Run a consistency check every N operations (0 = only at the end)")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace-file>",
		Short: "Replay an allocation trace",
		Long: `The replay command replays a recorded allocation trace against a fresh
heap and reports statistics and consistency findings. Use "-" to read the
trace from stdin.

Trace format, one operation per line ("#" starts a comment):
  a <id> <size>    allocate <size> bytes under identifier <id>
  r <id> <size>    reallocate identifier <id> to <size> bytes
  f <id>           free identifier <id>

Example:
  heapctl replay trace.rep
  heapctl replay --check-every 1000 trace.rep
  heapctl replay - < trace.rep`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args[0])
		},
	}
}

func runReplay(path string) error {
	var in io.Reader
	if path == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open trace: %w", err)
		}
		defer f.Close()
		in = f
	}

	h, err := newHeap()
	if err != nil {
		return err
	}

	refs := make(map[int]heap.Ref)
	ops := 0
	lineNo := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := replayLine(h, refs, line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		ops++
		if replayCheckEvery > 0 && ops%replayCheckEvery == 0 {
			h.Check(false)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read trace: %w", err)
	}

	printVerbose("Replayed %s operations, %d allocations still live\n",
		formatNumber(int64(ops)), len(refs))
	h.Check(verbose)
	return printStats(h)
}

func replayLine(h *heap.Heap, refs map[int]heap.Ref, line string) error {
	fields := strings.Fields(line)
	op := fields[0]

	want := 3
	if op == "f" {
		want = 2
	}
	if len(fields) != want {
		return fmt.Errorf("malformed %q operation: %q", op, line)
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("bad identifier %q", fields[1])
	}

	switch op {
	case "a":
		size, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("bad size %q", fields[2])
		}
		if _, dup := refs[id]; dup {
			return fmt.Errorf("identifier %d already live", id)
		}
		ref, _, err := h.Alloc(size)
		if err != nil {
			return err
		}
		refs[id] = ref
	case "r":
		size, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("bad size %q", fields[2])
		}
		ref, ok := refs[id]
		if !ok {
			return fmt.Errorf("identifier %d not live", id)
		}
		newRef, _, err := h.Realloc(ref, size)
		if err != nil {
			return err
		}
		if size == 0 {
			delete(refs, id)
		} else {
			refs[id] = newRef
		}
	case "f":
		ref, ok := refs[id]
		if !ok {
			return fmt.Errorf("identifier %d not live", id)
		}
		if err := h.Free(ref); err != nil {
			return err
		}
		delete(refs, id)
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
	return nil
}
