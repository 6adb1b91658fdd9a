package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/heap"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	useMmap bool
	chunkKB int
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise and inspect the heapkit allocator",
	Long: `heapctl drives the heapkit boundary-tag allocator from the command line.
It replays allocation traces, runs synthetic benchmark workloads, and reports
heap statistics and consistency findings.`,
	Version: "0.1.0",
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&useMmap, "mmap", false, "Back the heap with an anonymous mapping")
	rootCmd.PersistentFlags().IntVar(&chunkKB, "chunk", 64, "Heap growth chunk size in KiB")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newHeap builds a heap over the arena the global flags select.
func newHeap() (*heap.Heap, error) {
	cfg := &heap.Config{ChunkSize: chunkKB * 1024}
	if useMmap {
		a, err := arena.NewMmap(1 << 30)
		if err != nil {
			return nil, fmt.Errorf("mmap arena: %w", err)
		}
		return heap.New(a, cfg)
	}
	return heap.New(arena.NewBuffer(0), cfg)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}
	var result []byte
	for i, c := range []byte(str) {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, c)
	}
	return string(result)
}

// printStats renders an operation summary in the selected format.
func printStats(h *heap.Heap) error {
	s := h.Stats()
	if jsonOut {
		return printJSON(s)
	}
	printInfo("\nHeap Statistics:\n")
	printInfo("  Region size: %s\n", formatBytes(int64(len(h.Bytes()))))
	printInfo("  Alloc calls: %s\n", formatNumber(int64(s.AllocCalls)))
	printInfo("  Free calls: %s\n", formatNumber(int64(s.FreeCalls)))
	printInfo("  Bytes allocated: %s\n", formatBytes(s.BytesAllocated))
	printInfo("  Bytes freed: %s\n", formatBytes(s.BytesFreed))
	printInfo("  Grows: %s (%s)\n", formatNumber(int64(s.GrowCalls)), formatBytes(s.GrowBytes))
	printInfo("  Splits: %s, splinters: %s\n",
		formatNumber(int64(s.SplitCount)), formatNumber(int64(s.Splinters)))
	printInfo("  Coalesces: next %s, prev %s, both %s\n",
		formatNumber(int64(s.CoalesceNext)),
		formatNumber(int64(s.CoalescePrev)),
		formatNumber(int64(s.CoalesceBoth)))
	return nil
}
