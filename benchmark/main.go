// Package main provides a performance benchmarking tool for the cryptofeed stores.
// It measures how long the cache use case takes to replace and load a snapshot
// on each local backend, running each cycle multiple times, treating the first
// run as cold and averaging the rest as warm, and writes CSV output for comparison.
//
// Usage: go run ./benchmark [items]
//
//	items: Number of coins per snapshot (default 100)
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/cryptofeed/core"
	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/internal/feedstore"
	"github.com/huangsam/cryptofeed/schema"
)

// BenchmarkResult holds the result of one backend and operation.
type BenchmarkResult struct {
	Backend   string
	Operation string
	ColdTime  string
	WarmTime  string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Items    int
	Runs     int
	Backends []schema.DatabaseBackend
	WorkDir  string
}

func main() {
	items := 100
	if len(os.Args) == 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Printf("Usage: %s [items]\n", os.Args[0])
			os.Exit(1)
		}
		items = n
	}

	workDir, err := os.MkdirTemp("", "cryptofeed-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	config := BenchmarkConfig{
		Items:    items,
		Runs:     5,
		Backends: []schema.DatabaseBackend{schema.MemoryBackend, schema.SQLiteBackend, schema.NoneBackend},
		WorkDir:  workDir,
	}

	results, err := runBenchmarks(context.Background(), config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes the save and load suites on every configured backend
func runBenchmarks(ctx context.Context, config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d backends, %d items, %d runs\n",
		len(config.Backends), config.Items, config.Runs)

	feeds := makeFeeds(config.Items)
	for _, backend := range config.Backends {
		fmt.Printf("Benchmarking %s\n", backend)

		connStr := ""
		if backend == schema.SQLiteBackend {
			connStr = filepath.Join(config.WorkDir, "bench.db")
		}
		store, err := feedstore.NewFeedStore(backend, connStr)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", backend, err)
		}
		useCase := core.NewCryptoFeedCacheUseCase(store)

		results = append(results, runBenchmark(string(backend), "save", config.Runs, func() error {
			return useCase.Save(ctx, feeds, time.Now())
		}))
		results = append(results, runBenchmark(string(backend), "load", config.Runs, func() error {
			_, err := useCase.Load(ctx)
			if errors.Is(err, contract.ErrEmptyCache) {
				return nil
			}
			return err
		}))

		_ = store.Close()
	}

	return results, nil
}

// runBenchmark executes op numRuns times and returns cold and warm timings
func runBenchmark(backend, operation string, numRuns int, op func() error) BenchmarkResult {
	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()
		if err := op(); err != nil {
			fmt.Printf("  %s %s run %d failed: %v\n", backend, operation, run, err)
			continue
		}
		times = append(times, time.Since(start).Seconds())
	}

	result := BenchmarkResult{Backend: backend, Operation: operation, ColdTime: "FAILED", WarmTime: "FAILED"}
	if len(times) > 0 {
		result.ColdTime = fmt.Sprintf("%.6fs", times[0])
	}
	if warm := times[min(1, len(times)):]; len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.6fs", sum/float64(len(warm)))
	}
	fmt.Printf("  %s: Cold: %s, Warm average: %s\n", operation, result.ColdTime, result.WarmTime)
	return result
}

// makeFeeds builds n synthetic coins with unique ids.
func makeFeeds(n int) []schema.CryptoFeed {
	feeds := make([]schema.CryptoFeed, 0, n)
	for i := range n {
		feeds = append(feeds, schema.CryptoFeed{
			CoinInfo: schema.CoinInfo{
				ID:       uuid.NewString(),
				Name:     fmt.Sprintf("C%d", i),
				FullName: fmt.Sprintf("Coin %d", i),
				ImageURL: fmt.Sprintf("/media/c%d.png", i),
			},
			Raw: schema.Raw{Usd: schema.Usd{Price: float64(i) * 1.5, ChangePctDay: float32(i%7) - 3}},
		})
	}
	return feeds
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("cryptofeed_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"backend", "op", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Backend, result.Operation, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, op := range []string{"save", "load"} {
		fmt.Printf("%s:\n", op)
		for _, result := range results {
			if result.Operation == op {
				fmt.Printf("  %-8s: Cold: %s, Warm: %s\n", result.Backend, result.ColdTime, result.WarmTime)
			}
		}
	}
}
