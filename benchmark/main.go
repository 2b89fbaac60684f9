// Package main provides a performance benchmarking tool for the Coverspot CLI.
// It measures execution times across consultant exports and command types,
// running each command multiple times, treating the first successful cached run as cold
// and averaging the rest as warm, and writes the timings as CSV.
//
// Prerequisites:
// - coverspot binary installed and available in PATH
// - One or more consultant exports (.xlsx or .csv) in the export directory
//
// Usage: go run benchmark/main.go [export-dir]
//
//	export-dir: Directory containing consultant exports
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Export      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ExportDir   string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Commands    [][]string
	Exports     []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [export-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		ExportDir:   os.Args[1],
		Timeout:     2 * time.Minute,
		Workers:     6,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Commands: [][]string{
			{"report"},
			{"ranked", "--limit", "100"},
			{"sweep"},
		},
	}

	exports, err := findExports(config.ExportDir)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}
	config.Exports = exports

	if _, err := exec.LookPath("coverspot"); err != nil {
		fmt.Printf("Prerequisites check failed: coverspot binary not found in PATH\n")
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("coverspot", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// findExports lists the spreadsheet and CSV exports of dir in name order.
func findExports(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var exports []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".xlsx" || ext == ".csv") {
			exports = append(exports, filepath.Join(dir, e.Name()))
		}
	}
	if len(exports) == 0 {
		return nil, fmt.Errorf("no .xlsx or .csv exports found in %s", dir)
	}
	slices.Sort(exports)
	return exports, nil
}

// runBenchmarks executes every command against every export.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d exports, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Exports), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, export := range config.Exports {
		fmt.Printf("Benchmarking %s\n", filepath.Base(export))
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, export, command))
		}
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command.
func runBenchmarkSuite(config BenchmarkConfig, export string, command []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", strings.Join(command, " "), filepath.Base(export))

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, export, command, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Export:      filepath.Base(export),
		Command:     command[0],
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a coverspot command numRuns times and returns the cold time and warm times.
func runBenchmark(config BenchmarkConfig, export string, command []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append(slices.Clone(command), export,
		"--cache-backend", cacheBackend,
		"--workers", fmt.Sprint(config.Workers),
		"--color", "no")

	var times []float64
	for run := 1; run <= numRuns; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "coverspot", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		// Timeouts and failures are left out of the averages
		if err == nil && isSuccess(output) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Evaluated in") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("coverspot_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"export", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Export, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by command.
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command[0])
		for _, result := range results {
			if result.Command == command[0] {
				fmt.Printf("  %-24s: No-cache: %s, Cold: %s, Warm: %s\n", result.Export, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
