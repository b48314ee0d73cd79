// Package main benchmarks the metricsagg CLI over synthetic project trees.
// It generates roots with an increasing number of project folders, runs
// summarize in every output format with and without SQLite run history, and
// writes the averaged timings to a CSV file.
//
// Prerequisites:
// - metricsagg binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic roots are generated
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the averaged timings of one root size and output format.
type BenchmarkResult struct {
	Folders     int
	Output      string
	NoHistory   string
	WithHistory string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir      string
	Timeout      time.Duration
	Runs         int
	FolderCounts []int
	FilesPerKind int
	Outputs      []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:      os.Args[1],
		Timeout:      5 * time.Minute,
		Runs:         3,
		FolderCounts: []int{10, 100, 1000},
		FilesPerKind: 25,
		Outputs:      []string{"csv", "json", "parquet"},
	}

	if _, err := exec.LookPath("metricsagg"); err != nil {
		fmt.Printf("Prerequisites check failed: metricsagg binary not found in PATH\n")
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
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

// runBenchmarks generates each root and times every output format against it.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: roots %v, %d runs, %v timeout\n", config.FolderCounts, config.Runs, config.Timeout)

	for _, folders := range config.FolderCounts {
		root := filepath.Join(config.WorkDir, fmt.Sprintf("root_%d", folders))
		fmt.Printf("Generating %d project folders in %s\n", folders, root)
		if err := generateRoot(root, folders, config.FilesPerKind); err != nil {
			return nil, err
		}

		for _, output := range config.Outputs {
			historyDB := filepath.Join(config.WorkDir, "history.db")
			_ = os.Remove(historyDB)

			result := BenchmarkResult{
				Folders:     folders,
				Output:      output,
				NoHistory:   averageTime(runBenchmark(config, root, output, "none", "")),
				WithHistory: averageTime(runBenchmark(config, root, output, "sqlite", historyDB)),
			}
			fmt.Printf("  %-8s no history: %s, sqlite history: %s\n", output, result.NoHistory, result.WithHistory)
			results = append(results, result)
		}
	}

	return results, nil
}

// generateRoot writes a project tree whose folders each hold all four analyzer files.
func generateRoot(root string, folders, filesPerKind int) error {
	for i := range folders {
		dir := filepath.Join(root, fmt.Sprintf("project_%04d", i))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		files := map[string]string{
			"complexity.json":   complexityJSON(filesPerKind),
			"halstead.json":     halsteadJSON(filesPerKind),
			"raw_metrics.json":  rawMetricsJSON(filesPerKind),
			"lizard_report.xml": lizardXML(filesPerKind),
		}
		for name, content := range files {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

// sourcePath alternates between application and test paths.
func sourcePath(i int) string {
	if i%3 == 0 {
		return fmt.Sprintf("pkg/tests/test_mod%d.py", i)
	}
	return fmt.Sprintf("pkg/mod%d.py", i)
}

func complexityJSON(n int) string {
	entries := make([]string, n)
	for i := range n {
		entries[i] = fmt.Sprintf(`"%s": [{"type": "function", "name": "f%d", "complexity": %d}, {"type": "class", "name": "C%d", "complexity": %d}]`,
			sourcePath(i), i, i%7+1, i, i%5+2)
	}
	return "{" + strings.Join(entries, ",") + "}"
}

func halsteadJSON(n int) string {
	entries := make([]string, n)
	for i := range n {
		entries[i] = fmt.Sprintf(`"%s": {"total": {"volume": %d.5, "difficulty": "%d", "effort": %d}}`,
			sourcePath(i), i*10, i%9, i*42)
	}
	return "{" + strings.Join(entries, ",") + "}"
}

func rawMetricsJSON(n int) string {
	entries := make([]string, n)
	for i := range n {
		entries[i] = fmt.Sprintf(`"%s": {"loc": %d, "sloc": %d, "comments": %d}`, sourcePath(i), i*20+5, i*15+3, i%11)
	}
	return "{" + strings.Join(entries, ",") + "}"
}

func lizardXML(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" ?><cppncss><measure type="Function">`)
	for i := range n {
		name := fmt.Sprintf("f%d(...) at pkg/mod%d.py:1", i, i)
		if i%3 == 0 {
			name = fmt.Sprintf("test_f%d(...) at pkg/tests/test_mod%d.py:1", i, i)
		}
		fmt.Fprintf(&b, `<item name="%s"><value>%d</value><value>%d</value><value>%d</value></item>`, name, i, i*4+1, i%6+1)
	}
	b.WriteString(`</measure></cppncss>`)
	return b.String()
}

// runBenchmark executes summarize multiple times and returns the successful run times.
func runBenchmark(config BenchmarkConfig, root, output, backend, connStr string) []float64 {
	args := []string{"summarize", root, "--output", output, "--output-file", os.DevNull, "--history-backend", backend}
	if connStr != "" {
		args = append(args, "--history-db-connect", connStr)
	}

	var times []float64
	for range config.Runs {
		start := time.Now()

		cmd := exec.Command("metricsagg", args...)
		cmd.Dir = config.WorkDir

		done := make(chan error, 1)
		go func() {
			_, err := cmd.CombinedOutput()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}
	return times
}

// averageTime formats the mean of the run times, or FAILED when none succeeded.
func averageTime(times []float64) string {
	if len(times) == 0 {
		return "FAILED"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("metricsagg_benchmark_%s.csv", timestamp))

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
	if err := writer.Write([]string{"folders", "output", "no_history_avg", "sqlite_history_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		record := []string{fmt.Sprint(result.Folders), result.Output, result.NoHistory, result.WithHistory}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %5d folders %-8s: No history: %s, SQLite history: %s\n",
			result.Folders, result.Output, result.NoHistory, result.WithHistory)
	}
}
