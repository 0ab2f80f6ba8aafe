// Backtest tool for replaying labeled forecast windows against Farmer-Aid.
//
// Usage:
//   go run cmd/backtest/main.go -csv /path/to/seasons.csv -url http://localhost:8080
//
// This tool:
//   1. Reads historical forecast windows with agronomist suitability labels
//   2. Sends each window to Farmer-Aid as an inline-forecast evaluation
//   3. Compares the returned status with the label
//   4. Reports per-status accuracy and latency
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// SeasonWindow is one labeled row: a crop, a place and five days of
// forecast data with the suitability an agronomist assigned to it.
type SeasonWindow struct {
	Crop     string
	Place    string
	MaxTemps []float64
	MinTemps []float64
	Rain     []float64
	Expected string // Suitable, Marginal or Unsuitable
}

// EvaluateRequest is the Farmer-Aid API request format.
type EvaluateRequest struct {
	Crop     string           `json:"crop"`
	Place    string           `json:"place,omitempty"`
	Forecast *ForecastPayload `json:"forecast"`
}

// ForecastPayload carries the daily arrays in the upstream wire shape.
type ForecastPayload struct {
	Daily DailyBlock `json:"daily"`
}

type DailyBlock struct {
	TemperatureMax   []float64 `json:"temperature_2m_max"`
	TemperatureMin   []float64 `json:"temperature_2m_min"`
	PrecipitationSum []float64 `json:"precipitation_sum"`
}

// EvaluateResponse is the subset of the API response the backtest needs.
type EvaluateResponse struct {
	ID          string `json:"id"`
	Suitability struct {
		Status  string   `json:"status"`
		Reasons []string `json:"reasons"`
	} `json:"suitability"`
}

// Metrics tracks backtest results.
type Metrics struct {
	Matches    int64
	Mismatches int64

	// Per returned status
	Suitable   int64
	Marginal   int64
	Unsuitable int64

	TotalProcessed int64
	TotalErrors    int64

	ProcessingTimeMs int64
}

func main() {
	csvPath := flag.String("csv", "", "Path to labeled season CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "Farmer-Aid base URL")
	limit := flag.Int("limit", 0, "Maximum windows to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	verbose := flag.Bool("verbose", false, "Print each window result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: backtest -csv /path/to/seasons.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Farmer-Aid backtest")
	fmt.Printf("  CSV file: %s\n", *csvPath)
	fmt.Printf("  URL:      %s\n", *baseURL)
	fmt.Printf("  Workers:  %d\n", *workers)
	fmt.Println()

	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: Farmer-Aid not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure the server is running:")
		fmt.Println("  go run cmd/farmeraid/main.go")
		os.Exit(1)
	}
	fmt.Println("server is healthy")

	windows, err := readSeasonCSV(*csvPath, *limit)
	if err != nil {
		fmt.Printf("ERROR: failed to read CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("loaded %d labeled windows\n\n", len(windows))

	startTime := time.Now()
	metrics := runBacktest(windows, *baseURL, *workers, *verbose)
	duration := time.Since(startTime)

	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// readSeasonCSV expects a header with crop, place, expected and day-indexed
// columns tmax_1..tmax_5, tmin_1..tmin_5, rain_1..rain_5.
func readSeasonCSV(path string, limit int) ([]SeasonWindow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"crop", "expected", "tmax_1", "tmin_1", "rain_1"} {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	series := func(record []string, prefix string) []float64 {
		var vals []float64
		for day := 1; day <= 5; day++ {
			idx, ok := colIndex[fmt.Sprintf("%s_%d", prefix, day)]
			if !ok || record[idx] == "" {
				break
			}
			v, err := strconv.ParseFloat(record[idx], 64)
			if err != nil {
				break
			}
			vals = append(vals, v)
		}
		return vals
	}

	var windows []SeasonWindow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}

		w := SeasonWindow{
			Crop:     record[colIndex["crop"]],
			Expected: record[colIndex["expected"]],
			MaxTemps: series(record, "tmax"),
			MinTemps: series(record, "tmin"),
			Rain:     series(record, "rain"),
		}
		if idx, ok := colIndex["place"]; ok {
			w.Place = record[idx]
		}
		if w.Crop == "" || len(w.MaxTemps) == 0 {
			continue
		}

		windows = append(windows, w)

		if limit > 0 && len(windows) >= limit {
			break
		}
	}

	return windows, nil
}

func runBacktest(windows []SeasonWindow, baseURL string, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{}

	work := make(chan SeasonWindow, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for w := range work {
				start := time.Now()
				result, err := evaluateWindow(client, baseURL, w)
				elapsed := time.Since(start).Milliseconds()

				atomic.AddInt64(&metrics.ProcessingTimeMs, elapsed)
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s/%s -> %v\n", w.Crop, w.Place, err)
					}
					continue
				}

				status := result.Suitability.Status
				switch status {
				case "Suitable":
					atomic.AddInt64(&metrics.Suitable, 1)
				case "Marginal":
					atomic.AddInt64(&metrics.Marginal, 1)
				case "Unsuitable":
					atomic.AddInt64(&metrics.Unsuitable, 1)
				}

				match := strings.EqualFold(status, w.Expected)
				if match {
					atomic.AddInt64(&metrics.Matches, 1)
				} else {
					atomic.AddInt64(&metrics.Mismatches, 1)
				}

				if verbose {
					mark := "ok"
					if !match {
						mark = "MISMATCH"
					}
					fmt.Printf("%-8s | %-10s %-16s | expected %-10s got %-10s (%v)\n",
						mark, w.Crop, w.Place, w.Expected, status, result.Suitability.Reasons)
				}
			}
		}()
	}

	for _, w := range windows {
		work <- w
	}
	close(work)

	wg.Wait()

	return metrics
}

func evaluateWindow(client *http.Client, baseURL string, w SeasonWindow) (*EvaluateResponse, error) {
	req := EvaluateRequest{
		Crop:  w.Crop,
		Place: w.Place,
		Forecast: &ForecastPayload{
			Daily: DailyBlock{
				TemperatureMax:   w.MaxTemps,
				TemperatureMin:   w.MinTemps,
				PrecipitationSum: w.Rain,
			},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/evaluate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result EvaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\nBACKTEST RESULTS")
	fmt.Printf("  Processed:   %d\n", m.TotalProcessed)
	fmt.Printf("  Errors:      %d\n", m.TotalErrors)
	fmt.Println()
	fmt.Printf("  Suitable:    %d\n", m.Suitable)
	fmt.Printf("  Marginal:    %d\n", m.Marginal)
	fmt.Printf("  Unsuitable:  %d\n", m.Unsuitable)
	fmt.Println()

	scored := m.Matches + m.Mismatches
	if scored > 0 {
		accuracy := float64(m.Matches) / float64(scored)
		fmt.Printf("  Label agreement:  %d / %d (%.2f%%)\n", m.Matches, scored, 100*accuracy)
	}

	fmt.Printf("\n  Total duration: %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		avgMs := float64(m.ProcessingTimeMs) / float64(m.TotalProcessed)
		rps := float64(m.TotalProcessed) / duration.Seconds()
		fmt.Printf("  Avg latency:    %.2f ms\n", avgMs)
		fmt.Printf("  Throughput:     %.2f eval/sec\n", rps)
	}
	fmt.Println()
}
