package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"commons/analytics"
	"commons/textfmt"
)

type stats struct {
	requests atomic.Int64
	success  atomic.Int64
	failed   atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
	recent    *analytics.Window
}

func main() {
	url := flag.String("url", "http://localhost:8080/sample", "sample endpoint")
	workers := flag.Int("c", 100, "concurrent connections")
	duration := flag.Duration("d", 30*time.Second, "test duration")
	keys := flag.Int("keys", 10, "number of distinct sample keys")
	spikeRate := flag.Float64("spike", 0.001, "fraction of samples sent as spikes")
	flag.Parse()

	if *workers <= 0 || *keys <= 0 {
		fmt.Fprintln(os.Stderr, "-c and -keys must be positive")
		os.Exit(2)
	}

	recent, err := analytics.NewWindow(1000)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	st := &stats{latencies: make([]time.Duration, 0, 10000), recent: recent}

	fmt.Println(textfmt.Table(nil, [][]string{
		{"URL:", *url},
		{"Connections:", strconv.Itoa(*workers)},
		{"Duration:", duration.String()},
		{"Keys:", strconv.Itoa(*keys)},
	}))

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        *workers,
			MaxIdleConnsPerHost: *workers,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	start := time.Now()
	end := start.Add(*duration)

	var wg sync.WaitGroup
	for range *workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				st.send(client, *url, *keys, *spikeRate)
			}
		}()
	}
	wg.Wait()

	st.print(time.Since(start))
}

func (st *stats) send(client *http.Client, url string, keys int, spikeRate float64) {
	value := int64(100 + rand.IntN(400))
	if rand.Float64() < spikeRate {
		value *= 20
	}
	body, _ := json.Marshal(map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"key":       fmt.Sprintf("sensor-%d", rand.IntN(keys)),
		"value":     value,
	})

	start := time.Now()
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	latency := time.Since(start)

	st.requests.Add(1)
	if err != nil {
		st.failed.Add(1)
		return
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		st.failed.Add(1)
		return
	}
	st.success.Add(1)

	st.mu.Lock()
	st.latencies = append(st.latencies, latency)
	st.recent.Add(latency.Microseconds())
	st.mu.Unlock()
}

func (st *stats) print(elapsed time.Duration) {
	total := st.requests.Load()
	success := st.success.Load()

	st.mu.Lock()
	lat := slices.Clone(st.latencies)
	recentAvg := st.recent.Average()
	st.mu.Unlock()
	slices.Sort(lat)

	rows := [][]string{
		{"Duration", elapsed.Round(time.Millisecond).String()},
		{"Total requests", strconv.FormatInt(total, 10)},
		{"Successful", strconv.FormatInt(success, 10)},
		{"Failed", strconv.FormatInt(st.failed.Load(), 10)},
		{"Requests/sec", fmt.Sprintf("%.2f", float64(total)/elapsed.Seconds())},
	}
	if total > 0 {
		rows = append(rows, []string{"Success rate", fmt.Sprintf("%.2f%%", float64(success)/float64(total)*100)})
	}
	if len(lat) > 0 {
		rows = append(rows,
			[]string{"Latency min", lat[0].String()},
			[]string{"Latency max", lat[len(lat)-1].String()},
			[]string{"Latency p50", percentile(lat, 50).String()},
			[]string{"Latency p95", percentile(lat, 95).String()},
			[]string{"Latency p99", percentile(lat, 99).String()},
			[]string{"Last 1000 avg", (time.Duration(recentAvg) * time.Microsecond).String()},
		)
	}

	fmt.Println(textfmt.Table([]string{"Load test results", ""}, rows))
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
