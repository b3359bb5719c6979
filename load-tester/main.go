package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL            string
	Total              int
	Rate               int
	Concurrency        int
	DuplicationPercent int
	OpenPercent        int
}

func parseFlags() *Config {
	c := &Config{}
	flag.StringVar(&c.BaseURL, "target", "", "Relay base URL (required)")
	flag.IntVar(&c.Total, "total", 10000, "Total requests")
	flag.IntVar(&c.Rate, "rate", 2000, "Requests per second")
	flag.IntVar(&c.Concurrency, "concurrency", 0, "Worker count (0=auto)")
	flag.IntVar(&c.DuplicationPercent, "duplication-percent", 0, "Duplication percent (0 = no duplicates)")
	flag.IntVar(&c.OpenPercent, "open-percent", 30, "Share of open reports vs delivery reports")
	flag.Parse()

	if c.BaseURL == "" {
		fmt.Fprintln(os.Stderr, "Error: -target is required")
		flag.Usage()
		os.Exit(1)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.Concurrency == 0 {
		c.Concurrency = c.Rate / 20 // Auto-scale workers
		if c.Concurrency < 50 {
			c.Concurrency = 50
		}
	}

	if c.DuplicationPercent > 100 {
		c.DuplicationPercent = 100
	} else if c.DuplicationPercent < 0 {
		c.DuplicationPercent = 0
	}

	if c.OpenPercent > 100 {
		c.OpenPercent = 100
	} else if c.OpenPercent < 0 {
		c.OpenPercent = 0
	}

	return c
}

type Stats struct {
	ok      uint64
	errors  uint64
	latency int64 // microseconds
}

// report is one ingest request: the relay path it goes to plus its payload.
type report struct {
	Path string
	Body map[string]any
}

// ReportPool keeps recently sent reports around so a configurable share of
// traffic can resend them, the way a flaky device redelivers notifications.
type ReportPool struct {
	mu  sync.RWMutex
	buf []report
	max int
}

func NewReportPool(max int) *ReportPool {
	return &ReportPool{buf: make([]report, 0, max), max: max}
}

func (p *ReportPool) Add(r report) {
	clone := cloneReport(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buf) >= p.max {
		p.buf = p.buf[1:]
	}
	p.buf = append(p.buf, clone)
}

func (p *ReportPool) GetRandom(rng *rand.Rand) (report, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.buf) == 0 {
		return report{}, false
	}
	idx := rng.Intn(len(p.buf))
	return cloneReport(p.buf[idx]), true
}

func (s *Stats) AddOK(duration time.Duration) {
	atomic.AddUint64(&s.ok, 1)
	atomic.AddInt64(&s.latency, duration.Microseconds())
}

func (s *Stats) AddError() {
	atomic.AddUint64(&s.errors, 1)
}

func (s *Stats) StartLogger(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	var lastOK, lastErr uint64

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok := atomic.LoadUint64(&s.ok)
			errs := atomic.LoadUint64(&s.errors)
			latTotal := atomic.LoadInt64(&s.latency)

			curOK := ok - lastOK
			curErr := errs - lastErr
			lastOK, lastErr = ok, errs

			avgLat := 0.0
			if ok > 0 {
				avgLat = float64(latTotal) / float64(ok) / 1000.0
			}

			log.Printf("[STATS] 1s -> OK: %d | ERR: %d | AvgLat: %.2fms | Total OK: %d", curOK, curErr, avgLat, ok)
		}
	}
}

func main() {
	cfg := parseFlags()
	stats := &Stats{}
	pool := NewReportPool(10000)

	// High-performance HTTP Client
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency,
			MaxIdleConnsPerHost: cfg.Concurrency, // Critical: Keep as many connections open as there are workers.
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}

	log.Printf("Starting Load Test: Target=%s Rate=%d/s Total=%d Workers=%d", cfg.BaseURL, cfg.Rate, cfg.Total, cfg.Concurrency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stats Logger
	go stats.StartLogger(ctx)

	// Job Queue
	jobs := make(chan struct{}, cfg.Rate*2)
	var wg sync.WaitGroup
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rngs := make([]*rand.Rand, cfg.Concurrency)
	for i := 0; i < cfg.Concurrency; i++ {
		rngs[i] = rand.New(rand.NewSource(rng.Int63()))
	}

	// Workers
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go startWorker(client, cfg, jobs, stats, pool, rngs[i], &wg)
	}

	// Rate Limiter (Main Loop)
	remaining := cfg.Total
	for remaining > 0 {
		start := time.Now()
		batch := cfg.Rate
		if remaining < batch {
			batch = remaining
		}

		for i := 0; i < batch; i++ {
			jobs <- struct{}{}
		}
		remaining -= batch

		elapsed := time.Since(start)
		if elapsed < time.Second {
			time.Sleep(time.Second - elapsed)
		}
	}

	close(jobs)
	wg.Wait()

	log.Printf("DONE. Total OK: %d | Total Errors: %d", atomic.LoadUint64(&stats.ok), atomic.LoadUint64(&stats.errors))
}

func startWorker(client *http.Client, cfg *Config, jobs <-chan struct{}, stats *Stats, pool *ReportPool, rng *rand.Rand, wg *sync.WaitGroup) {
	defer wg.Done()

	headers := http.Header{"Content-Type": []string{"application/json"}}

	for range jobs {
		r := pickReport(rng, pool, cfg.DuplicationPercent, cfg.OpenPercent)
		start := time.Now()

		err := sendReport(client, cfg.BaseURL+r.Path, r.Body, headers)
		if err != nil {
			stats.AddError()
		} else {
			stats.AddOK(time.Since(start))
		}
	}
}

func sendReport(client *http.Client, url string, data any, headers http.Header) error {
	body, _ := json.Marshal(data)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header = headers

	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	// Performance Hack: Read and discard the Body so the connection can be reused (Keep-Alive)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http status: %d", resp.StatusCode)
	}
	return nil
}

func pickReport(rng *rand.Rand, pool *ReportPool, dupPercent, openPercent int) report {
	if dupPercent > 0 && rng.Intn(100) < dupPercent {
		if r, ok := pool.GetRandom(rng); ok {
			return r
		}
	}
	r := generateRandomReport(rng, openPercent)
	pool.Add(r)
	return r
}

func generateRandomReport(rng *rand.Rand, openPercent int) report {
	pusher := map[string]any{
		"instanceId":            fmt.Sprintf("instance-%02d", rng.Intn(10)),
		"publishId":             fmt.Sprintf("pubid-%d", rng.Intn(100000)),
		"hasDisplayableContent": rng.Intn(2) == 0,
		"hasData":               rng.Intn(2) == 0,
	}
	body := map[string]any{
		"device_id":      fmt.Sprintf("device-%d", rng.Intn(5000)),
		"user_id":        fmt.Sprintf("user-%d", rng.Intn(100000)),
		"timestamp_secs": time.Now().Unix() - int64(rng.Intn(60)), // Last 60 seconds
		"pusher":         pusher,
	}

	if rng.Intn(100) < openPercent {
		return report{Path: "/v1/reports/opened", Body: body}
	}

	body["app_in_background"] = rng.Intn(2) == 0
	return report{Path: "/v1/reports/delivered", Body: body}
}

func cloneReport(r report) report {
	body := make(map[string]any, len(r.Body))
	for k, v := range r.Body {
		if nested, ok := v.(map[string]any); ok {
			cp := make(map[string]any, len(nested))
			for nk, nv := range nested {
				cp[nk] = nv
			}
			body[k] = cp
			continue
		}
		body[k] = v
	}
	return report{Path: r.Path, Body: body}
}
