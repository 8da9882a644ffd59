// README: Smoke cases for auth, profiles, recommendations, logs, cache and throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"ada/migrations"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg      Config
	httpc    *http.Client
	db       *pgxpool.Pool
	redis    *redis.Client
	token    string
	tenantID int64
	tag      string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
		tag:   fmt.Sprintf("%d", time.Now().UnixNano()),
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) email() string { return "owner+" + r.tag + "@bench.test" }

func scenarioLoad(broker string, offered float64) map[string]any {
	return map[string]any{
		"profile_id":         "bench-dry-van",
		"origin_city":        "Dallas",
		"origin_state":       "TX",
		"dest_city":          "Atlanta",
		"dest_state":         "GA",
		"broker_name":        broker,
		"loaded_miles":       500,
		"deadhead_miles":     50,
		"offered_total_rate": offered,
	}
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{"Env: Postgres connect", func(ctx context.Context, r *Runner) Result {
			if r.db == nil {
				return Result{Status: statusFail, Note: "db not configured"}
			}
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := r.db.Ping(ctx); err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			return Result{Status: statusPass}
		}},
		{"Env: Redis connect", func(ctx context.Context, r *Runner) Result {
			if r.redis == nil {
				return Result{Status: statusSkip, Note: "redis not configured"}
			}
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := r.redis.Ping(ctx).Err(); err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			return Result{Status: statusPass}
		}},
		{"Migration: tables exist", func(ctx context.Context, r *Runner) Result {
			if r.db == nil {
				return Result{Status: statusFail, Note: "db not configured"}
			}
			tables, err := migrationTables()
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			for _, t := range tables {
				var exists bool
				err := r.db.QueryRow(ctx,
					"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", t,
				).Scan(&exists)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if !exists {
					return Result{Status: statusFail, Note: "missing table: " + t}
				}
			}
			return Result{Status: statusPass, Note: fmt.Sprintf("tables=%d", len(tables))}
		}},
		{"API: health", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodGet, "/health", nil, http.StatusOK, nil)
		}},
		{"Auth: register owner", func(ctx context.Context, r *Runner) Result {
			var out struct {
				AccessToken string `json:"access_token"`
			}
			res := r.expect(ctx, http.MethodPost, "/auth/register", map[string]any{
				"tenant_name": "Bench Carrier " + r.tag,
				"email":       r.email(),
				"password":    "bench-password",
			}, http.StatusOK, &out)
			r.token = out.AccessToken
			return res
		}},
		{"Auth: duplicate email -> 409", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPost, "/auth/register", map[string]any{
				"tenant_name": "Other " + r.tag,
				"email":       r.email(),
				"password":    "bench-password",
			}, http.StatusConflict, nil)
		}},
		{"Auth: me", func(ctx context.Context, r *Runner) Result {
			var out struct {
				TenantID int64 `json:"tenant_id"`
			}
			res := r.expect(ctx, http.MethodGet, "/me", nil, http.StatusOK, &out)
			r.tenantID = out.TenantID
			return res
		}},
		{"Profiles: upsert with defaults", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPost, "/profiles", map[string]any{
				"profile_id":           "bench-dry-van",
				"display_name":         "Bench Dry Van",
				"fuel_price_by_region": map[string]float64{"National": 3.85, "West": 4.25},
				"block_brokers":        map[string]string{"Shady Freight": "slow pay"},
			}, http.StatusOK, nil)
		}},
		{"Profiles: missing national -> 422", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPost, "/profiles", map[string]any{
				"profile_id":           "bench-bad",
				"display_name":         "Bad",
				"fuel_price_by_region": map[string]float64{"West": 4.25},
			}, http.StatusUnprocessableEntity, nil)
		}},
		{"Recommend: GO at $3.00/mi", func(ctx context.Context, r *Runner) Result {
			return r.expectDecision(ctx, scenarioLoad("Acme Logistics", 1500), "GO")
		}},
		{"Recommend: REVIEW at $2.40/mi", func(ctx context.Context, r *Runner) Result {
			return r.expectDecision(ctx, scenarioLoad("Acme Logistics", 1200), "REVIEW")
		}},
		{"Recommend: NO-GO below break-even", func(ctx context.Context, r *Runner) Result {
			return r.expectDecision(ctx, scenarioLoad("Acme Logistics", 1100), "NO-GO")
		}},
		{"Recommend: blocked broker", func(ctx context.Context, r *Runner) Result {
			return r.expectDecision(ctx, scenarioLoad("Shady Freight", 9000), "NO-GO")
		}},
		{"Cache: profile snapshot stored", func(ctx context.Context, r *Runner) Result {
			if r.redis == nil || r.tenantID == 0 {
				return Result{Status: statusSkip, Note: "redis or tenant unavailable"}
			}
			key := fmt.Sprintf("profile:%d:bench-dry-van", r.tenantID)
			n, err := r.redis.Exists(ctx, key).Result()
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			if n == 0 {
				return Result{Status: statusSkip, Note: "server may run without cache"}
			}
			return Result{Status: statusPass, Note: key}
		}},
		{"Logs: recent newest first", func(ctx context.Context, r *Runner) Result {
			var out []struct {
				Decision string `json:"decision"`
				Lane     string `json:"lane"`
			}
			res := r.expect(ctx, http.MethodGet, "/logs/recent?limit=4", nil, http.StatusOK, &out)
			if res.Status != statusPass {
				return res
			}
			if len(out) != 4 || out[0].Decision != "NO-GO" || out[3].Decision != "GO" {
				return Result{Status: statusFail, Note: fmt.Sprintf("unexpected log order: %+v", out)}
			}
			return res
		}},
		{"Perf: recommend throughput", func(ctx context.Context, r *Runner) Result {
			return r.perfLoad(ctx, "/recommend", scenarioLoad("Acme Logistics", 1500))
		}},
	}
}

func (r *Runner) do(ctx context.Context, method, path string, body any) (*http.Response, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	return resp, time.Since(start), err
}

func (r *Runner) expect(ctx context.Context, method, path string, body any, want int, out any) Result {
	resp, latency, err := r.do(ctx, method, path, body)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d body=%s", resp.StatusCode, msg)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return Result{Status: statusFail, Latency: latency, Note: err.Error()}
		}
	}
	return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
}

func (r *Runner) expectDecision(ctx context.Context, load map[string]any, want string) Result {
	var out struct {
		Decision string   `json:"decision"`
		Reasons  []string `json:"reasons"`
	}
	res := r.expect(ctx, http.MethodPost, "/recommend", load, http.StatusOK, &out)
	if res.Status != statusPass {
		return res
	}
	if out.Decision != want {
		return Result{Status: statusFail, Latency: res.Latency, Note: fmt.Sprintf("decision=%s reasons=%v", out.Decision, out.Reasons)}
	}
	res.Note = fmt.Sprintf("%s %v", out.Decision, out.Reasons)
	return res
}

func (r *Runner) perfLoad(ctx context.Context, path string, payload any) Result {
	if r.token == "" {
		return Result{Status: statusSkip, Note: "no token"}
	}
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				resp, _, err := r.do(ctx, http.MethodPost, path, payload)
				if err != nil {
					atomic.AddInt64(&errCount, 1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					atomic.AddInt64(&errCount, 1)
					continue
				}
				atomic.AddInt64(&count, 1)
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func migrationTables() ([]string, error) {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, name := range names {
		b, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return nil, err
		}
		for _, m := range createTableRe.FindAllStringSubmatch(string(b), -1) {
			tables = append(tables, m[1])
		}
	}
	return tables, nil
}
