package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type options struct {
	target     string
	users      int
	iterations int
	timeout    time.Duration
	think      time.Duration
}

type part struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
}

type lineItem struct {
	Part     part `json:"part"`
	Quantity int  `json:"quantity"`
}

type flowStats struct {
	requests int
	failures int
	total    time.Duration
	max      time.Duration
}

type recorder struct {
	mu    sync.Mutex
	flows map[string]*flowStats
}

func (r *recorder) record(flow string, elapsed time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.flows[flow]
	if !ok {
		s = &flowStats{}
		r.flows[flow] = s
	}
	s.requests++
	if err != nil {
		s.failures++
	}
	s.total += elapsed
	if elapsed > s.max {
		s.max = elapsed
	}
}

var models = []string{"Civic", "Corolla", "Fusca"}

type user struct {
	client *http.Client
	target string
	rng    *rand.Rand
}

func main() {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "stress_test",
		Short: "Drive the car-build gateway with concurrent virtual users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.target, "target", "http://localhost:8000", "gateway base URL")
	cmd.Flags().IntVar(&opts.users, "users", 20, "concurrent virtual users")
	cmd.Flags().IntVar(&opts.iterations, "iterations", 25, "tasks per user")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")
	cmd.Flags().DurationVar(&opts.think, "think", 0, "pause between tasks")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	rec := &recorder{flows: make(map[string]*flowStats)}
	client := &http.Client{Timeout: opts.timeout}

	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()

	for i := 0; i < opts.users; i++ {
		u := &user{
			client: client,
			target: opts.target,
			rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(i))),
		}
		g.Go(func() error {
			for n := 0; n < opts.iterations; n++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				u.runTask(ctx, rec)
				if opts.think > 0 {
					time.Sleep(opts.think)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	elapsed := time.Since(start)

	printResults(os.Stdout, opts, rec, elapsed)
	return err
}

// runTask picks a flow with the weights health:1 parts:3 quote:2 purchase:1.
func (u *user) runTask(ctx context.Context, rec *recorder) {
	switch n := u.rng.IntN(7); {
	case n < 1:
		u.timed(rec, "health", func() error { return u.health(ctx) })
	case n < 4:
		u.timed(rec, "parts", func() error {
			_, err := u.parts(ctx, models[u.rng.IntN(len(models))])
			return err
		})
	case n < 6:
		u.timed(rec, "parts->quote", func() error {
			_, err := u.quoteFlow(ctx, "Civic", 5)
			return err
		})
	default:
		u.timed(rec, "parts->quote->purchase", func() error { return u.purchaseFlow(ctx) })
	}
}

func (u *user) timed(rec *recorder, flow string, fn func() error) {
	start := time.Now()
	err := fn()
	rec.record(flow, time.Since(start), err)
}

func (u *user) health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := u.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "healthy" {
		return fmt.Errorf("unexpected health status %q", resp.Status)
	}
	return nil
}

func (u *user) parts(ctx context.Context, model string) ([]part, error) {
	var resp struct {
		Parts []part `json:"parts"`
	}
	req := map[string]any{"model": model, "year": 2018 + u.rng.IntN(7)}
	if err := u.do(ctx, http.MethodPost, "/api/v1/parts", req, &resp); err != nil {
		return nil, err
	}
	return resp.Parts, nil
}

// pick returns up to max distinct parts, each with quantity 1.
func (u *user) pick(parts []part, max int) []lineItem {
	return pickItems(u.rng, parts, max)
}

// pickItems keeps at most one chassis so generated builds stay valid.
func pickItems(rng *rand.Rand, parts []part, max int) []lineItem {
	n := 1 + rng.IntN(min(max, len(parts)))
	items := make([]lineItem, 0, n)
	hasChassis := false
	for _, i := range rng.Perm(len(parts)) {
		if len(items) == n {
			break
		}
		if isChassis(parts[i]) {
			if hasChassis {
				continue
			}
			hasChassis = true
		}
		items = append(items, lineItem{Part: parts[i], Quantity: 1})
	}
	return items
}

func isChassis(p part) bool {
	return strings.Contains(strings.ToLower(p.Name), "chassi")
}

func (u *user) quoteFlow(ctx context.Context, model string, max int) (float64, error) {
	parts, err := u.parts(ctx, model)
	if err != nil || len(parts) == 0 {
		return 0, err
	}
	return u.quote(ctx, u.pick(parts, max))
}

func (u *user) quote(ctx context.Context, items []lineItem) (float64, error) {
	var resp struct {
		Total *float64 `json:"total"`
	}
	if err := u.do(ctx, http.MethodPost, "/api/v1/quote", map[string]any{"items": items}, &resp); err != nil {
		return 0, err
	}
	if resp.Total == nil {
		return 0, errors.New("quote response without total")
	}
	return *resp.Total, nil
}

func (u *user) purchaseFlow(ctx context.Context) error {
	parts, err := u.parts(ctx, "Corolla")
	if err != nil || len(parts) == 0 {
		return err
	}
	items := u.pick(parts, 3)
	total, err := u.quote(ctx, items)
	if err != nil {
		return err
	}

	var order struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	req := map[string]any{"items": items, "declaredTotal": total}
	if err := u.do(ctx, http.MethodPost, "/api/v1/purchase", req, &order); err != nil {
		return err
	}
	if order.OrderID == "" && order.Status == "" {
		return errors.New("purchase response without order id")
	}
	return nil
}

func (u *user) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.target+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printResults(w io.Writer, opts options, rec *recorder, elapsed time.Duration) {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	names := make([]string, 0, len(rec.flows))
	for name := range rec.flows {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "========== STRESS TEST RESULTS ==========")
	fmt.Fprintf(w, "Target:           %s\n", opts.target)
	fmt.Fprintf(w, "Virtual users:    %d\n", opts.users)
	fmt.Fprintf(w, "Tasks per user:   %d\n", opts.iterations)
	fmt.Fprintf(w, "Duration:         %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FLOW\tREQUESTS\tFAILURES\tAVG\tMAX")
	var requests, failures int
	for _, name := range names {
		s := rec.flows[name]
		requests += s.requests
		failures += s.failures
		avg := time.Duration(0)
		if s.requests > 0 {
			avg = s.total / time.Duration(s.requests)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%v\t%v\n", name, s.requests, s.failures, avg.Round(time.Microsecond), s.max.Round(time.Microsecond))
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t\t\n", requests, failures)
	_ = tw.Flush()
	fmt.Fprintln(w, "==========================================")

	if failures == 0 {
		fmt.Fprintln(w, "PASS: no failed flows")
	} else {
		fmt.Fprintf(w, "FAIL: %d of %d flows failed\n", failures, requests)
	}
}
