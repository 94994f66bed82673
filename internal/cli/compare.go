package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// volatileKeys differ between two otherwise identical responses.
var volatileKeys = map[string]struct{}{"meta": {}, "generatedAt": {}}

type compareTarget struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

var defaultCompareTargets = []compareTarget{
	{Method: http.MethodGet, Path: "/letters?limit=20", Critical: true},
	{Method: http.MethodGet, Path: "/surveys", Critical: true},
}

type comparison struct {
	Target       compareTarget
	RootStatus   int
	PrefixStatus int
	StatusMatch  bool
	BodyMatch    bool
	Err          error
	RootTook     time.Duration
	PrefixTook   time.Duration
}

func (c comparison) diff() bool {
	return c.Err != nil || !c.StatusMatch || !c.BodyMatch
}

func newCompareCommand() *cobra.Command {
	var (
		base        string
		prefix      string
		targetsPath string
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "compare-prefixes",
		Short: "Check that read routes answer identically at the root and under the API prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := defaultCompareTargets
			if targetsPath != "" {
				loaded, err := loadCompareTargets(targetsPath)
				if err != nil {
					return err
				}
				targets = loaded
			}
			client := &http.Client{Timeout: timeout}
			results := compareAll(cmd.Context(), client, base, prefix, targets)
			breaking := printCompareReport(cmd.OutOrStdout(), results)
			if breaking > 0 {
				return fmt.Errorf("%d breaking diffs", breaking)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "http://localhost:8080", "API base URL")
	cmd.Flags().StringVar(&prefix, "prefix", "/api", "API prefix to compare against the root mount")
	cmd.Flags().StringVar(&targetsPath, "targets", "", `JSON file: {"targets":[{"method","path","critical"}]}`)
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	return cmd
}

func loadCompareTargets(path string) ([]compareTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg struct {
		Targets []compareTarget `json:"targets"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func compareAll(ctx context.Context, client *http.Client, base, prefix string, targets []compareTarget) []comparison {
	base = strings.TrimRight(base, "/")
	prefixed := base + "/" + strings.Trim(prefix, "/")
	results := make([]comparison, 0, len(targets))
	for _, tgt := range targets {
		results = append(results, compareOne(ctx, client, base, prefixed, tgt))
	}
	return results
}

func compareOne(ctx context.Context, client *http.Client, rootBase, prefixBase string, tgt compareTarget) comparison {
	comp := comparison{Target: tgt}

	rootStatus, rootBody, rootTook, err := fetch(ctx, client, rootBase, tgt)
	if err != nil {
		comp.Err = fmt.Errorf("root request failed: %w", err)
		return comp
	}
	prefixStatus, prefixBody, prefixTook, err := fetch(ctx, client, prefixBase, tgt)
	if err != nil {
		comp.Err = fmt.Errorf("prefixed request failed: %w", err)
		return comp
	}

	comp.RootStatus, comp.PrefixStatus = rootStatus, prefixStatus
	comp.RootTook, comp.PrefixTook = rootTook, prefixTook
	comp.StatusMatch = rootStatus == prefixStatus
	comp.BodyMatch = bodiesEqual(rootBody, prefixBody)
	return comp
}

func fetch(ctx context.Context, client *http.Client, base string, tgt compareTarget) (int, []byte, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	return reflect.DeepEqual(stripVolatile(aj), stripVolatile(bj))
}

func stripVolatile(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, child := range val {
			if _, skip := volatileKeys[k]; skip {
				delete(val, k)
				continue
			}
			val[k] = stripVolatile(child)
		}
	case []interface{}:
		for i, child := range val {
			val[i] = stripVolatile(child)
		}
	}
	return v
}

// printCompareReport writes the report and returns the number of critical
// diffs.
func printCompareReport(out io.Writer, results []comparison) int {
	breaking, optional := 0, 0
	fmt.Fprintln(out, "Prefix Compare Report")
	fmt.Fprintln(out, "=====================")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERROR"
		case res.diff():
			status = "DIFF"
		}
		if res.diff() {
			if res.Target.Critical {
				breaking++
			} else {
				optional++
			}
		}
		fmt.Fprintf(out, "[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Err != nil {
			fmt.Fprintf(out, "  Error: %v\n", res.Err)
			continue
		}
		fmt.Fprintf(out, "  Root: %d (%s) | Prefixed: %d (%s)\n", res.RootStatus, res.RootTook, res.PrefixStatus, res.PrefixTook)
		fmt.Fprintf(out, "  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
	}
	fmt.Fprintf(out, "Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	return breaking
}
