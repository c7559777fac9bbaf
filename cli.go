package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/seo-optimizer/metasight/analyzer"
	"github.com/seo-optimizer/metasight/fetcher"
	"github.com/seo-optimizer/metasight/report"
	"github.com/seo-optimizer/metasight/session"
)

type analyzeFunc func(ctx context.Context, rawURL string) (*analyzer.Analysis, error)

func printAnalysis(w io.Writer, a *analyzer.Analysis, asJSON bool) error {
	if !asJSON {
		return report.Render(w, a)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

// readSource reads a file, or stdin when source is "-"
func readSource(stdin io.Reader, source string) (string, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	return string(data), nil
}

// watch starts an analysis for every non-empty line of in. Older analyses
// keep running when a newer line arrives but only the latest one to be
// started may print its result or error.
func watch(ctx context.Context, in io.Reader, out io.Writer, analyze analyzeFunc, asJSON bool) error {
	var (
		sess session.Session[*analyzer.Analysis]
		wg   sync.WaitGroup
		mu   sync.Mutex
	)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		rawURL := strings.TrimSpace(scanner.Text())
		if rawURL == "" {
			continue
		}

		tok := sess.Begin()
		wg.Add(1)
		go func() {
			defer wg.Done()

			analysis, err := analyze(ctx, rawURL)
			if !sess.Complete(tok, analysis, err) {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if !sess.Latest(tok) {
				return
			}
			if err != nil {
				fmt.Fprintf(out, "%s: %s\n", rawURL, fetcher.UserMessage(err))
				return
			}
			if err := printAnalysis(out, analysis, asJSON); err != nil {
				fmt.Fprintf(out, "%s: %v\n", rawURL, err)
			}
		}()
	}

	wg.Wait()
	return scanner.Err()
}
