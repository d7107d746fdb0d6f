package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/koopa0/secondbrain/internal/extract"
	"github.com/koopa0/secondbrain/internal/ingest"
	"github.com/koopa0/secondbrain/internal/knowledge"
	"github.com/koopa0/secondbrain/internal/log"
)

// runIngest ingests one file or URL given on the command line.
func runIngest(args []string, logger log.Logger) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: secondbrain ingest <file|url>")
	}
	target := args[0]

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var src ingest.Source
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		src, err = webSource(ctx, target)
	} else {
		src, err = fileSource(target)
	}
	if err != nil {
		return err
	}

	docID, err := a.pipeline.Ingest(ctx, src)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", target, err)
	}

	fmt.Printf("Ingested %s (document %s)\n", target, docID)
	return nil
}

// fileSource reads a local text file.
func fileSource(path string) (ingest.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ingest.Source{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return ingest.Source{
		Type:    knowledge.SourceText,
		Title:   filepath.Base(path),
		Locator: path,
		Text:    string(data),
	}, nil
}

// webSource fetches a page and extracts its readable text.
func webSource(ctx context.Context, pageURL string) (ingest.Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ingest.Source{}, fmt.Errorf("building request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ingest.Source{}, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ingest.Source{}, fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
	}

	page, err := extract.Web(resp.Body, pageURL)
	if err != nil {
		return ingest.Source{}, err
	}
	return ingest.Source{
		Type:    knowledge.SourceWeb,
		Title:   page.Title,
		Locator: pageURL,
		Text:    page.Text,
	}, nil
}
