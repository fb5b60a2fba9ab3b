// Package fasta retrieves FASTA sequences from the RCSB PDB and UniProt
// REST endpoints and assembles them into indexed multi-FASTA files.
//
// It is deliberately uncoupled from the configuration store: sequence
// retrieval needs nothing from the rest of the console.
package fasta

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cryodl/cryodl/internal/ctxlog"
	"resty.dev/v3"
)

const (
	rcsbFastaURL    = "https://www.rcsb.org/fasta/entry"
	uniprotFastaURL = "https://rest.uniprot.org/uniprotkb"
)

// InvalidIDError reports an identifier that matches neither the PDB nor the
// UniProt grammar.
type InvalidIDError struct {
	ID string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("identifier %q is neither a PDB id nor a UniProt id", e.ID)
}

// FetchError reports a retrieval that failed after retries.
type FetchError struct {
	ID     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %q: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("fetching %q: HTTP %d", e.ID, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Builder fetches sequences over HTTP.
type Builder struct {
	client     *resty.Client
	rcsbURL    string
	uniprotURL string
}

// Option configures a Builder.
type Option func(*Builder)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(b *Builder) { b.client.SetTimeout(d) }
}

// WithRetries sets the retry count and the delay between attempts.
func WithRetries(count int, delay time.Duration) Option {
	return func(b *Builder) {
		b.client.SetRetryCount(count)
		b.client.SetRetryWaitTime(delay)
	}
}

// WithBaseURLs redirects both databases to another host. Tests point this at
// a local server.
func WithBaseURLs(rcsb, uniprot string) Option {
	return func(b *Builder) {
		b.rcsbURL = rcsb
		b.uniprotURL = uniprot
	}
}

// New builds a Builder with a 30-second timeout and 3 retries, matching the
// public endpoints' rate-limit guidance.
func New(opts ...Option) *Builder {
	b := &Builder{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetRetryCount(3).
			SetRetryWaitTime(time.Second),
		rcsbURL:    rcsbFastaURL,
		uniprotURL: uniprotFastaURL,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Fetch retrieves the FASTA text for one identifier.
func (b *Builder) Fetch(ctx context.Context, id string) (string, error) {
	var url string
	switch Classify(id) {
	case TypePDB:
		url = fmt.Sprintf("%s/%s", b.rcsbURL, strings.ToUpper(id))
	case TypeUniProt:
		url = fmt.Sprintf("%s/%s.fasta", b.uniprotURL, id)
	default:
		return "", &InvalidIDError{ID: id}
	}

	resp, err := b.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", &FetchError{ID: id, Err: err}
	}
	if resp.IsError() {
		return "", &FetchError{ID: id, Status: resp.StatusCode()}
	}

	body := strings.TrimSpace(resp.String())
	if !strings.HasPrefix(body, ">") {
		return "", &FetchError{ID: id, Err: fmt.Errorf("response is not FASTA text")}
	}
	return body, nil
}

// BuildFile fetches every identifier and writes an indexed multi-FASTA file.
// Per-identifier failures are collected and reported together; the sequences
// that did resolve are still written.
func (b *Builder) BuildFile(ctx context.Context, ids []string, outPath string) (int, []error) {
	logger := ctxlog.FromContext(ctx)

	var sb strings.Builder
	var errs []error
	written := 0
	for i, id := range ids {
		seq, err := b.Fetch(ctx, id)
		if err != nil {
			logger.Warn("Sequence retrieval failed.", "id", id, "error", err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(&sb, "; entry %d: %s\n%s\n", i+1, id, seq)
		written++
		logger.Debug("Sequence retrieved.", "id", id)
	}

	if written > 0 {
		if err := os.WriteFile(outPath, []byte(sb.String()), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("writing %s: %w", outPath, err))
			return 0, errs
		}
		logger.Info("FASTA file written.", "path", outPath, "sequences", written)
	}
	return written, errs
}
