package pdfraster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/alnah/go-pdfraster/internal/fileutil"
)

// ProbeOutcome is the result of one reachability check. Not persisted.
type ProbeOutcome struct {
	Locator   EngineLocator
	Reachable bool
	Latency   time.Duration
	Err       error
}

// LatencyMs returns the probe latency in whole milliseconds.
func (o ProbeOutcome) LatencyMs() int64 {
	return o.Latency.Milliseconds()
}

// Prober checks whether a locator's worker module exists.
// Implementations never fail: errors are reported through ProbeOutcome.
type Prober interface {
	Probe(ctx context.Context, loc EngineLocator, timeout time.Duration) ProbeOutcome
}

// HTTPProber probes remote locators with HEAD requests and local ones
// with a file stat.
type HTTPProber struct {
	client *http.Client
}

// NewProber creates a prober. A nil client uses http.DefaultClient.
func NewProber(client *http.Client) *HTTPProber {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProber{client: client}
}

// Probe performs a lightweight existence check bounded by timeout.
func (p *HTTPProber) Probe(ctx context.Context, loc EngineLocator, timeout time.Duration) ProbeOutcome {
	start := time.Now()
	out := ProbeOutcome{Locator: loc}

	if loc.IsZero() {
		out.Err = fmt.Errorf("%w: zero locator", ErrInvalidLocator)
		return out
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var err error
	if loc.IsLocal() {
		err = probeLocal(probeCtx, loc)
	} else {
		err = p.probeRemote(probeCtx, loc)
	}

	out.Latency = time.Since(start)
	if err != nil {
		out.Err = classifyProbeError(probeCtx, err)
		return out
	}
	out.Reachable = true
	return out
}

// probeLocal checks that the worker file exists and is not empty.
func probeLocal(ctx context.Context, loc EngineLocator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := fileutil.LocalPath(loc.WorkerURL())
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLocatorUnreachable, err)
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return fmt.Errorf("%w: %s is not a usable file", ErrLocatorUnreachable, path)
	}
	return nil
}

// probeRemote issues a HEAD request, falling back to a one-byte ranged GET
// for servers that reject HEAD.
func (p *HTTPProber) probeRemote(ctx context.Context, loc EngineLocator) error {
	status, err := p.do(ctx, http.MethodHead, loc.WorkerURL())
	if err != nil {
		return err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		status, err = p.do(ctx, http.MethodGet, loc.WorkerURL())
		if err != nil {
			return err
		}
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("%w: HTTP %d", ErrLocatorUnreachable, status)
	}
	return nil
}

func (p *HTTPProber) do(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}

// classifyProbeError maps deadline and network timeouts to ErrProbeTimeout.
func classifyProbeError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrProbeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrProbeTimeout
	}
	if errors.Is(err, ErrLocatorUnreachable) || errors.Is(err, ErrInvalidLocator) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrLocatorUnreachable, err)
}
