package pdfraster

// Notes:
// - Fakes replace the Chrome engine, the network prober and the verifier
//   so the strategy chain runs without a browser or network access
// - Call counters let tests assert which collaborators were consulted
// - withProber/withVerifier are test-only options for dependency injection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Internal test options
// ---------------------------------------------------------------------------

func withProber(p Prober) Option {
	return func(c *Converter) {
		c.prober = p
	}
}

func withVerifier(v Verifier) Option {
	return func(c *Converter) {
		c.verifier = v
	}
}

// ---------------------------------------------------------------------------
// Fake engine
// ---------------------------------------------------------------------------

type fakeSession struct {
	mu sync.Mutex

	pages        int
	width        float64
	height       float64
	configureErr error
	openErr      error
	failPage     int // 1-based; 0 disables
	panicOnOpen  bool
	delay        time.Duration

	configured []EngineLocator
	opened     int
	scales     []float64
	closed     bool
}

func newFakeSession(pages int) *fakeSession {
	return &fakeSession{pages: pages, width: 612, height: 792}
}

func (s *fakeSession) Configure(ctx context.Context, loc EngineLocator) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configured = append(s.configured, loc)
	return s.configureErr
}

func (s *fakeSession) OpenDocument(ctx context.Context, data []byte) (EngineDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicOnOpen {
		panic("engine crashed")
	}
	s.opened++
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &fakeDocument{session: s}, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) configureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.configured)
}

type fakeDocument struct {
	session *fakeSession
}

func (d *fakeDocument) PageCount() int { return d.session.pages }

func (d *fakeDocument) Page(ctx context.Context, index int) (EnginePage, error) {
	return &fakePage{session: d.session, index: index}, nil
}

func (d *fakeDocument) Close() error { return nil }

type fakePage struct {
	session *fakeSession
	index   int
}

func (p *fakePage) Size() (float64, float64) { return p.session.width, p.session.height }

func (p *fakePage) Render(ctx context.Context, scale float64) (image.Image, error) {
	p.session.mu.Lock()
	p.session.scales = append(p.session.scales, scale)
	fail := p.session.failPage == p.index+1
	p.session.mu.Unlock()

	if fail {
		return nil, errors.New("canvas exploded")
	}
	w := int(p.session.width * scale)
	h := int(p.session.height * scale)
	return solidImage(w, h, color.RGBA{R: 200, G: 200, B: 200, A: 255}), nil
}

// scriptedSession misbehaves per locator and records how many session
// calls overlap.
type scriptedSession struct {
	*fakeSession

	hang  map[string]bool          // Configure blocks until ctx ends
	stall map[string]time.Duration // Configure sleeps, ignoring ctx

	callMu    sync.Mutex
	active    int
	maxActive int
}

func newScriptedSession(pages int) *scriptedSession {
	return &scriptedSession{
		fakeSession: newFakeSession(pages),
		hang:        make(map[string]bool),
		stall:       make(map[string]time.Duration),
	}
}

func (s *scriptedSession) enter() {
	s.callMu.Lock()
	defer s.callMu.Unlock()
	s.active++
	s.maxActive = max(s.maxActive, s.active)
}

func (s *scriptedSession) leave() {
	s.callMu.Lock()
	defer s.callMu.Unlock()
	s.active--
}

func (s *scriptedSession) maxOverlap() int {
	s.callMu.Lock()
	defer s.callMu.Unlock()
	return s.maxActive
}

func (s *scriptedSession) Configure(ctx context.Context, loc EngineLocator) error {
	s.enter()
	defer s.leave()

	if s.hang[loc.Name()] {
		<-ctx.Done()
		return ctx.Err()
	}
	if d := s.stall[loc.Name()]; d > 0 {
		time.Sleep(d)
	}
	return s.fakeSession.Configure(ctx, loc)
}

func (s *scriptedSession) OpenDocument(ctx context.Context, data []byte) (EngineDocument, error) {
	s.enter()
	defer s.leave()
	return s.fakeSession.OpenDocument(ctx, data)
}

// ---------------------------------------------------------------------------
// Fake prober and verifier
// ---------------------------------------------------------------------------

type fakeProber struct {
	mu        sync.Mutex
	reachable map[string]bool
	calls     []string
}

func newFakeProber(reachable ...string) *fakeProber {
	p := &fakeProber{reachable: make(map[string]bool)}
	for _, name := range reachable {
		p.reachable[name] = true
	}
	return p
}

func (p *fakeProber) Probe(ctx context.Context, loc EngineLocator, timeout time.Duration) ProbeOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, loc.Name())
	if p.reachable[loc.Name()] {
		return ProbeOutcome{Locator: loc, Reachable: true, Latency: time.Millisecond}
	}
	return ProbeOutcome{Locator: loc, Err: ErrProbeTimeout, Latency: timeout}
}

func (p *fakeProber) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// slowProber delays chosen locators, honoring ctx.
type slowProber struct {
	*fakeProber
	delay map[string]time.Duration
}

func (p *slowProber) Probe(ctx context.Context, loc EngineLocator, timeout time.Duration) ProbeOutcome {
	if d := p.delay[loc.Name()]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ProbeOutcome{Locator: loc, Err: ctx.Err(), Latency: d}
		}
	}
	return p.fakeProber.Probe(ctx, loc, timeout)
}

type fakeVerifier struct {
	mu     sync.Mutex
	passes map[string]bool
	calls  []string
	delay  time.Duration
}

func newFakeVerifier(passing ...string) *fakeVerifier {
	v := &fakeVerifier{passes: make(map[string]bool)}
	for _, name := range passing {
		v.passes[name] = true
	}
	return v
}

func (v *fakeVerifier) Verify(ctx context.Context, loc EngineLocator, timeout time.Duration) bool {
	v.mu.Lock()
	v.calls = append(v.calls, loc.Name())
	delay := v.delay
	v.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return v.passes[loc.Name()]
}

func (v *fakeVerifier) callCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.calls)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func testLocators(names ...string) []EngineLocator {
	locs := make([]EngineLocator, 0, len(names))
	for _, name := range names {
		locs = append(locs, MustLocator(name, "https://"+name+".example.com/pdfjs", false))
	}
	return locs
}

// fakePDF builds bytes with n page objects. It is not a valid PDF, only
// enough for the page-count heuristic.
func fakePDF(n int) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n1 0 obj\n<</Type /Pages /Count ")
	fmt.Fprintf(&b, "%d", n)
	b.WriteString(">>\nendobj\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d 0 obj\n<</Type /Page /Parent 1 0 R>>\nendobj\n", i+2)
	}
	b.WriteString("%%EOF\n")
	return []byte(b.String())
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func decodeTestImage(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := decodeImage(data)
	if err != nil {
		t.Fatalf("decodeImage() error = %v", err)
	}
	return img
}

// newTestConverter builds a converter wired to fakes and a fresh cache.
func newTestConverter(t *testing.T, session EngineSession, prober Prober, verifier Verifier, locs []EngineLocator, opts ...Option) (*Converter, *EngineHealthCache) {
	t.Helper()
	cache := NewHealthCache()
	all := append([]Option{
		WithEngineSession(session),
		WithHealthCache(cache),
		WithLocators(locs...),
		withProber(prober),
		withVerifier(verifier),
	}, opts...)
	conv, err := NewConverter(all...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })
	return conv, cache
}
