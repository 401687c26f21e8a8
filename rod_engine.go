package pdfraster

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-pdfraster/internal/assets"
	"github.com/alnah/go-pdfraster/internal/fileutil"
	"github.com/alnah/go-pdfraster/internal/process"
)

// Compile-time interface checks.
var (
	_ EngineSession  = (*ChromeSession)(nil)
	_ EngineDocument = (*chromeDocument)(nil)
	_ EnginePage     = (*chromePage)(nil)
)

const pngDataURLPrefix = "data:image/png;base64,"

// ChromeSession implements EngineSession with headless Chrome running
// pdf.js. Rod downloads a managed Chromium on first run if none is found.
//
// The session holds one browser tab; Configure loads pdf.js from the
// locator into it, replacing the previous engine.
type ChromeSession struct {
	timeout time.Duration
	logger  *slog.Logger

	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	active   EngineLocator
	cleanup  func()
}

// NewChromeSession creates a session. The browser starts lazily.
// timeout bounds browser operations whose context has no deadline.
func NewChromeSession(timeout time.Duration, logger *slog.Logger) *ChromeSession {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &ChromeSession{timeout: timeout, logger: logger}
}

// ensureBrowser lazily launches and connects to the browser.
func (s *ChromeSession) ensureBrowser() error {
	if s.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	// file:// shell pages load file:// engine builds
	l = l.Set("allow-file-access-from-files")

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	s.launcher = l

	s.browser = rod.New().ControlURL(u)
	if err := s.browser.Connect(); err != nil {
		s.browser = nil
		s.killLauncher()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	s.logger.Debug("browser started", slog.Int("pid", l.PID()))
	return nil
}

// Configure implements EngineSession. Reconfiguring the active locator is
// a no-op.
func (s *ChromeSession) Configure(ctx context.Context, loc EngineLocator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.page != nil && s.active.Equal(loc) {
		return nil
	}

	if err := s.ensureBrowser(); err != nil {
		return err
	}
	s.dropPage()

	shell, err := assets.RenderShell(assets.ShellData{
		ScriptURL: loc.ScriptURL(),
		WorkerURL: loc.WorkerURL(),
	})
	if err != nil {
		return err
	}
	path, cleanup, err := fileutil.WriteTempFile(shell, "html")
	if err != nil {
		return err
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: fileutil.FileURL(path)})
	if err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	s.page, s.cleanup = page, cleanup

	if err := s.bound(ctx).WaitLoad(); err != nil {
		s.dropPage()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	res, err := s.eval(ctx, `() => window.pdfraster ? window.pdfraster.version : null`)
	if err != nil {
		s.dropPage()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if res.Value.Nil() {
		s.dropPage()
		return fmt.Errorf("%w: engine library did not load from %s", ErrEngineNotConfigured, loc.ScriptURL())
	}

	s.active = loc
	s.logger.Debug("engine configured", slog.String("locator", loc.Name()), slog.String("version", res.Value.Str()))
	return nil
}

// OpenDocument implements EngineSession.
func (s *ChromeSession) OpenDocument(ctx context.Context, data []byte) (EngineDocument, error) {
	if s.page == nil {
		return nil, ErrEngineNotConfigured
	}

	res, err := s.eval(ctx, `(b64) => window.pdfraster.open(b64)`, base64.StdEncoding.EncodeToString(data))
	if err != nil {
		return nil, err
	}

	return &chromeDocument{
		session: s,
		id:      res.Value.Get("id").Str(),
		pages:   res.Value.Get("pages").Int(),
	}, nil
}

// Close implements EngineSession.
func (s *ChromeSession) Close() error {
	s.dropPage()

	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	s.killLauncher()
	return err
}

// dropPage closes the engine tab and removes its shell file.
func (s *ChromeSession) dropPage() {
	if s.page != nil {
		_ = s.page.Close()
		s.page = nil
	}
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
	s.active = EngineLocator{}
}

// killLauncher terminates the browser process tree and its profile dir.
func (s *ChromeSession) killLauncher() {
	if s.launcher == nil {
		return
	}
	if pid := s.launcher.PID(); pid > 0 {
		if err := process.KillTree(pid); err != nil {
			s.logger.Debug("browser kill", slog.Int("pid", pid), slog.Any("error", err))
		}
	}
	s.launcher.Kill()
	s.launcher.Cleanup()
	s.launcher = nil
}

// bound returns the page bound to ctx, falling back to the session timeout
// when ctx has no deadline.
func (s *ChromeSession) bound(ctx context.Context) *rod.Page {
	p := s.page.Context(ctx)
	if _, ok := ctx.Deadline(); !ok {
		p = p.Timeout(s.timeout)
	}
	return p
}

// eval runs a JS function in the engine tab and awaits its promise.
func (s *ChromeSession) eval(ctx context.Context, js string, args ...any) (*proto.RuntimeRemoteObject, error) {
	if s.page == nil {
		return nil, ErrEngineNotConfigured
	}
	res, err := s.bound(ctx).Evaluate(rod.Eval(js, args...).ByPromise())
	if err != nil {
		return nil, fmt.Errorf("engine call failed: %w", err)
	}
	return res, nil
}

type chromeDocument struct {
	session *ChromeSession
	id      string
	pages   int
}

func (d *chromeDocument) PageCount() int { return d.pages }

func (d *chromeDocument) Page(ctx context.Context, index int) (EnginePage, error) {
	if index < 0 || index >= d.pages {
		return nil, fmt.Errorf("page index %d out of range (0-%d)", index, d.pages-1)
	}
	res, err := d.session.eval(ctx, `(id, i) => window.pdfraster.pageSize(id, i)`, d.id, index)
	if err != nil {
		return nil, err
	}
	return &chromePage{
		doc:    d,
		index:  index,
		width:  res.Value.Get("width").Num(),
		height: res.Value.Get("height").Num(),
	}, nil
}

func (d *chromeDocument) Close() error {
	if d.session.page == nil {
		return nil
	}
	// Document cleanup must outlive a canceled request context.
	ctx, cancel := context.WithTimeout(context.Background(), d.session.timeout)
	defer cancel()
	_, err := d.session.eval(ctx, `(id) => window.pdfraster.close(id)`, d.id)
	return err
}

type chromePage struct {
	doc    *chromeDocument
	index  int
	width  float64
	height float64
}

func (p *chromePage) Size() (float64, float64) { return p.width, p.height }

func (p *chromePage) Render(ctx context.Context, scale float64) (image.Image, error) {
	res, err := p.doc.session.eval(ctx, `(id, i, s) => window.pdfraster.render(id, i, s)`, p.doc.id, p.index, scale)
	if err != nil {
		return nil, err
	}

	dataURL := res.Value.Str()
	if !strings.HasPrefix(dataURL, pngDataURLPrefix) {
		return nil, fmt.Errorf("unexpected canvas output for page %d", p.index+1)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, pngDataURLPrefix))
	if err != nil {
		return nil, fmt.Errorf("decoding canvas output: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding canvas output: %w", err)
	}
	return img, nil
}
