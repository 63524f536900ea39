package receipt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
)

// RenderError carries a machine-readable code alongside the cause
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

func newRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// PDFRenderer converts a complete HTML document to PDF bytes
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// ChromedpConfig configures the headless Chrome renderer
type ChromedpConfig struct {
	// RemoteURL points at a running Chrome DevTools endpoint; empty launches a local browser
	RemoteURL string
	NoSandbox bool
	Timeout   time.Duration
	Logger    *zap.Logger
}

// A4 in inches, the unit Chrome's print API uses
const (
	paperWidthIn  = 210 / 25.4
	paperHeightIn = 297 / 25.4
)

// ChromedpRenderer prints HTML through the Chrome DevTools Protocol
type ChromedpRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func NewChromedpRenderer(cfg ChromedpConfig) *ChromedpRenderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRenderer{timeout: cfg.Timeout, logger: logger}
	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

func (r *ChromedpRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, newRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// stop the browser tab when the caller gives up
	go func() {
		select {
		case <-ctx.Done():
			browserCancel()
		case <-browserCtx.Done():
		}
	}()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, newRenderError(ErrCodeRenderTimeout, fmt.Sprintf("PDF rendering timed out after %v", r.timeout), err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, newRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdf) == 0 {
		return nil, newRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	r.logger.Info("receipt rendered", zap.Int("bytes", len(pdf)), zap.Duration("duration", time.Since(start)))
	return pdf, nil
}

func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
