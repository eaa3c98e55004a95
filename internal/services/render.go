package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"kscore-go/internal/config"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// PDFRenderer prints HTML documents to PDF with a headless Chromium driven
// by rod. The browser is started lazily on the first render.
type PDFRenderer struct {
	log  *zap.Logger
	conf config.RenderConfig

	mu      sync.Mutex
	browser *rod.Browser
}

func NewPDFRenderer(log *zap.Logger, conf config.RenderConfig) *PDFRenderer {
	return &PDFRenderer{log: log, conf: conf}
}

// Render loads html into a fresh page and prints it with the configured
// page size and margins.
func (r *PDFRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	browser, err := r.ensureBrowser(ctx)
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for document: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: r.conf.Background,
		PaperWidth:      inches(r.conf.PaperWidth),
		PaperHeight:     inches(r.conf.PaperHeight),
		MarginTop:       inches(r.conf.Margin),
		MarginBottom:    inches(r.conf.Margin),
		MarginLeft:      inches(r.conf.Margin),
		MarginRight:     inches(r.conf.Margin),
	})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	r.log.Debug("Rendered PDF", zap.Int("bytes", len(data)))
	return data, nil
}

// Close shuts the browser down if it was started.
func (r *PDFRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}

func (r *PDFRenderer) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		if _, err := r.browser.Version(); err == nil {
			return r.browser, nil
		}
		r.log.Warn("Stale browser connection detected, relaunching")
		_ = r.browser.Close()
		r.browser = nil
	}

	l := launcher.New().Headless(r.conf.Headless)
	if r.conf.BrowserBin != "" {
		l = l.Bin(r.conf.BrowserBin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	// The browser outlives the request that started it.
	browser := rod.New().ControlURL(controlURL).Context(context.WithoutCancel(ctx))
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	r.log.Info("PDF browser started", zap.Bool("headless", r.conf.Headless))
	r.browser = browser
	return browser, nil
}

func inches(v float64) *float64 { return &v }
