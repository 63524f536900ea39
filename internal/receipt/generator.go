package receipt

import (
	"context"
	"errors"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
)

// ErrNoRenderer is returned by PDF when the gateway runs without a browser
var ErrNoRenderer = errors.New("PDF rendering is not configured")

// Generator builds receipts with one currency and renderer
type Generator struct {
	renderer PDFRenderer
	currency string
}

// NewGenerator accepts a nil renderer; HTML still works, PDF reports ErrNoRenderer
func NewGenerator(renderer PDFRenderer, currency string) *Generator {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Generator{renderer: renderer, currency: currency}
}

// HTML returns the printable receipt document
func (g *Generator) HTML(sale model.Sale, store model.StoreDetails) (string, error) {
	return RenderHTML(Build(sale, store, g.currency))
}

// PDF renders the receipt document to PDF
func (g *Generator) PDF(ctx context.Context, sale model.Sale, store model.StoreDetails) ([]byte, error) {
	if g.renderer == nil {
		return nil, ErrNoRenderer
	}
	html, err := g.HTML(sale, store)
	if err != nil {
		return nil, err
	}
	return g.renderer.Render(ctx, html)
}
