package repository

import "context"

// RendererRepository defines the contract for turning a URL into rendered HTML.
type RendererRepository interface {
	// Render loads the page in a browser and returns the resulting document.
	Render(ctx context.Context, url string) (string, error)
}
