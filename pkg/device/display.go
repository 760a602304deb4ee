package device

import (
	"context"
	"image"
)

// Display is the command surface of a PicoPaper display, local or remote.
type Display interface {
	Identify(ctx context.Context) (*Info, error)
	ShowSplash(ctx context.Context) error
	ClearDisplay(ctx context.Context) error
	DisplayImage(ctx context.Context, img image.Image) error
	DrawString(ctx context.Context, text Text) error
	ResetLink() error
	// Disconnect releases the display after blanking it.
	Disconnect() error
	// Close releases the display and leaves the panel content.
	Close() error
}

var _ Display = (*Device)(nil)
