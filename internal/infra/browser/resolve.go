package browser

import (
	"fmt"
	"os"

	"github.com/go-rod/rod/lib/launcher"

	"office-web-server/internal/domain"
)

// Options configures how renderers find and start the browser.
type Options struct {
	// ChromePath pins the browser executable. Empty means look it up.
	ChromePath string
	// NoSandbox disables the Chrome sandbox, needed when running as root
	// or inside most containers.
	NoSandbox bool
	// AutoDownload lets rod fetch a Chromium build when none is installed.
	AutoDownload bool
}

// lookPath and download are replaced in tests.
var (
	lookPath = launcher.LookPath
	download = func() (string, error) { return launcher.NewBrowser().Get() }
)

// Resolve returns the browser executable: the configured path, else one
// found on the system, else (when allowed) a downloaded Chromium.
func Resolve(opts Options) (string, error) {
	if opts.ChromePath != "" {
		if _, err := os.Stat(opts.ChromePath); err != nil {
			return "", fmt.Errorf("%w: %s", domain.ErrBrowserNotFound, opts.ChromePath)
		}
		return opts.ChromePath, nil
	}
	if p, ok := lookPath(); ok {
		return p, nil
	}
	if opts.AutoDownload {
		p, err := download()
		if err != nil {
			return "", fmt.Errorf("downloading browser: %w", err)
		}
		return p, nil
	}
	return "", domain.ErrBrowserNotFound
}

// NewRenderer returns the renderer registered under name.
func NewRenderer(name string, opts Options, logger domain.Logger) (domain.PDFRenderer, error) {
	switch name {
	case "", ChromedpName:
		return NewChromedpRenderer(opts, logger), nil
	case RodName:
		return NewRodRenderer(opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown PDF renderer %q", name)
	}
}

// blankPage is the document the export HTML is written into. Content set on
// about:blank cannot load file:// subresources.
const blankPage = "about:blank"
