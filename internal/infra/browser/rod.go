package browser

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"office-web-server/internal/domain"
)

const RodName = "rod"

// RodRenderer prints pages with a browser driven by go-rod, one browser
// per Render.
type RodRenderer struct {
	opts   Options
	logger domain.Logger
}

func NewRodRenderer(opts Options, logger domain.Logger) *RodRenderer {
	return &RodRenderer{opts: opts, logger: logger}
}

func (r *RodRenderer) Name() string { return RodName }

func (r *RodRenderer) Render(ctx context.Context, html string, settings domain.PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	execPath, err := Resolve(r.opts)
	if err != nil {
		return nil, err
	}

	l := launcher.New().
		Context(ctx).
		Bin(execPath).
		Headless(true).
		NoSandbox(r.opts.NoSandbox).
		Set("disable-gpu").
		Set("disable-dev-shm-usage")
	defer l.Cleanup()
	defer l.Kill()

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("rod: launching browser: %w", err)
	}

	b := rod.New().Context(ctx).ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("rod: connecting to browser: %w", err)
	}
	defer b.Close()

	p, err := b.Page(proto.TargetCreateTarget{URL: blankPage})
	if err != nil {
		return nil, fmt.Errorf("rod: creating page: %w", err)
	}
	defer p.Close()

	// Requests for images and fonts count; the printed page needs them.
	wait := p.WaitRequestIdle(networkQuiet, nil, nil, []proto.NetworkResourceType{
		proto.NetworkResourceTypeWebSocket,
		proto.NetworkResourceTypeEventSource,
		proto.NetworkResourceTypeMedia,
	})
	if err := p.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("rod: setting content: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("rod: waiting for load: %w", err)
	}
	wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := p.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(settings.PaperWidth),
		PaperHeight:     floatPtr(settings.PaperHeight),
		MarginTop:       floatPtr(settings.MarginTop),
		MarginRight:     floatPtr(settings.MarginRight),
		MarginBottom:    floatPtr(settings.MarginBottom),
		MarginLeft:      floatPtr(settings.MarginLeft),
		PrintBackground: settings.PrintBackground,
	})
	if err != nil {
		return nil, fmt.Errorf("rod: printing page: %w", err)
	}
	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("rod: reading PDF stream: %w", err)
	}

	r.logger.Debug("Page printed", "renderer", RodName, "bytes", len(buf))
	return buf, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
