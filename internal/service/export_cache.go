package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"office-web-server/internal/domain"
)

// exportCacheTTL bounds how long a rendered PDF is reused.
const exportCacheTTL = 10 * time.Minute

// cachingRenderer serves repeated exports of identical pages from memory.
type cachingRenderer struct {
	next   domain.PDFRenderer
	cache  *expirable.LRU[string, []byte]
	logger domain.Logger
}

// NewCachingRenderer wraps next with an LRU of the given size. A size of
// zero or less returns next unchanged.
func NewCachingRenderer(next domain.PDFRenderer, size int, logger domain.Logger) domain.PDFRenderer {
	if size <= 0 {
		return next
	}
	return &cachingRenderer{
		next:   next,
		cache:  expirable.NewLRU[string, []byte](size, nil, exportCacheTTL),
		logger: logger,
	}
}

func (c *cachingRenderer) Name() string { return c.next.Name() }

func (c *cachingRenderer) Render(ctx context.Context, html string, page domain.PageSettings) ([]byte, error) {
	key := renderCacheKey(html, page)
	if cached, ok := c.cache.Get(key); ok {
		c.logger.Debug("Export cache hit", "key", key[:12])
		return cached, nil
	}

	pdf, err := c.next.Render(ctx, html, page)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, pdf)
	return pdf, nil
}

func renderCacheKey(html string, page domain.PageSettings) string {
	h := sha256.New()
	fmt.Fprintf(h, "%v\x00", page)
	h.Write([]byte(html))
	return hex.EncodeToString(h.Sum(nil))
}
