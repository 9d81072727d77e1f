package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"office-web-server/internal/domain"
)

// TextConverter turns plain text into escaped paragraphs. Blank lines
// separate paragraphs; single newlines become line breaks.
type TextConverter struct{}

func NewTextConverter() *TextConverter { return &TextConverter{} }

func (c *TextConverter) Extensions() []string { return []string{".txt"} }

func (c *TextConverter) ConvertFile(ctx context.Context, p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return textToHTML(string(bytes.ToValidUTF8(b, []byte{}))), nil
}

func textToHTML(s string) string {
	s = normalizeText(s)
	if s == "" {
		return ""
	}

	var sb strings.Builder
	for _, para := range strings.Split(s, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i := range lines {
			lines[i] = html.EscapeString(lines[i])
		}
		sb.WriteString("<p>" + strings.Join(lines, "<br />") + "</p>")
	}
	return sb.String()
}

// HTMLFileConverter loads an HTML file and keeps only its body markup.
type HTMLFileConverter struct{}

func NewHTMLFileConverter() *HTMLFileConverter { return &HTMLFileConverter{} }

func (c *HTMLFileConverter) Extensions() []string { return []string{".html", ".htm"} }

func (c *HTMLFileConverter) ConvertFile(ctx context.Context, p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return bodyHTML(b)
}

// bodyHTML parses a document and renders the children of <body>, with
// script, style and noscript elements removed.
func bodyHTML(b []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("invalid HTML: %w", err)
	}

	body := findElement(doc, atom.Body)
	if body == nil {
		return "", nil
	}
	stripElements(body, atom.Script, atom.Style, atom.Noscript)

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func stripElements(n *html.Node, atoms ...atom.Atom) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		removed := false
		if c.Type == html.ElementNode {
			for _, a := range atoms {
				if c.DataAtom == a {
					n.RemoveChild(c)
					removed = true
					break
				}
			}
		}
		if !removed {
			stripElements(c, atoms...)
		}
		c = next
	}
}

// EPUBConverter concatenates the spine chapters of an EPUB as HTML,
// preceded by the book title when the package declares one.
type EPUBConverter struct {
	maxExpanded int64
}

// NewEPUBConverter creates a converter that stops once the entries it has
// read expand past maxExpanded bytes. Zero or less disables the check.
func NewEPUBConverter(maxExpanded int64) *EPUBConverter {
	return &EPUBConverter{maxExpanded: maxExpanded}
}

func (c *EPUBConverter) Extensions() []string { return []string{".epub"} }

func (c *EPUBConverter) ConvertFile(ctx context.Context, p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return extractEPUB(ctx, b, c.maxExpanded)
}

// extractEPUB reads at most limit expanded bytes across all entries;
// limit <= 0 means no limit.
func extractEPUB(ctx context.Context, epubBytes []byte, limit int64) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(epubBytes), int64(len(epubBytes)))
	if err != nil {
		return "", fmt.Errorf("failed to open epub: %w", err)
	}

	budget := newExpansionBudget(limit)
	containerBytes, err := budget.read(zr, "META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("invalid epub (missing container.xml): %w", err)
	}

	opfPath, err := findOPFPath(containerBytes)
	if err != nil || strings.TrimSpace(opfPath) == "" {
		return "", fmt.Errorf("invalid epub (missing package path)")
	}

	opfBytes, err := budget.read(zr, opfPath)
	if err != nil {
		return "", fmt.Errorf("invalid epub (missing package file): %w", err)
	}

	title, orderedHrefs := parseOPF(opfBytes)

	opfDir := path.Dir(opfPath)
	if opfDir == "." {
		opfDir = ""
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString("<h1>" + html.EscapeString(title) + "</h1>")
	}
	for _, href := range orderedHrefs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		href = strings.TrimSpace(href)
		if href == "" {
			continue
		}
		if unescaped, _ := url.PathUnescape(href); unescaped != "" {
			href = unescaped
		}
		b, err := budget.read(zr, path.Clean(path.Join(opfDir, href)))
		if errors.Is(err, domain.ErrArchiveTooLarge) {
			return "", err
		}
		if err != nil {
			// Best-effort: skip missing items.
			continue
		}
		chapter, err := bodyHTML(b)
		if err != nil || chapter == "" {
			continue
		}
		sb.WriteString("<section>" + chapter + "</section>")
	}
	return sb.String(), nil
}

// expansionBudget caps the decompressed bytes read from one archive.
type expansionBudget struct {
	remaining int64
	limited   bool
}

func newExpansionBudget(limit int64) *expansionBudget {
	return &expansionBudget{remaining: limit, limited: limit > 0}
}

// read returns the named entry and charges its size to the budget.
func (b *expansionBudget) read(zr *zip.Reader, name string) ([]byte, error) {
	limit := int64(-1)
	if b.limited {
		limit = b.remaining
	}
	data, err := readZipFile(zr, name, limit)
	if err != nil {
		return nil, err
	}
	b.remaining -= int64(len(data))
	return data, nil
}

// checkExpandedSize streams the entries of the archive at p that match
// and fails once their decompressed total passes limit.
func checkExpandedSize(p string, limit int64, match func(name string) bool) error {
	if limit <= 0 {
		return nil
	}
	zr, err := zip.OpenReader(p)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	remaining := limit
	for _, f := range zr.File {
		if !match(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		n, err := io.Copy(io.Discard, io.LimitReader(rc, remaining+1))
		rc.Close()
		if err != nil {
			return err
		}
		if n > remaining {
			return fmt.Errorf("%w: %s", domain.ErrArchiveTooLarge, f.Name)
		}
		remaining -= n
	}
	return nil
}

// readZipFile returns the named entry, matching case-insensitively when no
// exact match exists. A non-negative limit caps the decompressed size.
func readZipFile(zr *zip.Reader, name string, limit int64) ([]byte, error) {
	lower := strings.ToLower(name)
	var match *zip.File
	for _, f := range zr.File {
		if f.Name == name {
			match = f
			break
		}
		if match == nil && strings.ToLower(f.Name) == lower {
			match = f
		}
	}
	if match == nil {
		return nil, fmt.Errorf("file not found: %s", name)
	}

	rc, err := match.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	if limit < 0 {
		return io.ReadAll(rc)
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s", domain.ErrArchiveTooLarge, name)
	}
	return data, nil
}

func findOPFPath(containerXML []byte) (string, error) {
	type rootfile struct {
		FullPath string `xml:"full-path,attr"`
	}
	type rootfiles struct {
		Rootfiles []rootfile `xml:"rootfile"`
	}
	type container struct {
		Rootfiles rootfiles `xml:"rootfiles"`
	}

	var c container
	if err := xml.Unmarshal(containerXML, &c); err != nil {
		return "", err
	}
	for _, rf := range c.Rootfiles.Rootfiles {
		if strings.TrimSpace(rf.FullPath) != "" {
			return strings.TrimSpace(rf.FullPath), nil
		}
	}
	return "", fmt.Errorf("rootfile not found")
}

// parseOPF reads the title and the spine order from a package document.
// Matching is on local names so namespace prefixes do not matter.
func parseOPF(opf []byte) (title string, spineHrefs []string) {
	manifest := map[string]string{}
	spineIDs := make([]string, 0, 64)

	dec := xml.NewDecoder(bytes.NewReader(opf))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch strings.ToLower(se.Name.Local) {
		case "title":
			if title == "" {
				title = strings.TrimSpace(readElementText(dec))
			}
		case "item":
			id, href := attrValue(se, "id"), attrValue(se, "href")
			if id != "" && href != "" {
				manifest[id] = href
			}
		case "itemref":
			if idref := attrValue(se, "idref"); idref != "" {
				spineIDs = append(spineIDs, idref)
			}
		}
	}

	spineHrefs = make([]string, 0, len(spineIDs))
	for _, id := range spineIDs {
		if href, ok := manifest[id]; ok {
			spineHrefs = append(spineHrefs, href)
		}
	}
	return title, spineHrefs
}

func readElementText(dec *xml.Decoder) string {
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.CharData:
			out.Write([]byte(t))
		case xml.EndElement:
			return out.String()
		}
	}
	return out.String()
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			blank++
			if blank <= 1 {
				out = append(out, "")
			}
			continue
		}
		blank = 0
		out = append(out, t)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
