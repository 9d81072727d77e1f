package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DocxConverter renders the main part of a Word document as HTML.
// It maps heading and title styles, bold/italic/underline/strike runs,
// list paragraphs and tables; everything else becomes plain paragraphs.
type DocxConverter struct {
	maxExpanded int64
}

// NewDocxConverter creates a converter that rejects archives whose XML
// parts expand past maxExpanded bytes. Zero or less disables the check.
func NewDocxConverter(maxExpanded int64) *DocxConverter {
	return &DocxConverter{maxExpanded: maxExpanded}
}

func (c *DocxConverter) Extensions() []string {
	return []string{".docx"}
}

// ConvertFile opens the archive at path and converts word/document.xml.
func (c *DocxConverter) ConvertFile(ctx context.Context, path string) (string, error) {
	// The docx reader loads its parts fully into memory.
	if err := checkExpandedSize(path, c.maxExpanded, isDocxTextPart); err != nil {
		return "", err
	}
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer r.Close()

	return documentXMLToHTML(ctx, strings.NewReader(r.Editable().GetContent()))
}

// isDocxTextPart matches the archive entries the docx reader loads.
func isDocxTextPart(name string) bool {
	return name == "word/document.xml" ||
		name == "word/_rels/document.xml.rels" ||
		strings.Contains(name, "header") ||
		strings.Contains(name, "footer")
}

type runFormat struct {
	bold, italic, underline, strike bool
}

func (f runFormat) wrap(text string) string {
	if f.strike {
		text = "<s>" + text + "</s>"
	}
	if f.underline {
		text = "<u>" + text + "</u>"
	}
	if f.italic {
		text = "<em>" + text + "</em>"
	}
	if f.bold {
		text = "<strong>" + text + "</strong>"
	}
	return text
}

// docxWriter accumulates HTML while walking WordprocessingML tokens.
type docxWriter struct {
	out strings.Builder

	inParagraph bool
	inPPr       bool
	inRun       bool
	inRPr       bool

	style  string
	isList bool
	para   strings.Builder

	format runFormat
	run    strings.Builder

	listOpen bool
}

func documentXMLToHTML(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	w := &docxWriter{}

	for n := 0; ; n++ {
		if n%512 == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := w.start(dec, t); err != nil {
				return "", err
			}
		case xml.EndElement:
			w.end(t)
		}
	}
	w.closeList()
	return strings.TrimSpace(w.out.String()), nil
}

func (w *docxWriter) start(dec *xml.Decoder, se xml.StartElement) error {
	switch se.Name.Local {
	case "p":
		w.inParagraph = true
		w.style = ""
		w.isList = false
		w.para.Reset()
	case "pPr":
		w.inPPr = true
	case "pStyle":
		if w.inPPr {
			w.style = attrValue(se, "val")
		}
	case "numPr":
		if w.inPPr {
			w.isList = true
		}
	case "r":
		w.inRun = true
		w.format = runFormat{}
		w.run.Reset()
	case "rPr":
		w.inRPr = true
	case "b", "i", "u", "strike", "dstrike":
		if w.inRun && w.inRPr && !w.inPPr {
			w.setFormat(se)
		}
	case "t":
		if !w.inRun {
			return dec.Skip()
		}
		var text string
		if err := dec.DecodeElement(&text, &se); err != nil {
			return fmt.Errorf("invalid text run: %w", err)
		}
		w.run.WriteString(html.EscapeString(text))
	case "tab":
		if w.inRun {
			w.run.WriteString("&emsp;")
		}
	case "br", "cr":
		if w.inRun {
			w.run.WriteString("<br />")
		}
	case "tbl":
		w.closeList()
		w.out.WriteString("<table>")
	case "tr":
		w.out.WriteString("<tr>")
	case "tc":
		w.out.WriteString("<td>")
	case "instrText", "delText":
		return dec.Skip()
	}
	return nil
}

func (w *docxWriter) end(ee xml.EndElement) {
	switch ee.Name.Local {
	case "p":
		w.flushParagraph()
		w.inParagraph = false
	case "pPr":
		w.inPPr = false
	case "r":
		if w.run.Len() > 0 {
			w.para.WriteString(w.format.wrap(w.run.String()))
		}
		w.inRun = false
	case "rPr":
		w.inRPr = false
	case "tbl":
		w.out.WriteString("</table>")
	case "tr":
		w.out.WriteString("</tr>")
	case "tc":
		w.closeList()
		w.out.WriteString("</td>")
	}
}

func (w *docxWriter) setFormat(se xml.StartElement) {
	val := strings.ToLower(attrValue(se, "val"))
	on := val != "0" && val != "false" && val != "none"
	switch se.Name.Local {
	case "b":
		w.format.bold = on
	case "i":
		w.format.italic = on
	case "u":
		w.format.underline = on
	case "strike", "dstrike":
		w.format.strike = on
	}
}

func (w *docxWriter) flushParagraph() {
	content := w.para.String()
	if strings.TrimSpace(content) == "" {
		return
	}

	if w.isList {
		if !w.listOpen {
			w.out.WriteString("<ul>")
			w.listOpen = true
		}
		w.out.WriteString("<li>" + content + "</li>")
		return
	}

	w.closeList()
	tag := paragraphTag(w.style)
	w.out.WriteString("<" + tag + ">" + content + "</" + tag + ">")
}

func (w *docxWriter) closeList() {
	if w.listOpen {
		w.out.WriteString("</ul>")
		w.listOpen = false
	}
}

// paragraphTag maps a Word paragraph style id to an HTML block tag.
func paragraphTag(style string) string {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	switch {
	case s == "title":
		return "h1"
	case s == "subtitle":
		return "h2"
	case len(s) == len("heading1") && strings.HasPrefix(s, "heading") && s[7] >= '1' && s[7] <= '6':
		return "h" + s[7:]
	case s == "quote" || s == "intensequote":
		return "blockquote"
	default:
		return "p"
	}
}

// attrValue returns the value of the attribute with the given local name.
func attrValue(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
