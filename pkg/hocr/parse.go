package hocr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrNoPages is returned for input without any ocr_page element.
var ErrNoPages = errors.New("no ocr_page elements found in hOCR data")

// Single-byte encodings seen in hOCR produced by older engines.
var charsets = map[string]encoding.Encoding{
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// ParseFile reads an hOCR file.
func ParseFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read hOCR file: %w", err)
	}
	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse converts raw hOCR into a Document.
func Parse(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, err
	}

	// Convert to UTF-8 if the document declares a single-byte charset
	if enc, ok := charsets[declaredCharset(data)]; ok {
		data, err = enc.NewDecoder().Bytes(data)
		if err != nil {
			return Document{}, fmt.Errorf("failed to decode hOCR: %w", err)
		}
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	doc := Document{Metadata: make(map[string]string)}
	readHead(&doc, root)

	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			doc.Pages = append(doc.Pages, readPage(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(root)

	if len(doc.Pages) == 0 {
		return doc, ErrNoPages
	}
	return doc, nil
}

// declaredCharset returns the lower-cased charset of a meta tag, if any.
func declaredCharset(data []byte) string {
	i := bytes.Index(bytes.ToLower(data), []byte("charset="))
	if i < 0 {
		return ""
	}
	rest := data[i+len("charset="):]
	end := bytes.IndexAny(rest, "\"';> \t\r\n/")
	if end < 0 {
		end = len(rest)
	}
	return strings.ToLower(strings.Trim(string(rest[:end]), `"'`))
}

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// parseBBox reads the bbox property of a title attribute.
func parseBBox(props map[string][]string) (BoundingBox, bool) {
	v, ok := props["bbox"]
	if !ok || len(v) < 4 {
		return BoundingBox{}, false
	}
	var f [4]float64
	for i := range f {
		n, err := strconv.ParseFloat(v[i], 64)
		if err != nil {
			return BoundingBox{}, false
		}
		f[i] = n
	}
	return BoundingBox{X1: f[0], Y1: f[1], X2: f[2], Y2: f[3]}, true
}

func readHead(doc *Document, root *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				if lang := attr(n, "lang"); lang != "" {
					doc.Language = lang
				}
			case "title":
				if n.FirstChild != nil {
					doc.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name, content := attr(n, "name"), attr(n, "content")
				switch {
				case name == "" || content == "":
				case strings.HasPrefix(name, "ocr-"):
					doc.Metadata[name] = content
				case name == "dc.language":
					doc.Language = content
				}
			case "body":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

// readPage flattens a page into lines. Words outside any ocr_line are
// grouped by their nearest container.
func readPage(n *html.Node) Page {
	page := Page{ID: attr(n, "id")}
	props := ParseTitle(attr(n, "title"))
	page.BBox, _ = parseBBox(props)
	if v := props["image"]; len(v) > 0 {
		page.ImageName = strings.Trim(strings.Join(v, " "), `"`)
	}
	if v := props["ppageno"]; len(v) > 0 {
		page.Number, _ = strconv.Atoi(v[0])
	}

	var loose *Line
	flush := func() {
		if loose != nil && len(loose.Words) > 0 {
			page.Lines = append(page.Lines, *loose)
		}
		loose = nil
	}

	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode {
			switch {
			case hasClass(c, "ocr_line") || hasClass(c, "ocrx_line") ||
				hasClass(c, "ocr_header") || hasClass(c, "ocr_caption") || hasClass(c, "ocr_textfloat"):
				flush()
				if line := readLine(c); len(line.Words) > 0 {
					page.Lines = append(page.Lines, line)
				}
				return
			case hasClass(c, "ocrx_word"):
				w := readWord(c)
				if w.Text == "" {
					return
				}
				if loose == nil {
					loose = &Line{}
				}
				loose.Words = append(loose.Words, w)
				loose.BBox = loose.BBox.union(w.BBox)
				return
			case hasClass(c, "ocr_par") || hasClass(c, "ocr_carea"):
				flush()
				defer flush()
			}
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	flush()

	if page.BBox.IsZero() {
		for _, l := range page.Lines {
			page.BBox = page.BBox.union(l.BBox)
		}
	}
	return page
}

func readLine(n *html.Node) Line {
	line := Line{ID: attr(n, "id")}
	line.BBox, _ = parseBBox(ParseTitle(attr(n, "title")))

	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && hasClass(c, "ocrx_word") {
			if w := readWord(c); w.Text != "" {
				line.Words = append(line.Words, w)
			}
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)

	if line.BBox.IsZero() {
		for _, w := range line.Words {
			line.BBox = line.BBox.union(w.BBox)
		}
	}
	return line
}

func readWord(n *html.Node) Word {
	w := Word{ID: attr(n, "id"), Text: textContent(n)}
	props := ParseTitle(attr(n, "title"))
	w.BBox, _ = parseBBox(props)
	if v := props["x_wconf"]; len(v) > 0 {
		w.Confidence, _ = strconv.ParseFloat(v[0], 64)
	}
	return w
}

// textContent gets all text below a node
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
