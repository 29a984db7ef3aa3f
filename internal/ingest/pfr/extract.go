package pfr

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
)

// ErrTableNotFound is returned when none of the candidate table ids exist on
// the page. It usually means the markup changed.
var ErrTableNotFound = errors.New("table not found")

// Cell is one table cell: its visible text plus the optional csk sort key.
type Cell struct {
	Text string
	CSK  string
}

// Row maps a cell's data-stat attribute to the cell.
type Row map[string]Cell

// Text returns the trimmed text of the named cell, "" when absent.
func (r Row) Text(name string) string {
	return r[name].Text
}

// RawTable is an extracted table. Header rows repeated inside the body are
// already dropped.
type RawTable struct {
	ID   string
	Rows []Row
}

// ExtractTable returns the first table whose id matches a candidate, in
// priority order. Tables shipped inside HTML comments are searched too.
func ExtractTable(doc *goquery.Document, candidates ...string) (*RawTable, error) {
	var comments []string
	commentsLoaded := false

	for _, id := range candidates {
		if sel := doc.Find("table#" + id).First(); sel.Length() > 0 {
			return parseTable(id, sel), nil
		}

		if !commentsLoaded {
			comments = commentBodies(doc)
			commentsLoaded = true
		}
		marker := `id="` + id + `"`
		for _, body := range comments {
			if !strings.Contains(body, marker) {
				continue
			}
			inner, err := goquery.NewDocumentFromReader(strings.NewReader(body))
			if err != nil {
				continue
			}
			if sel := inner.Find("table#" + id).First(); sel.Length() > 0 {
				return parseTable(id, sel), nil
			}
		}
	}

	return nil, errors.Wrapf(ErrTableNotFound, "candidates %v", candidates)
}

func commentBodies(doc *goquery.Document) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode && strings.Contains(n.Data, "<table") {
			out = append(out, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return out
}

func parseTable(id string, table *goquery.Selection) *RawTable {
	out := &RawTable{ID: id}

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr")
	}
	rows.Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") || tr.HasClass("over_header") {
			return
		}
		row := Row{}
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			name, ok := cell.Attr("data-stat")
			if !ok || name == "" {
				return
			}
			csk, _ := cell.Attr("csk")
			row[name] = Cell{
				Text: strings.TrimSpace(cell.Text()),
				CSK:  strings.TrimSpace(csk),
			}
		})
		if len(row) > 0 {
			out.Rows = append(out.Rows, row)
		}
	})
	return out
}

// ParseHTML converts raw HTML to a goquery Document.
func ParseHTML(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}
	return doc, nil
}
