package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Fragments are the raw pieces pulled out of a rendered counters page.
type Fragments struct {
	Titles      []string
	Headings    []string
	Bodies      []string
	TableImages [][]string
}

// ParseFragments reads the h1, h2, tbody and table image fragments of a page.
func ParseFragments(document string) (*Fragments, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, err
	}

	f := &Fragments{
		Titles:      collectText(doc.Find("h1"), ""),
		Headings:    collectText(doc.Find("h2"), ""),
		Bodies:      collectText(doc.Find("tbody"), "\n"),
		TableImages: [][]string{},
	}

	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		srcs := []string{}
		table.Find("img").Each(func(j int, img *goquery.Selection) {
			srcs = append(srcs, imageSource(img))
		})
		f.TableImages = append(f.TableImages, srcs)
	})

	return f, nil
}

// imageSource prefers src, falling back to data-src for lazy-loaded images
// whose src is empty or an inline placeholder. An empty result keeps the
// position so the image grid stays aligned.
func imageSource(img *goquery.Selection) string {
	src := strings.TrimSpace(img.AttrOr("src", ""))
	if src == "" || strings.HasPrefix(src, "data:") {
		if lazy := strings.TrimSpace(img.AttrOr("data-src", "")); lazy != "" {
			return lazy
		}
		if strings.HasPrefix(src, "data:") {
			return ""
		}
	}
	return src
}

func collectText(sel *goquery.Selection, sep string) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(i int, s *goquery.Selection) {
		out = append(out, strippedText(s.Nodes[0], sep))
	})
	return out
}

// strippedText joins the descendant text nodes of n after trimming each one
// and dropping the blanks.
func strippedText(n *html.Node, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, sep)
}
