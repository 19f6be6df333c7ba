package cgit

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

type logEntry struct {
	subject string
	href    string
}

// parseTags extracts tag names from a refs/tags page in page order. Tags are
// the anchors pointing at tag/?h=<name>.
func parseTags(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var names []string
	seen := make(map[string]bool)
	walk(doc, func(n *html.Node) {
		href, ok := anchorHref(n)
		if !ok || !strings.Contains(href, "/tag/") {
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		name := u.Query().Get("h")
		if name == "" {
			name = u.Query().Get("id")
		}
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	return names, nil
}

// parseLog extracts commit subjects and links from a log page, newest first
// as cgit renders them, plus the href of the "[next]" pager link if any.
func parseLog(r io.Reader) (entries []logEntry, next string, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, "", err
	}

	walk(doc, func(n *html.Node) {
		href, ok := anchorHref(n)
		if !ok {
			return
		}
		text := strings.TrimSpace(textOf(n))
		if text == "[next]" {
			next = href
			return
		}
		if !strings.Contains(href, "/commit/") {
			return
		}
		u, err := url.Parse(href)
		if err != nil || u.Query().Get("id") == "" || text == "" {
			return
		}
		entries = append(entries, logEntry{subject: text, href: href})
	})
	return entries, next, nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func anchorHref(n *html.Node) (string, bool) {
	if n.Type != html.ElementNode || n.Data != "a" {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == "href" {
			return a.Val, true
		}
	}
	return "", false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}
