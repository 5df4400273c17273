package importer

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/nikbrunner/homescreen/internal/model"
)

// ParseHTML reads Netscape bookmark HTML and returns every link in document
// order, ignoring folders. mailto: links are skipped.
func ParseHTML(r io.Reader) ([]model.Bookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	bookmarks := []model.Bookmark{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "a") {
			if b, ok := linkBookmark(n); ok {
				bookmarks = append(bookmarks, b)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return bookmarks, nil
}

// ParseHTMLFolders reads Netscape bookmark HTML keeping the <H3> grouping.
// Nested folders are flattened: a link belongs to its innermost folder.
// Links outside any folder go to rootName. Folders with the same name are
// merged, in order of first appearance.
func ParseHTMLFolders(r io.Reader, rootName string) ([]model.Folder, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var folders []model.Folder
	index := map[string]int{}
	add := func(name string, b model.Bookmark) {
		i, ok := index[name]
		if !ok {
			folders = append(folders, model.NewFolder(name))
			i = len(folders) - 1
			index[name] = i
		}
		folders[i].Bookmarks = append(folders[i].Bookmarks, b)
	}

	// Track current folder stack for hierarchy
	var stack []string
	var pending string

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				// Pushed when the following DL opens
				pending = textContent(n)
				return

			case "a":
				b, ok := linkBookmark(n)
				if !ok {
					return
				}
				name := rootName
				if len(stack) > 0 {
					name = stack[len(stack)-1]
				}
				add(name, b)
				return

			case "dl":
				pushed := false
				if pending != "" {
					stack = append(stack, pending)
					pending = ""
					pushed = true
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	if folders == nil {
		folders = []model.Folder{}
	}
	return folders, nil
}

// linkBookmark builds a bookmark from an <a> element.
func linkBookmark(n *html.Node) (model.Bookmark, bool) {
	href := strings.TrimSpace(getAttr(n, "href"))
	if href == "" || strings.HasPrefix(strings.ToLower(href), "mailto:") {
		return model.Bookmark{}, false
	}

	label := textContent(n)
	if label == "" {
		label = model.TruncateURL(href)
	}

	b := model.NewBookmark(model.NewBookmarkParams{Label: label, URL: href})
	b.Favicon = getAttr(n, "icon")
	return b, true
}

// textContent returns the trimmed text content of a node.
func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
