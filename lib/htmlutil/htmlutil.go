package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText collapses the visible text of a selection into a single
// printable line. University Moodle themes pad course titles with
// newlines, tabs and zero-width characters; those must not leak into
// extracted records.
func CleanText(sel *goquery.Selection) string {
	text := sel.Text()
	text = removeNonPrintable(text)
	text = strings.Trim(text, " \t\n")
	text = innerWhitespace.ReplaceAllString(text, " ")
	return text
}

// NearestHref returns the href of the selection itself, a parent anchor,
// or the first descendant anchor, in that order. Course tiles differ on
// whether the title sits inside or next to its link.
func NearestHref(sel *goquery.Selection) string {
	if href, ok := sel.Attr("href"); ok {
		return href
	}
	if href, ok := sel.Closest("a").Attr("href"); ok {
		return href
	}
	if href, ok := sel.Find("a").First().Attr("href"); ok {
		return href
	}
	return ""
}
