package mx4j

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

//
// MX4J renders mbean pages as HTML tables (or as raw XML when the identity
// template is requested). Both layouts boil down to attribute name/value
// pairs, so the parser accepts either: table rows use the first cell as the
// name and the last cell as the value, XML nodes carry name/value attributes.
//

// Attributes - attribute values read from one mbean page
type Attributes map[string]string

// Int64 - a numeric attribute
func (a Attributes) Int64(name string) (int64, bool) {

	v, err := strconv.ParseInt(strings.TrimSpace(a[name]), 10, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// Float64 - a floating point attribute
func (a Attributes) Float64(name string) (float64, bool) {

	v, err := strconv.ParseFloat(strings.TrimSpace(a[name]), 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// Parse - extracts attribute name/value pairs from an MX4J response body.
// Garbled input yields an empty map, never an error.
func Parse(body []byte) Attributes {

	attrs := Attributes{}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return attrs
	}

	walk(doc, attrs)

	return attrs
}

func walk(node *html.Node, attrs Attributes) {

	if node.Type == html.ElementNode {

		switch node.Data {
		case "attribute":
			name, _ := nodeAttr(node, "name")
			value, hasValue := nodeAttr(node, "value")
			if name != "" && hasValue {
				attrs[name] = value
			}
		case "tr":
			name, value, ok := parseRow(node)
			if ok {
				attrs[name] = value
			}
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walk(child, attrs)
	}
}

// parseRow - a table row holds an attribute when it has at least two data
// cells; header rows use th cells and are skipped
func parseRow(row *html.Node) (string, string, bool) {

	var cells []string

	for cell := row.FirstChild; cell != nil; cell = cell.NextSibling {
		if cell.Type == html.ElementNode && cell.Data == "td" {
			cells = append(cells, strings.TrimSpace(nodeText(cell)))
		}
	}

	if len(cells) < 2 || cells[0] == "" {
		return "", "", false
	}

	return cells[0], cells[len(cells)-1], true
}

func nodeText(node *html.Node) string {

	var sb strings.Builder

	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(node)

	return sb.String()
}

func nodeAttr(node *html.Node, key string) (string, bool) {

	for _, attr := range node.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}

	return "", false
}

// invokeFailure - inspects an /invoke response for an error marker
func invokeFailure(body []byte) (string, bool) {

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "unparseable invoke response", true
	}

	var message string
	var failed bool

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "operation" || n.Data == "mbeanoperation") {
			if result, ok := nodeAttr(n, "result"); ok && result == "error" {
				failed = true
				message, _ = nodeAttr(n, "errormsg")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(doc)

	if failed && message == "" {
		message = "operation failed"
	}

	return message, failed
}
