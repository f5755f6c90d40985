package auth

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoCSRFToken is returned when a login page carries no "_token" input.
var ErrNoCSRFToken = errors.New("auth: csrf token not found in login page")

// ExtractCSRFToken pulls the hidden "_token" input value out of a login
// page. Every form POST to the site must echo this token back.
func ExtractCSRFToken(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse login page: %w", err)
	}

	token := findInputValue(doc, "_token")
	if token == "" {
		return "", ErrNoCSRFToken
	}
	return token, nil
}

// AlertText returns the text of the first element styled as an error,
// alert, or danger box, or "" when the page shows none. Rejected logins
// and rejected commitments both surface their reason this way.
func AlertText(r io.Reader) string {
	doc, err := html.Parse(r)
	if err != nil {
		return ""
	}

	node := findAlertNode(doc)
	if node == nil {
		return ""
	}
	return collectText(node)
}

func findInputValue(n *html.Node, name string) string {
	if n.Type == html.ElementNode && n.Data == "input" {
		var inputName, value string
		for _, a := range n.Attr {
			switch a.Key {
			case "name":
				inputName = a.Val
			case "value":
				value = a.Val
			}
		}
		if inputName == name {
			return value
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if v := findInputValue(c, name); v != "" {
			return v
		}
	}
	return ""
}

func findAlertNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key != "class" {
				continue
			}
			class := strings.ToLower(a.Val)
			// Success flashes share the "alert" class family.
			if strings.Contains(class, "success") {
				continue
			}
			if strings.Contains(class, "error") || strings.Contains(class, "alert") || strings.Contains(class, "danger") {
				return n
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findAlertNode(c); found != nil {
			return found
		}
	}
	return nil
}

// collectText joins the trimmed text nodes beneath n with single spaces.
func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
