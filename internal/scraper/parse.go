package scraper

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dealhawk/dealhawk/internal/model"
)

// dealCardClasses is the class list the dashboard puts on every deal card.
const dealCardClasses = "group relative flex flex-col overflow-hidden rounded-lg border border-gray-200 bg-white"

var (
	pricePattern     = regexp.MustCompile(`\$?([\d,]+(?:\.\d*)?)`)
	committedPattern = regexp.MustCompile(`\d+`)
	deliverPattern   = regexp.MustCompile(`Deliver by ([^(]+)`)

	dealCardClassList = strings.Fields(dealCardClasses)
)

// ParseListings extracts every deal card from a dashboard page.
func ParseListings(r io.Reader) ([]model.Listing, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse dashboard html: %w", err)
	}

	var listings []model.Listing
	for _, card := range findAll(doc, isDealCard) {
		listings = append(listings, parseCard(card))
	}
	return listings, nil
}

// MakeListingID builds the stable identity for a deal card. Cards carry no
// server-side ID, so store, truncated title, and price stand in for one.
func MakeListingID(store, title string, priceCents int64) string {
	t := []rune(title)
	if len(t) > 50 {
		t = t[:50]
	}

	id := fmt.Sprintf("%s_%s_%d.%02d", store, string(t), priceCents/100, priceCents%100)
	id = strings.ReplaceAll(id, " ", "_")
	return strings.ReplaceAll(id, "/", "_")
}

// cardFields is the card snapshot kept on the Listing for downstream
// rendering, field names matching what the dashboard shows.
type cardFields struct {
	DealID          string `json:"deal_id"`
	Title           string `json:"title"`
	Store           string `json:"store"`
	Price           string `json:"price"`
	MaxQuantity     int    `json:"max_quantity"`
	CurrentQuantity int    `json:"current_quantity"`
	Link            string `json:"link"`
	DeliveryDate    string `json:"delivery_date"`
}

func parseCard(card *html.Node) model.Listing {
	title := "Unknown Title"
	if h := find(card, matchElement("h3", "text-sm", "font-medium", "text-gray-900")); h != nil {
		if t := nodeText(h); t != "" {
			title = t
		}
	}

	store := "Unknown Store"
	if p := find(card, matchElement("p", "text-sm", "italic")); p != nil {
		if t := nodeText(p); strings.Contains(t, "From:") {
			store = strings.TrimSpace(strings.SplitN(t, "From:", 2)[1])
		}
	}

	var priceCents int64
	if p := find(card, matchElement("p", "text-base", "font-medium", "text-gray-900")); p != nil {
		if t := nodeText(p); strings.Contains(t, "Price:") {
			priceCents = parsePriceCents(strings.SplitN(t, "Price:", 2)[1])
		}
	}

	var link string
	if a := find(card, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" && attr(n, "target") == "_blank"
	}); a != nil {
		link = attr(a, "href")
	}

	var available int
	if in := find(card, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "input" && attr(n, "type") == "number"
	}); in != nil {
		available, _ = strconv.Atoi(attr(in, "max"))
	}

	var committed int
	if span := find(card, matchElement("span", "leading-8")); span != nil {
		if t := nodeText(span); strings.Contains(t, "You have committed to purchase") {
			committed, _ = strconv.Atoi(committedPattern.FindString(t))
		}
	}

	var deliverBy string
	if m := deliverPattern.FindStringSubmatch(title); m != nil {
		deliverBy = strings.TrimSpace(m[1])
	}

	listing := model.Listing{
		ID:                MakeListingID(store, title, priceCents),
		Title:             title,
		Store:             store,
		PriceCents:        priceCents,
		QuantityAvailable: available,
		CommittedQuantity: committed,
		URL:               link,
		DeliverBy:         deliverBy,
	}

	listing.Raw, _ = json.Marshal(cardFields{
		DealID:          listing.ID,
		Title:           title,
		Store:           store,
		Price:           listing.PriceString(),
		MaxQuantity:     available,
		CurrentQuantity: committed,
		Link:            link,
		DeliveryDate:    deliverBy,
	})

	return listing
}

// parsePriceCents converts a price fragment such as "$1,299.99 CAD" to
// integer cents. Unparseable fragments come back as zero.
func parsePriceCents(s string) int64 {
	m := pricePattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	raw := strings.ReplaceAll(m[1], ",", "")
	whole, frac, _ := strings.Cut(raw, ".")

	cents, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0
	}
	cents *= 100

	switch {
	case len(frac) >= 2:
		d, _ := strconv.ParseInt(frac[:2], 10, 64)
		cents += d
	case len(frac) == 1:
		d, _ := strconv.ParseInt(frac, 10, 64)
		cents += d * 10
	}

	return cents
}

// -----------------------------------------------------------------------------
// HTML traversal helpers
// -----------------------------------------------------------------------------

func isDealCard(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "div" && hasClasses(n, dealCardClassList...)
}

// matchElement matches an element by tag name and required class names.
func matchElement(tag string, classes ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag && hasClasses(n, classes...)
	}
}

func hasClasses(n *html.Node, want ...string) bool {
	have := strings.Fields(attr(n, "class"))
	set := make(map[string]bool, len(have))
	for _, c := range have {
		set[c] = true
	}
	for _, w := range want {
		if !set[w] {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// nodeText joins the trimmed text nodes beneath n with single spaces.
func nodeText(n *html.Node) string {
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
