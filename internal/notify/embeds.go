package notify

import (
	"fmt"
	"time"

	"github.com/dealhawk/dealhawk/internal/model"
)

// Embed colors, one per notification class.
const (
	colorNewDeal    = 0x00ff00
	colorQuantity   = 0xffa500
	colorCommitment = 0x9b59b6
	colorError      = 0xff0000
	colorStartup    = 0x0099ff
	colorSummary    = 0x3498db
)

const footerText = "Buying Group Monitor"

// Webhook payload shapes per the Discord embed API.

type payload struct {
	Username string  `json:"username,omitempty"`
	Embeds   []embed `json:"embeds"`
}

type embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color"`
	Fields      []field `json:"fields,omitempty"`
	Footer      *footer `json:"footer,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type footer struct {
	Text string `json:"text"`
}

func newListingsEmbed(listings []model.Listing, now time.Time) embed {
	e := embed{
		Title:       "🆕 New Buying Group Deals Available!",
		Color:       colorNewDeal,
		Description: fmt.Sprintf("Found %d new deal(s) on the buying group!", len(listings)),
		Footer:      &footer{Text: footerText},
		Timestamp:   now.UTC().Format(time.RFC3339),
	}

	for _, l := range listings {
		e.Fields = append(e.Fields, field{
			Name: fmt.Sprintf("💰 %s...", truncate(l.Title, 100)),
			Value: fmt.Sprintf("**Store:** %s\n**Price:** %s\n**Max Quantity:** %d\n**Delivery:** %s\n**Link:** [Click Here](%s)",
				l.Store, l.PriceString(), l.QuantityAvailable, l.DeliverBy, l.URL),
			Inline: false,
		})
	}

	return e
}

func quantityChangedEmbed(l model.Listing, oldQty, newQty int) embed {
	return embed{
		Title:       "📊 Deal Quantity Updated",
		Color:       colorQuantity,
		Description: fmt.Sprintf("Quantity changed for: **%s**", l.Title),
		Fields: []field{
			{Name: "Store", Value: l.Store, Inline: true},
			{Name: "Price", Value: l.PriceString(), Inline: true},
			{Name: "Quantity Change", Value: fmt.Sprintf("%d → %d", oldQty, newQty), Inline: true},
			{Name: "Max Quantity", Value: fmt.Sprintf("%d", l.QuantityAvailable), Inline: true},
			{Name: "Link", Value: fmt.Sprintf("[Click Here](%s)", l.URL), Inline: true},
		},
		Footer: &footer{Text: footerText},
	}
}

func commitmentChangedEmbed(l model.Listing, oldQty, newQty int) embed {
	return embed{
		Title:       "📝 Commitment Updated",
		Color:       colorCommitment,
		Description: fmt.Sprintf("Your commitment changed for: **%s**", l.Title),
		Fields: []field{
			{Name: "Store", Value: l.Store, Inline: true},
			{Name: "Price", Value: l.PriceString(), Inline: true},
			{Name: "Commitment Change", Value: fmt.Sprintf("%d → %d", oldQty, newQty), Inline: true},
			{Name: "Max Available", Value: fmt.Sprintf("%d", l.QuantityAvailable), Inline: true},
			{Name: "Delivery", Value: orNA(l.DeliverBy), Inline: true},
			{Name: "Link", Value: fmt.Sprintf("[Product Link](%s)", l.URL), Inline: true},
		},
		Footer: &footer{Text: footerText},
	}
}

func errorEmbed(message string) embed {
	return embed{
		Title:       "❌ Buying Group Monitor Error",
		Color:       colorError,
		Description: fmt.Sprintf("An error occurred while monitoring the buying group:\n```%s```", message),
		Footer:      &footer{Text: footerText},
	}
}

func startupEmbed() embed {
	return embed{
		Title:       "🚀 Buying Group Monitor Started",
		Color:       colorStartup,
		Description: "The buying group monitor is now running and will check for new deals periodically.",
		Footer:      &footer{Text: footerText},
	}
}

func summaryEmbed(listings []model.Listing) embed {
	e := embed{
		Title:       "📋 All Active Buying Group Deals",
		Color:       colorSummary,
		Description: fmt.Sprintf("Total active deals: %d", len(listings)),
		Footer:      &footer{Text: footerText},
	}

	for _, l := range listings {
		e.Fields = append(e.Fields, field{
			Name: truncate(l.Title, 100),
			Value: fmt.Sprintf("**Store:** %s\n**Price:** %s\n**Max Quantity:** %d\n**Committed:** %d\n**Delivery:** %s\n**Link:** [Product Link](%s)",
				l.Store, l.PriceString(), l.QuantityAvailable, l.CommittedQuantity, orNA(l.DeliverBy), l.URL),
			Inline: false,
		})
	}

	return e
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
