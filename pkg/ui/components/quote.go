package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/asset"
)

var (
	quoteHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	quoteValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	quoteMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// QuotePanel renders the locked quote.
type QuotePanel struct{}

// View renders the quote details for the given pair. An empty string is
// returned when there is no quote to show.
func (QuotePanel) View(q *domain.Quote, from, to *asset.Asset) string {
	if q == nil || from == nil || to == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(quoteHeaderStyle.Render("QUOTE"))
	sb.WriteString("\n\n")

	if q.AskUnits != nil {
		expected := asset.NewAmount(to, q.AskUnits).ToDecimal().String()
		sb.WriteString(quoteMutedStyle.Render("  Expected     "))
		sb.WriteString(quoteValueStyle.Render(expected + " " + to.Symbol()))
		sb.WriteString("\n")
	}

	sb.WriteString(quoteMutedStyle.Render("  Min received "))
	sb.WriteString(quoteValueStyle.Render(q.MinReceived(to) + " " + to.Symbol()))
	sb.WriteString("\n")

	sb.WriteString(quoteMutedStyle.Render("  Rate         "))
	sb.WriteString(quoteValueStyle.Render("1 " + from.Symbol() + " ≈ " + q.SwapRate.StringFixed(6) + " " + to.Symbol()))
	sb.WriteString("\n")

	if q.Router.PoolAddress != "" {
		sb.WriteString(quoteMutedStyle.Render("  Pool         " + asset.ShortAddress(q.Router.PoolAddress)))
		sb.WriteString("\n")
	}
	sb.WriteString(quoteMutedStyle.Render("  Router       " + asset.ShortAddress(q.Router.Address)))

	return sb.String()
}
