// Package components contains reusable TUI widgets for the swap terminal.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lbhlabs/tonswap/internal/asset"
)

var (
	selectorLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	selectorValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	selectorMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	selectorArrowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

// AssetSelector is a cursor over the tradable asset list. Focus decides
// whether the up/down hints are rendered.
type AssetSelector struct {
	label   string
	items   []*asset.Asset
	index   int
	focused bool
}

// NewAssetSelector creates an empty selector with the given label.
func NewAssetSelector(label string) AssetSelector {
	return AssetSelector{label: label}
}

// SetItems replaces the selectable assets, keeping the cursor in range.
func (s *AssetSelector) SetItems(items []*asset.Asset) {
	s.items = items
	if s.index >= len(items) {
		s.index = 0
	}
}

// Select moves the cursor to the given asset if it is in the list.
func (s *AssetSelector) Select(a *asset.Asset) {
	for i, item := range s.items {
		if item.Equals(a) {
			s.index = i
			return
		}
	}
}

// Current returns the asset under the cursor, nil when the list is empty.
func (s *AssetSelector) Current() *asset.Asset {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[s.index]
}

// Next moves the cursor down, wrapping around.
func (s *AssetSelector) Next() *asset.Asset {
	if len(s.items) == 0 {
		return nil
	}
	s.index = (s.index + 1) % len(s.items)
	return s.items[s.index]
}

// Prev moves the cursor up, wrapping around.
func (s *AssetSelector) Prev() *asset.Asset {
	if len(s.items) == 0 {
		return nil
	}
	s.index = (s.index - 1 + len(s.items)) % len(s.items)
	return s.items[s.index]
}

// Focus marks the selector as the active field.
func (s *AssetSelector) Focus() { s.focused = true }

// Blur removes focus.
func (s *AssetSelector) Blur() { s.focused = false }

// Focused reports whether the selector is the active field.
func (s *AssetSelector) Focused() bool { return s.focused }

// View renders the selector as a single line.
func (s *AssetSelector) View() string {
	var sb strings.Builder
	sb.WriteString(selectorLabelStyle.Render(s.label))
	sb.WriteString("  ")

	current := s.Current()
	if current == nil {
		sb.WriteString(selectorMutedStyle.Render("no assets loaded"))
		return sb.String()
	}

	sb.WriteString(selectorValueStyle.Render(current.Symbol()))
	sb.WriteString(" ")
	sb.WriteString(selectorMutedStyle.Render(current.Name()))
	sb.WriteString(" ")
	sb.WriteString(selectorMutedStyle.Render("(" + current.ShortAddress() + ")"))

	if s.focused && len(s.items) > 1 {
		sb.WriteString("  ")
		sb.WriteString(selectorArrowStyle.Render(fmt.Sprintf("↕ %d/%d", s.index+1, len(s.items))))
	}

	return sb.String()
}
