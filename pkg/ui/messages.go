// Package ui provides the Bubble Tea TUI for the swap terminal.
package ui

import (
	catalogDomain "github.com/lbhlabs/tonswap/business/catalog/domain"
	"github.com/lbhlabs/tonswap/internal/asset"
)

// Message types for TUI updates

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// WelcomeCompleteMsg signals the welcome screen is done (timeout or keypress).
type WelcomeCompleteMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// ModulesStartedMsg is sent by main once module startup finished.
type ModulesStartedMsg struct {
	Err error
}

// CatalogLoadedMsg carries a freshly loaded asset list and the proposed
// default pair.
type CatalogLoadedMsg struct {
	Assets   []*asset.Asset
	Defaults catalogDomain.DefaultSelection
}

// CatalogFailedMsg is sent when the asset directory could not be loaded.
// The form still opens, just with empty selectors.
type CatalogFailedMsg struct {
	Err error
}

// QuoteResultMsg is sent when an in-flight quote request finished. A nil
// error also covers the silently discarded stale response; the session
// snapshot is the source of truth.
type QuoteResultMsg struct {
	Err error
}

// SubmitResultMsg is sent when a wallet submission finished.
type SubmitResultMsg struct {
	Err error
}

// ErrorMsg is sent when an error occurs outside the swap flow.
type ErrorMsg struct {
	Error error
}
