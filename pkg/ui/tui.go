// Package ui provides the Bubble Tea TUI for the swap terminal.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogApp "github.com/lbhlabs/tonswap/business/catalog/app"
	swapApp "github.com/lbhlabs/tonswap/business/swap/app"
	swapDomain "github.com/lbhlabs/tonswap/business/swap/domain"
	"github.com/lbhlabs/tonswap/internal/apperror"
	"github.com/lbhlabs/tonswap/internal/asset"
	"github.com/lbhlabs/tonswap/pkg/ui/components"
)

// Phase represents the current UI phase.
type Phase int

const (
	PhaseWelcome Phase = iota
	PhaseStartup
	PhaseSwap
)

// Focusable form fields, in tab order.
const (
	focusFrom = iota
	focusTo
	focusAmount
	focusCount
)

const catalogLoadTimeout = 30 * time.Second

// Deps are the application services the TUI drives.
type Deps struct {
	Catalog *catalogApp.CatalogService
	Swap    *swapApp.SwapService

	// Default "to" side preferences, applied after the catalog loads.
	PreferredAskAddress string
	DefaultAskSymbol    string
}

// ErrorEntry is a recent error shown in the error panel.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main TUI model.
type Model struct {
	deps Deps
	keys KeyMap

	phase Phase
	focus int

	from   components.AssetSelector
	to     components.AssetSelector
	amount textinput.Model
	quote  components.QuotePanel

	view           swapApp.SessionView
	assetCount     int
	catalogErr     error
	loadingCatalog bool
	errors         []ErrorEntry

	width    int
	height   int
	quitting bool

	welcomeStart time.Time
	startupTime  time.Time
}

// New creates the initial TUI model.
func New(deps Deps) Model {
	amount := textinput.New()
	amount.Placeholder = "0.0"
	amount.Prompt = ""
	amount.CharLimit = 32
	amount.Width = 20

	return Model{
		deps:         deps,
		keys:         DefaultKeyMap(),
		phase:        PhaseWelcome,
		focus:        focusAmount,
		from:         components.NewAssetSelector("From"),
		to:           components.NewAssetSelector("To  "),
		amount:       amount,
		welcomeStart: time.Now(),
		startupTime:  time.Now(),
	}
}

// Init starts the tick loop and the welcome timeout.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		textinput.Blink,
		tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
			return WelcomeCompleteMsg{}
		}),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		if m.deps.Swap != nil && m.phase == PhaseSwap {
			m.view = m.deps.Swap.View()
		}
		return m, tickCmd()

	case WelcomeCompleteMsg:
		if m.phase == PhaseWelcome {
			return m, func() tea.Msg { return StartModulesMsg{} }
		}

	case StartModulesMsg:
		if m.phase == PhaseWelcome {
			m.phase = PhaseStartup
			m.startupTime = time.Now()
			if OnStartModules != nil {
				OnStartModules()
			}
		}

	case ModulesStartedMsg:
		if msg.Err != nil {
			m.errors = addError(m.errors, msg.Err)
			m.phase = PhaseSwap
			return m, nil
		}
		m.loadingCatalog = true
		return m, m.loadCatalogCmd()

	case CatalogLoadedMsg:
		m.loadingCatalog = false
		m.catalogErr = nil
		m.assetCount = len(msg.Assets)
		m.from.SetItems(msg.Assets)
		m.to.SetItems(msg.Assets)
		if msg.Defaults.From != nil {
			m.from.Select(msg.Defaults.From)
			m.deps.Swap.SelectFrom(msg.Defaults.From)
		}
		if msg.Defaults.To != nil {
			m.to.Select(msg.Defaults.To)
			m.deps.Swap.SelectTo(msg.Defaults.To)
		}
		m.view = m.deps.Swap.View()
		m.phase = PhaseSwap
		m.applyFocus()

	case CatalogFailedMsg:
		m.loadingCatalog = false
		m.catalogErr = msg.Err
		m.phase = PhaseSwap
		m.applyFocus()

	case QuoteResultMsg:
		if msg.Err != nil {
			m.errors = addError(m.errors, msg.Err)
		}
		if m.deps.Swap != nil {
			m.view = m.deps.Swap.View()
		}

	case SubmitResultMsg:
		if msg.Err != nil {
			m.errors = addError(m.errors, msg.Err)
		}
		if m.deps.Swap != nil {
			m.view = m.deps.Swap.View()
		}

	case ErrorMsg:
		m.errors = addError(m.errors, msg.Error)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	// Any other key skips the welcome screen.
	if m.phase == PhaseWelcome {
		return m, func() tea.Msg { return StartModulesMsg{} }
	}
	if m.phase != PhaseSwap {
		return m, nil
	}

	// Digits and editing keys belong to the amount field; letters fall
	// through to the action bindings so shortcuts keep working while typing.
	if m.focus == focusAmount && isAmountEditKey(msg) {
		var cmd tea.Cmd
		m.amount, cmd = m.amount.Update(msg)
		m.deps.Swap.EnterAmount(strings.TrimSpace(m.amount.Value()))
		m.view = m.deps.Swap.View()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		m.focus = (m.focus + 1) % focusCount
		m.applyFocus()

	case key.Matches(msg, m.keys.Prev):
		m.focus = (m.focus + focusCount - 1) % focusCount
		m.applyFocus()

	case key.Matches(msg, m.keys.Up):
		switch m.focus {
		case focusFrom:
			if a := m.from.Prev(); a != nil {
				m.deps.Swap.SelectFrom(a)
				m.view = m.deps.Swap.View()
			}
		case focusTo:
			if a := m.to.Prev(); a != nil {
				m.deps.Swap.SelectTo(a)
				m.view = m.deps.Swap.View()
			}
		}

	case key.Matches(msg, m.keys.Down):
		switch m.focus {
		case focusFrom:
			if a := m.from.Next(); a != nil {
				m.deps.Swap.SelectFrom(a)
				m.view = m.deps.Swap.View()
			}
		case focusTo:
			if a := m.to.Next(); a != nil {
				m.deps.Swap.SelectTo(a)
				m.view = m.deps.Swap.View()
			}
		}

	case key.Matches(msg, m.keys.Quote):
		if m.view.Phase == swapDomain.PhaseReady || m.view.Phase == swapDomain.PhaseQuoted {
			return m, m.quoteCmd()
		}

	case key.Matches(msg, m.keys.Swap):
		// Gate checks live in the session; a rejected submit surfaces in
		// the error panel and leaves the session untouched.
		if m.view.Phase != swapDomain.PhaseSubmitting {
			return m, m.submitCmd()
		}

	case key.Matches(msg, m.keys.Flip):
		m.deps.Swap.Flip()
		m.view = m.deps.Swap.View()
		m.from.Select(m.view.From)
		m.to.Select(m.view.To)

	case key.Matches(msg, m.keys.Retry):
		m.deps.Swap.Retry()
		m.view = m.deps.Swap.View()

	case key.Matches(msg, m.keys.Reload):
		if !m.loadingCatalog {
			m.loadingCatalog = true
			return m, m.loadCatalogCmd()
		}
	}

	return m, nil
}

func isAmountEditKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if (r < '0' || r > '9') && r != '.' {
				return false
			}
		}
		return len(msg.Runes) > 0
	case tea.KeyBackspace, tea.KeyDelete, tea.KeyLeft, tea.KeyRight, tea.KeyHome, tea.KeyEnd:
		return true
	}
	return false
}

func (m *Model) applyFocus() {
	m.from.Blur()
	m.to.Blur()
	m.amount.Blur()

	switch m.focus {
	case focusFrom:
		m.from.Focus()
	case focusTo:
		m.to.Focus()
	case focusAmount:
		m.amount.Focus()
	}
}

func (m Model) loadCatalogCmd() tea.Cmd {
	catalog := m.deps.Catalog
	preferred := m.deps.PreferredAskAddress
	symbol := m.deps.DefaultAskSymbol

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), catalogLoadTimeout)
		defer cancel()

		assets, err := catalog.LoadAssets(ctx)
		if err != nil {
			return CatalogFailedMsg{Err: err}
		}
		return CatalogLoadedMsg{
			Assets:   assets,
			Defaults: catalogApp.PickDefaults(assets, preferred, symbol),
		}
	}
}

func (m Model) quoteCmd() tea.Cmd {
	svc := m.deps.Swap
	return func() tea.Msg {
		return QuoteResultMsg{Err: svc.RequestQuote(context.Background())}
	}
}

func (m Model) submitCmd() tea.Cmd {
	svc := m.deps.Swap
	return func() tea.Msg {
		return SubmitResultMsg{Err: svc.Submit(context.Background())}
	}
}

// addError appends an error entry and returns the updated slice (keeps last 3).
func addError(errs []ErrorEntry, err error) []ErrorEntry {
	errs = append(errs, ErrorEntry{
		Message:   apperror.UserMessage(err),
		Timestamp: time.Now(),
	})
	if len(errs) > 3 {
		errs = errs[len(errs)-3:]
	}
	return errs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		return m.renderStartupScreen()
	}

	var b strings.Builder

	title := TitleStyle.Render(" ⇄ TON Swap Terminal ")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	width := m.width - 4
	if width < 40 {
		width = 60
	}

	b.WriteString(BoxStyle.Width(width).Render(m.renderForm()))
	b.WriteString("\n")

	if quotePanel := m.quote.View(m.view.Quote, m.view.From, m.view.To); quotePanel != "" {
		b.WriteString(BoxStyle.Width(width).Render(quotePanel))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	if m.catalogErr != nil {
		b.WriteString(NegativeValue.Render("  " + apperror.UserMessage(m.catalogErr)))
		b.WriteString(MutedValue.Render("  (c: retry)"))
		b.WriteString("\n")
	}

	if len(m.errors) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(ColorDanger).Render("ERRORS"))
		b.WriteString("\n")
		for _, e := range m.errors {
			ago := time.Since(e.Timestamp).Round(time.Second)
			b.WriteString(NegativeValue.Render("  • " + e.Message + " "))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("enter: quote • s: swap • f: flip • tab: field • ↑↓: asset • r: retry • c: reload • q: quit"))

	return b.String()
}

func (m Model) renderForm() string {
	var sb strings.Builder

	sb.WriteString(m.from.View())
	sb.WriteString("\n")
	sb.WriteString(m.to.View())
	sb.WriteString("\n\n")

	amountLabel := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Render("Amount")
	sb.WriteString(amountLabel)
	sb.WriteString("  ")
	sb.WriteString(m.amount.View())
	if m.view.From != nil {
		sb.WriteString(" ")
		sb.WriteString(MutedValue.Render(m.view.From.Symbol()))
	}

	return sb.String()
}

func (m Model) renderStatusLine() string {
	var style lipgloss.Style
	switch m.view.Phase {
	case swapDomain.PhaseQuoting, swapDomain.PhaseSubmitting:
		style = StatusPending
	case swapDomain.PhaseQuoted, swapDomain.PhaseSettled:
		style = PositiveValue
	case swapDomain.PhaseFailed:
		style = NegativeValue
	default:
		style = MutedValue
	}

	status := m.view.Status
	if m.view.Phase == swapDomain.PhaseQuoting || m.view.Phase == swapDomain.PhaseSubmitting {
		spinners := []string{"◐", "◓", "◑", "◒"}
		idx := int(time.Now().UnixMilli()/200) % len(spinners)
		status = spinners[idx] + " " + status
	}

	return "  " + style.Render(status)
}

func (m Model) renderStatusBar() string {
	var parts []string

	if m.view.WalletAddress != "" {
		parts = append(parts, StatusConnected.Render("● Wallet "+asset.ShortAddress(m.view.WalletAddress)))
	} else {
		parts = append(parts, StatusDisconnected.Render("○ Wallet not connected"))
	}

	if m.loadingCatalog {
		parts = append(parts, StatusPending.Render("⟳ Loading assets..."))
	} else if m.assetCount > 0 {
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Assets: %d", m.assetCount)))
	}

	parts = append(parts, MutedValue.Render("Phase: "+m.view.Phase.String()))

	return strings.Join(parts, "  │  ")
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	greenStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	elapsed := time.Since(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder

	sb.WriteString("\n\n\n\n")

	logo := `
    ████████╗ ██████╗ ███╗   ██╗    ███████╗██╗    ██╗ █████╗ ██████╗
    ╚══██╔══╝██╔═══██╗████╗  ██║    ██╔════╝██║    ██║██╔══██╗██╔══██╗
       ██║   ██║   ██║██╔██╗ ██║    ███████╗██║ █╗ ██║███████║██████╔╝
       ██║   ██║   ██║██║╚██╗██║    ╚════██║██║███╗██║██╔══██║██╔═══╝
       ██║   ╚██████╔╝██║ ╚████║    ███████║╚███╔███╔╝██║  ██║██║
       ╚═╝    ╚═════╝ ╚═╝  ╚═══╝    ╚══════╝ ╚══╝╚══╝ ╚═╝  ╚═╝╚═╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")

	subtitle := "              S W A P   T E R M I N A L"
	sb.WriteString(mutedStyle.Render(subtitle))
	sb.WriteString("\n\n\n")

	loading := fmt.Sprintf("                  Initializing%s", dots)
	sb.WriteString(greenStyle.Render(loading))
	sb.WriteString("\n\n")

	hint := "            Press any key to skip, or wait..."
	sb.WriteString(mutedStyle.Render(hint))
	sb.WriteString("\n")

	return sb.String()
}

// renderStartupScreen renders the loading screen shown while modules start.
func (m Model) renderStartupScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).MarginBottom(1)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	connectingStyle := lipgloss.NewStyle().Foreground(ColorWarning)

	spinners := []string{"◐", "◓", "◑", "◒"}
	idx := int(time.Since(m.startupTime).Milliseconds()/200) % len(spinners)

	var sb strings.Builder

	sb.WriteString("\n\n")
	sb.WriteString(titleStyle.Render("  ⇄ TON Swap Terminal"))
	sb.WriteString("\n\n")
	sb.WriteString(connectingStyle.Render(fmt.Sprintf("  %s Starting up...", spinners[idx])))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("  Connecting to the wallet bridge and loading the asset catalog."))
	sb.WriteString("\n\n")

	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n")

	return sb.String()
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules
// should start. It is set by main before the program runs.
var OnStartModules func()

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
