// Package asset provides a type-safe model for TON assets.
// Amounts use big.Int for exact base-unit representation.
// decimal.Decimal is only used at boundaries (parsing user input, display).
package asset

// Kind distinguishes the chain's native coin from a deployed jetton contract.
type Kind string

const (
	// KindNative is the TON coin itself. The directory still lists a
	// contract address for it (the proxy master), but swaps route it
	// through the router's native proxy rather than a jetton wallet.
	KindNative Kind = "Ton"
	// KindJetton is a deployed jetton master contract.
	KindJetton Kind = "Jetton"
)

// Valid reports whether k is one of the two recognized kinds.
func (k Kind) Valid() bool {
	return k == KindNative || k == KindJetton
}

// Asset represents the metadata of a tradable on-chain asset.
// It is an immutable reference entity; identity is the contract address.
// The symbol is NOT identity - just metadata for display.
type Asset struct {
	address  string // canonical contract address ("EQ..." friendly form)
	kind     Kind
	symbol   string
	name     string
	decimals uint8
}

// New creates a new Asset with the given parameters.
func New(address string, kind Kind, symbol string, decimals uint8) *Asset {
	if address == "" {
		panic("asset: empty contract address")
	}
	if !kind.Valid() {
		panic("asset: unknown kind " + string(kind))
	}
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}

	return &Asset{
		address:  address,
		kind:     kind,
		symbol:   symbol,
		decimals: decimals,
	}
}

// NewWithName creates a new Asset with a human-readable name.
func NewWithName(address string, kind Kind, symbol, name string, decimals uint8) *Asset {
	a := New(address, kind, symbol, decimals)
	a.name = name
	return a
}

// Address returns the canonical contract address.
func (a *Asset) Address() string {
	return a.address
}

// Kind returns whether this is the native coin or a jetton.
func (a *Asset) Kind() Kind {
	return a.kind
}

// Symbol returns the ticker symbol (e.g., "TON", "LBH").
func (a *Asset) Symbol() string {
	return a.symbol
}

// Name returns the human-readable name, falling back to the symbol.
func (a *Asset) Name() string {
	if a.name == "" {
		return a.symbol
	}
	return a.name
}

// Decimals returns the number of decimal places.
func (a *Asset) Decimals() uint8 {
	return a.decimals
}

// IsNative returns true if this is the TON coin.
func (a *Asset) IsNative() bool {
	return a.kind == KindNative
}

// IsJetton returns true if this is a jetton contract.
func (a *Asset) IsJetton() bool {
	return a.kind == KindJetton
}

// String returns a human-readable representation.
func (a *Asset) String() string {
	return a.symbol
}

// Equals compares two Assets by contract address.
func (a *Asset) Equals(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.address == other.address
}

// ShortAddress renders the address as "EQAb…9fxR" for display.
func (a *Asset) ShortAddress() string {
	return ShortAddress(a.address)
}

// ShortAddress abbreviates a TON address to its first and last four characters.
func ShortAddress(addr string) string {
	if len(addr) <= 9 {
		return addr
	}
	return addr[:4] + "…" + addr[len(addr)-4:]
}
