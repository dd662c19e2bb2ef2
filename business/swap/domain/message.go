package domain

import (
	"math/big"
	"time"
)

// ChainMessage is one on-chain message produced by the transaction builder:
// destination contract, attached value in nanotons, and an opaque base64
// BoC payload.
type ChainMessage struct {
	To      string
	Value   *big.Int
	Payload string
}

// TransactionRequest is what gets handed to the wallet connector for user
// approval. ValidUntil bounds how long the wallet may sit on the request.
type TransactionRequest struct {
	ValidUntil time.Time
	Messages   []ChainMessage
}
