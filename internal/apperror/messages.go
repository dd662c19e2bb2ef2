package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Asset catalog errors
	CodeCatalogUnavailable: "Could not load the tradable asset list",
	CodeMalformedAsset:     "Asset directory returned a malformed entry",

	// Quote/simulation errors
	CodeQuoteUnavailable: "Simulation failed, try a smaller amount or different pair",
	CodeNoRoute:          "No liquidity route exists for this pair",
	CodeInvalidAmount:    "Amount must be a positive number",

	// Transaction composition errors
	CodeCompositionError:    "Could not build the swap transaction",
	CodeInvalidPairCategory: "Unsupported asset pair category",
	CodeMalformedRouterInfo: "Quote is missing required router metadata",

	// Swap session errors
	CodeNotReady: "Connect your wallet first",
	CodeNoQuote:  "Simulate first to lock the route and minimum received",

	// Wallet errors
	CodeWalletNotConnected: "Wallet is not connected",
	CodeUserRejected:       "Swap was rejected in the wallet",
	CodeSubmissionError:    "Could not hand the transaction to the wallet",
	CodeSubmissionExpired:  "Wallet approval window expired",

	// Transport errors
	CodeStonAPIError:          "STON API request failed",
	CodeRouterBuilderError:    "Router transaction builder request failed",
	CodeBridgeConnectionError: "Wallet bridge connection error",
	CodeBridgeSendError:       "Failed to send message over the wallet bridge",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
