package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Swap-specific error codes
const (
	// Asset catalog errors
	CodeCatalogUnavailable Code = "CATALOG_UNAVAILABLE"
	CodeMalformedAsset     Code = "MALFORMED_ASSET"

	// Quote/simulation errors
	CodeQuoteUnavailable Code = "QUOTE_UNAVAILABLE"
	CodeNoRoute          Code = "NO_ROUTE"
	CodeInvalidAmount    Code = "INVALID_AMOUNT"

	// Transaction composition errors
	CodeCompositionError    Code = "COMPOSITION_ERROR"
	CodeInvalidPairCategory Code = "INVALID_PAIR_CATEGORY"
	CodeMalformedRouterInfo Code = "MALFORMED_ROUTER_INFO"

	// Swap session errors
	CodeNotReady Code = "NOT_READY"
	CodeNoQuote  Code = "NO_QUOTE"

	// Wallet errors
	CodeWalletNotConnected Code = "WALLET_NOT_CONNECTED"
	CodeUserRejected       Code = "USER_REJECTED"
	CodeSubmissionError    Code = "SUBMISSION_ERROR"
	CodeSubmissionExpired  Code = "SUBMISSION_EXPIRED"

	// Transport errors (wrapped before they cross a component boundary)
	CodeStonAPIError          Code = "STON_API_ERROR"
	CodeRouterBuilderError    Code = "ROUTER_BUILDER_ERROR"
	CodeBridgeConnectionError Code = "BRIDGE_CONNECTION_ERROR"
	CodeBridgeSendError       Code = "BRIDGE_SEND_ERROR"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
