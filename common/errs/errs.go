package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// WalletRequired is returned when a flow needs a connected wallet address
	// and the session has none bound.
	WalletRequired = ErrorKind("wallet required")

	// SignerRequired is returned when a state-mutating chain call is attempted
	// without a bound signer. Raised before any network round-trip.
	SignerRequired = ErrorKind("signer required")

	// NetworkMismatch is returned when the provider is on the wrong chain and
	// switching to the required network failed.
	NetworkMismatch = ErrorKind("network mismatch")

	// NotAuthorized is returned when the requesting wallet does not match the
	// artifact's recorded owner.
	NotAuthorized = ErrorKind("not authorized")

	// ChainRejected is returned when a submitted transaction reverted on-chain.
	ChainRejected = ErrorKind("chain rejected")

	// GenerationError is returned when the text-generation provider call
	// failed or the provider credential is not configured.
	GenerationError = ErrorKind("generation error")

	// LedgerInconsistency is returned when the off-chain record could not be
	// patched after an on-chain state change succeeded. Never retried
	// automatically; requires manual reconciliation.
	LedgerInconsistency = ErrorKind("ledger inconsistency")

	InvalidArgument = ErrorKind("invalid argument")
	Unsupported     = ErrorKind("unsupported")
	Timeout         = ErrorKind("timeout")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
