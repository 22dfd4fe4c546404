package postgres

var (
	BuildCxnStr = buildCxnStr
	EscapeLike  = escapeLike
	Pending     = pending
)
