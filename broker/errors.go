package broker

import "fmt"

// DataError marks malformed or unreachable market/account data. A tick
// that hits one is retried in full on the next poll.
type DataError struct {
	Err error
}

func (e *DataError) Error() string { return fmt.Sprintf("market data: %v", e.Err) }
func (e *DataError) Unwrap() error { return e.Err }

// OrderError marks a rejected or failed order submission.
type OrderError struct {
	Err error
}

func (e *OrderError) Error() string { return fmt.Sprintf("order submission: %v", e.Err) }
func (e *OrderError) Unwrap() error { return e.Err }

// ProtectionError marks a failed stop/target attachment after a fill. It
// is downgraded to a warning by callers: the position is live, only
// unprotected.
type ProtectionError struct {
	Err error
}

func (e *ProtectionError) Error() string { return fmt.Sprintf("set trading stop: %v", e.Err) }
func (e *ProtectionError) Unwrap() error { return e.Err }
