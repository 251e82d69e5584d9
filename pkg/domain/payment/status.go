package payment

// Status is the lifecycle state of a cash-in transaction.
//
// Happy path: StatusCreated → StatusProcessing → StatusNotifyProcessed.
// Only the Created→Processing edge is guarded by the store; the remaining
// transitions are unconditional administrative overwrites.
type Status string

const (
	// StatusCreated is the initial state of every transaction.
	StatusCreated Status = "Created"
	// StatusProcessing is set once the aggregator callback starts settlement.
	StatusProcessing Status = "Processing"
	// StatusNotifyProcessed is the terminal success state.
	StatusNotifyProcessed Status = "NotifyProcessed"
	// StatusNotifyDeclined is set when the aggregator declines the payment.
	StatusNotifyDeclined Status = "NotifyDeclined"
	// StatusFailed is set on settlement failure.
	StatusFailed Status = "Failed"
	// StatusCancelled is set when the client abandons the payment.
	StatusCancelled Status = "Cancelled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}
