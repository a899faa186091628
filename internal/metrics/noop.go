package metrics

// NoopRecorder discards all metrics.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncUserSignup()     {}
func (n *NoopRecorder) IncUserLogin()      {}
func (n *NoopRecorder) IncExpenseCreated() {}
func (n *NoopRecorder) IncExpenseUpdated() {}
func (n *NoopRecorder) IncExpenseDeleted() {}
func (n *NoopRecorder) IncExpenseListed()  {}
