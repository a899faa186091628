// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder counts domain events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	IncUserSignup()
	IncUserLogin()
	IncExpenseCreated()
	IncExpenseUpdated()
	IncExpenseDeleted()
	IncExpenseListed()
}
