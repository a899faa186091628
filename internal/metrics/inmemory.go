package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UserSignups     uint64
	UserLogins      uint64
	ExpensesCreated uint64
	ExpensesUpdated uint64
	ExpensesDeleted uint64
	ExpensesListed  uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	userSignups     uint64
	userLogins      uint64
	expensesCreated uint64
	expensesUpdated uint64
	expensesDeleted uint64
	expensesListed  uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UserSignups:     atomic.LoadUint64(&m.userSignups),
		UserLogins:      atomic.LoadUint64(&m.userLogins),
		ExpensesCreated: atomic.LoadUint64(&m.expensesCreated),
		ExpensesUpdated: atomic.LoadUint64(&m.expensesUpdated),
		ExpensesDeleted: atomic.LoadUint64(&m.expensesDeleted),
		ExpensesListed:  atomic.LoadUint64(&m.expensesListed),
	}
}

func (m *InMemoryRecorder) IncUserSignup()     { atomic.AddUint64(&m.userSignups, 1) }
func (m *InMemoryRecorder) IncUserLogin()      { atomic.AddUint64(&m.userLogins, 1) }
func (m *InMemoryRecorder) IncExpenseCreated() { atomic.AddUint64(&m.expensesCreated, 1) }
func (m *InMemoryRecorder) IncExpenseUpdated() { atomic.AddUint64(&m.expensesUpdated, 1) }
func (m *InMemoryRecorder) IncExpenseDeleted() { atomic.AddUint64(&m.expensesDeleted, 1) }
func (m *InMemoryRecorder) IncExpenseListed()  { atomic.AddUint64(&m.expensesListed, 1) }
