package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered           uint64 `json:"users_registered"`
	LoginSuccesses            uint64 `json:"login_successes"`
	LoginFailures             uint64 `json:"login_failures"`
	GenerationRequests        uint64 `json:"generation_requests"`
	GenerationFailures        uint64 `json:"generation_failures"`
	GenerationDurationCount   uint64 `json:"generation_duration_count"`
	GenerationDurationTotalNs int64  `json:"generation_duration_total_ns"`
	SchemasDeleted            uint64 `json:"schemas_deleted"`
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered           uint64
	loginSuccesses            uint64
	loginFailures             uint64
	generationRequests        uint64
	generationFailures        uint64
	generationDurationCount   uint64
	generationDurationTotalNs int64
	schemasDeleted            uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:           atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:            atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:             atomic.LoadUint64(&m.loginFailures),
		GenerationRequests:        atomic.LoadUint64(&m.generationRequests),
		GenerationFailures:        atomic.LoadUint64(&m.generationFailures),
		GenerationDurationCount:   atomic.LoadUint64(&m.generationDurationCount),
		GenerationDurationTotalNs: atomic.LoadInt64(&m.generationDurationTotalNs),
		SchemasDeleted:            atomic.LoadUint64(&m.schemasDeleted),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncGenerationRequest increments the generation request counter.
func (m *InMemoryRecorder) IncGenerationRequest() {
	atomic.AddUint64(&m.generationRequests, 1)
}

// IncGenerationFailure increments the generation failure counter.
func (m *InMemoryRecorder) IncGenerationFailure() {
	atomic.AddUint64(&m.generationFailures, 1)
}

// ObserveGenerationDuration records how long a generation call took.
func (m *InMemoryRecorder) ObserveGenerationDuration(duration time.Duration) {
	atomic.AddUint64(&m.generationDurationCount, 1)
	atomic.AddInt64(&m.generationDurationTotalNs, duration.Nanoseconds())
}

// IncSchemaDeleted increments the schema deletion counter.
func (m *InMemoryRecorder) IncSchemaDeleted() {
	atomic.AddUint64(&m.schemasDeleted, 1)
}
