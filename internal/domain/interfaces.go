package domain

import "time"

// Recorder receives instrumentation events from the store and lifecycle service.
type Recorder interface {
	// ObserveMutation counts a store mutation by operation and outcome
	ObserveMutation(op string, err error)

	// ObservePersist records how long a storage write took
	ObservePersist(d time.Duration, err error)

	// SetCollectionSize reports the number of playgrounds held in memory
	SetCollectionSize(n int)

	// ObserveMaintenance counts a maintenance pass
	ObserveMaintenance(err error)

	// ObserveAutoSave counts an auto-save tick; flushed is false when nothing was dirty
	ObserveAutoSave(flushed bool, err error)
}

// NoOpRecorder discards all events (for testing/CLI one-shots).
type NoOpRecorder struct{}

func (NoOpRecorder) ObserveMutation(string, error)       {}
func (NoOpRecorder) ObservePersist(time.Duration, error) {}
func (NoOpRecorder) SetCollectionSize(int)               {}
func (NoOpRecorder) ObserveMaintenance(error)            {}
func (NoOpRecorder) ObserveAutoSave(bool, error)         {}
