package domain

import (
	"time"
)

// Saga step status constants.
const (
	SagaStepPending   = "pending"
	SagaStepCompleted = "completed"
	SagaStepFailed    = "failed"
)

// SagaStep tracks the execution status of a single step in the order
// creation saga.
type SagaStep struct {
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	ExecutedAt time.Time `json:"executed_at,omitempty"`
}

// NewSagaStep creates a new saga step in the pending state.
func NewSagaStep(name string) SagaStep {
	return SagaStep{
		Name:   name,
		Status: SagaStepPending,
	}
}

// Complete marks the saga step as successfully completed.
func (s *SagaStep) Complete() {
	s.Status = SagaStepCompleted
	s.ExecutedAt = time.Now().UTC()
}

// Fail marks the saga step as failed with the given error message.
func (s *SagaStep) Fail(err string) {
	s.Status = SagaStepFailed
	s.Error = err
	s.ExecutedAt = time.Now().UTC()
}

// Saga step name constants for the order creation process, in execution
// order. check_stock is advisory; reduce_stock is the authoritative
// reservation. Steps after reduce_stock are not compensated on failure.
const (
	SagaStepValidateUser    = "validate_user"
	SagaStepValidateProduct = "validate_product"
	SagaStepCheckStock      = "check_stock"
	SagaStepReduceStock     = "reduce_stock"
	SagaStepPersist         = "persist"
)
