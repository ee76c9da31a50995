package saga

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager runs registered sagas
type Manager struct {
	logger      *zap.Logger
	definitions map[string]SagaDefinition
	mu          sync.RWMutex
}

// NewManager creates a new saga manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger:      logger,
		definitions: make(map[string]SagaDefinition),
	}
}

// RegisterDefinition registers a saga definition
func (m *Manager) RegisterDefinition(def SagaDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.definitions[def.ID()] = def
	m.logger.Info("Saga definition registered", zap.String("id", def.ID()))
}

// Execute runs the saga to completion on the caller's goroutine. When a step
// fails, the steps that completed before it are compensated in reverse order
// and the step's error is returned together with the instance record.
func (m *Manager) Execute(ctx context.Context, definitionID string, data SagaData) (*SagaInstance, error) {
	m.mu.RLock()
	def, exists := m.definitions[definitionID]
	m.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("saga definition not found: %s", definitionID)
	}
	if data == nil {
		data = SagaData{}
	}

	steps := def.Steps()
	instance := &SagaInstance{
		ID:         SagaID(definitionID + "_" + uuid.NewString()),
		Definition: definitionID,
		State:      SagaStateRunning,
		Data:       data,
		Steps:      make([]StepExecution, len(steps)),
		StartedAt:  time.Now(),
	}
	for i, step := range steps {
		instance.Steps[i] = StepExecution{ID: step.ID(), State: StepStatePending}
	}

	m.logger.Info("Saga started",
		zap.String("sagaID", string(instance.ID)),
		zap.String("definition", definitionID))

	ctx, cancel := context.WithTimeout(ctx, def.Timeout())
	defer cancel()

	lastCompleted := -1
	var stepErr error
	for i, step := range steps {
		if stepErr = m.executeStep(ctx, instance, i, step); stepErr != nil {
			break
		}
		lastCompleted = i
	}

	if stepErr != nil {
		instance.Error = stepErr.Error()
		// Compensation runs even when ctx has expired.
		m.compensate(context.WithoutCancel(ctx), instance, steps, lastCompleted)
		return instance, stepErr
	}

	instance.State = SagaStateCompleted
	instance.CompletedAt = time.Now()
	m.logger.Info("Saga completed",
		zap.String("sagaID", string(instance.ID)),
		zap.Duration("duration", instance.CompletedAt.Sub(instance.StartedAt)))
	return instance, nil
}

func (m *Manager) executeStep(ctx context.Context, instance *SagaInstance, i int, step Step) error {
	exec := &instance.Steps[i]
	exec.State = StepStateRunning
	started := time.Now()

	err := ctx.Err()
	if err == nil {
		err = step.Execute(ctx, instance.Data)
	}
	exec.Duration = time.Since(started)

	if err != nil {
		exec.State = StepStateFailed
		exec.Error = err.Error()
		m.logger.Error("Step failed",
			zap.String("sagaID", string(instance.ID)),
			zap.String("stepID", string(step.ID())),
			zap.Error(err))
		return err
	}

	exec.State = StepStateCompleted
	m.logger.Info("Step completed",
		zap.String("sagaID", string(instance.ID)),
		zap.String("stepID", string(step.ID())),
		zap.Duration("duration", exec.Duration))
	return nil
}

// compensate runs compensation for completed steps in reverse order
func (m *Manager) compensate(ctx context.Context, instance *SagaInstance, steps []Step, lastCompleted int) {
	m.logger.Info("Starting compensation", zap.String("sagaID", string(instance.ID)))

	for i := lastCompleted; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx, instance.Data); err != nil {
			m.logger.Error("Compensation failed",
				zap.String("sagaID", string(instance.ID)),
				zap.String("stepID", string(step.ID())),
				zap.Error(err))
			continue
		}
		instance.Steps[i].State = StepStateCompensated
	}

	instance.State = SagaStateCompensated
	instance.CompletedAt = time.Now()
	m.logger.Info("Saga compensated", zap.String("sagaID", string(instance.ID)))
}
