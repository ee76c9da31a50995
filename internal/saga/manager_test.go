package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type recordingStep struct {
	id          StepID
	err         error
	log         *[]string
	compensated bool
}

func (s *recordingStep) ID() StepID { return s.id }

func (s *recordingStep) Execute(ctx context.Context, data SagaData) error {
	*s.log = append(*s.log, "execute "+string(s.id))
	if s.err != nil {
		return s.err
	}
	data[string(s.id)] = true
	return nil
}

func (s *recordingStep) Compensate(ctx context.Context, data SagaData) error {
	*s.log = append(*s.log, "compensate "+string(s.id))
	s.compensated = true
	return nil
}

type testDefinition struct {
	steps []Step
}

func (d testDefinition) ID() string             { return "test" }
func (d testDefinition) Steps() []Step          { return d.steps }
func (d testDefinition) Timeout() time.Duration { return time.Second }

func TestExecute_Completes(t *testing.T) {
	var log []string
	m := NewManager(zaptest.NewLogger(t))
	m.RegisterDefinition(testDefinition{steps: []Step{
		&recordingStep{id: "a", log: &log},
		&recordingStep{id: "b", log: &log},
	}})

	instance, err := m.Execute(context.Background(), "test", nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if instance.State != SagaStateCompleted {
		t.Errorf("Expected completed saga, got %s", instance.State)
	}
	if instance.Data["a"] != true || instance.Data["b"] != true {
		t.Errorf("steps did not share data: %v", instance.Data)
	}
	if len(log) != 2 {
		t.Errorf("unexpected step log: %v", log)
	}
}

func TestExecute_CompensatesInReverse(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	a := &recordingStep{id: "a", log: &log}
	b := &recordingStep{id: "b", log: &log}
	c := &recordingStep{id: "c", log: &log, err: boom}

	m := NewManager(zaptest.NewLogger(t))
	m.RegisterDefinition(testDefinition{steps: []Step{a, b, c}})

	instance, err := m.Execute(context.Background(), "test", SagaData{})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected step error, got %v", err)
	}
	if instance.State != SagaStateCompensated {
		t.Errorf("Expected compensated saga, got %s", instance.State)
	}

	want := []string{"execute a", "execute b", "execute c", "compensate b", "compensate a"}
	if len(log) != len(want) {
		t.Fatalf("Expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
	if c.compensated {
		t.Error("failed step must not be compensated")
	}
	if instance.Steps[2].State != StepStateFailed || instance.Steps[0].State != StepStateCompensated {
		t.Errorf("unexpected step states: %+v", instance.Steps)
	}
}

func TestExecute_UnknownDefinition(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	if _, err := m.Execute(context.Background(), "missing", nil); err == nil {
		t.Error("Expected error for unknown definition")
	}
}
