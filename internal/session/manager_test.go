package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cgast/chkwrite/pkg/field"
	"github.com/cgast/chkwrite/pkg/lesson"
	"github.com/cgast/chkwrite/pkg/scenario"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cat, err := scenario.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	return NewManager(lesson.NewEngine(cat), NewMemoryStore(), nil)
}

func TestManagerCreateGet(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, err := m.Create(ctx, 1, lesson.Guided)
	if err != nil {
		t.Fatal(err)
	}
	got, err := m.Get(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ScenarioIndex != 1 || got.Phase != lesson.Guided {
		t.Errorf("stored session = %+v", got)
	}

	if _, err := m.Create(ctx, 99, lesson.Guided); !errors.Is(err, lesson.ErrScenarioOutOfRange) {
		t.Errorf("err = %v, want ErrScenarioOutOfRange", err)
	}
	if _, err := m.Get(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestManagerUpdate(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s, err := m.Create(ctx, 0, lesson.Independent)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := m.Update(ctx, s.ID, func(s *lesson.Session) error {
		_, err := m.Engine().SubmitField(s, field.Payee, "Plumbing Ink 123")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Values[lesson.Independent].Get(field.Payee) != "Plumbing Ink 123" {
		t.Errorf("update not applied: %+v", updated.Values)
	}

	stored, _ := m.Get(ctx, s.ID)
	if stored.Values[lesson.Independent].Get(field.Payee) != "Plumbing Ink 123" {
		t.Error("update not written back")
	}
}

func TestManagerUpdateErrorDiscards(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s, _ := m.Create(ctx, 0, lesson.Independent)

	_, err := m.Update(ctx, s.ID, func(s *lesson.Session) error {
		s.StepIndex = 4
		return m.Engine().SelectScenario(s, 42)
	})
	if !errors.Is(err, lesson.ErrScenarioOutOfRange) {
		t.Fatalf("err = %v, want ErrScenarioOutOfRange", err)
	}
	stored, _ := m.Get(ctx, s.ID)
	if stored.StepIndex != 0 {
		t.Errorf("failed update was written: step=%d", stored.StepIndex)
	}
}

func TestManagerUpdateSerializes(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s, _ := m.Create(ctx, 1, lesson.Independent)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, s.ID, func(s *lesson.Session) error {
				s.Values[lesson.Independent][field.Memo] += "x"
				return nil
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	stored, _ := m.Get(ctx, s.ID)
	if got := len(stored.Values[lesson.Independent].Get(field.Memo)); got != workers {
		t.Errorf("memo length = %d, want %d (lost updates)", got, workers)
	}
}

func TestManagerCancelledContext(t *testing.T) {
	m := newTestManager(t)
	s, _ := m.Create(context.Background(), 0, lesson.Guided)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Update(ctx, s.ID, func(*lesson.Session) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestManagerDelete(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s, _ := m.Create(ctx, 0, lesson.Guided)
	if err := m.Delete(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
	list, err := m.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("List = %d sessions, want 0", len(list))
	}
}

func TestManagerLogsSessionID(t *testing.T) {
	cat, err := scenario.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewManager(lesson.NewEngine(cat), NewMemoryStore(), zap.New(core))
	ctx := context.Background()

	s, err := m.Create(ctx, 0, lesson.Guided)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Update(ctx, s.ID, func(s *lesson.Session) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete(ctx, s.ID); err != nil {
		t.Fatal(err)
	}

	for _, msg := range []string{"session created", "session updated", "session deleted"} {
		entries := logs.FilterMessage(msg).All()
		if len(entries) != 1 {
			t.Fatalf("%q logged %d times, want 1", msg, len(entries))
		}
		if got := entries[0].ContextMap()["session_id"]; got != s.ID {
			t.Errorf("%q session_id = %v, want %s", msg, got, s.ID)
		}
	}
}
