package middleware_test

import (
	"context"
	"errors"
	"testing"

	"homestay/internal/app/commands"
	"homestay/internal/app/middleware"
)

type mapStore struct {
	records map[string]middleware.IdempotencyRecord
}

func newMapStore() *mapStore {
	return &mapStore{records: make(map[string]middleware.IdempotencyRecord)}
}

func (s *mapStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.records[rec.Key] = rec
	return nil
}

type echoCommand struct {
	Value string
	IDKey string
}

func (c echoCommand) Key() string            { return "test.echo" }
func (c echoCommand) IdempotencyKey() string { return c.IDKey }
func (c echoCommand) ResultPrototype() any   { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
	Calls int    `json:"calls"`
}

type echoHandler struct {
	calls int
	fail  error
}

func (h *echoHandler) Handle(_ context.Context, cmd echoCommand) (*echoResult, error) {
	h.calls++
	if h.fail != nil {
		return nil, h.fail
	}
	return &echoResult{Value: cmd.Value, Calls: h.calls}, nil
}

func newBus(handler *echoHandler, store middleware.IdempotencyStore) commands.Bus {
	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, echoCommand{}.Key(), handler)
	return middleware.ChainCommands(base, middleware.Idempotency(store))
}

func TestIdempotencyReplaysRecordedResult(t *testing.T) {
	handler := &echoHandler{}
	bus := newBus(handler, newMapStore())
	ctx := context.Background()

	first, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "a", IDKey: "key-1"})
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	second, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "a", IDKey: "key-1"})
	if err != nil {
		t.Fatalf("replay dispatch: %v", err)
	}
	if handler.calls != 1 {
		t.Fatalf("handler ran %d times, want 1", handler.calls)
	}
	if second.Value != first.Value || second.Calls != first.Calls {
		t.Fatalf("replayed result %+v differs from original %+v", second, first)
	}
}

func TestIdempotencyReplaysRecordedError(t *testing.T) {
	handler := &echoHandler{fail: errors.New("card declined")}
	bus := newBus(handler, newMapStore())
	ctx := context.Background()

	if _, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IDKey: "key-1"}); err == nil {
		t.Fatal("expected error on first dispatch")
	}
	handler.fail = nil
	_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IDKey: "key-1"})
	if err == nil || err.Error() != "card declined" {
		t.Fatalf("expected recorded error replay, got %v", err)
	}
	if handler.calls != 1 {
		t.Fatalf("handler ran %d times, want 1", handler.calls)
	}
}

func TestIdempotencyIgnoresEmptyKey(t *testing.T) {
	handler := &echoHandler{}
	bus := newBus(handler, newMapStore())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "a"}); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if handler.calls != 2 {
		t.Fatalf("handler ran %d times, want 2 without a key", handler.calls)
	}
}

func TestIdempotencyDistinctKeysRunSeparately(t *testing.T) {
	handler := &echoHandler{}
	bus := newBus(handler, newMapStore())
	ctx := context.Background()

	if _, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IDKey: "k1"}); err != nil {
		t.Fatalf("k1: %v", err)
	}
	if _, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IDKey: "k2"}); err != nil {
		t.Fatalf("k2: %v", err)
	}
	if handler.calls != 2 {
		t.Fatalf("handler ran %d times, want 2", handler.calls)
	}
}
