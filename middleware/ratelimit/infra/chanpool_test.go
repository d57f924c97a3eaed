package infra

import (
	"context"
	"testing"
	"time"
)

func TestChanPool_AcquireAndRelease(t *testing.T) {
	p := NewChanPool(2).(*chanPool)

	r1, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}
	r2, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected second acquire to succeed")
	}
	if got := p.InFlight(); got != 2 {
		t.Fatalf("expected 2 slots in flight, got %d", got)
	}

	r1()
	r2()
	if got := p.InFlight(); got != 0 {
		t.Fatalf("expected 0 slots in flight after release, got %d", got)
	}
}

func TestChanPool_BlocksUntilContextDone(t *testing.T) {
	p := NewChanPool(1)

	release, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected acquire to succeed")
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected acquire on full pool to fail when context expires")
	}
}

func TestChanPool_DoubleReleaseFreesOneSlot(t *testing.T) {
	p := NewChanPool(1).(*chanPool)

	release, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected acquire to succeed")
	}

	release()
	release()

	// se a segunda release tivesse efeito, o pool ficaria com ocupação negativa
	// ou travaria; a vaga única precisa estar disponível exatamente uma vez
	if got := p.InFlight(); got != 0 {
		t.Fatalf("expected 0 slots in flight, got %d", got)
	}
	r2, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected reacquire to succeed")
	}
	r2()
}
