package catalog

import (
	"context"
	"errors"
	"testing"
)

func TestProviderSnapshotNilBeforeInit(t *testing.T) {
	p := NewProvider(func(context.Context) (*Snapshot, error) {
		return &Snapshot{version: "a"}, nil
	}, nil)

	if p.Snapshot() != nil {
		t.Fatal("no snapshot should be published before Init")
	}
}

func TestProviderInitPublishes(t *testing.T) {
	p := NewProvider(func(context.Context) (*Snapshot, error) {
		return &Snapshot{version: "a"}, nil
	}, nil)

	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if got := p.Snapshot().Version(); got != "a" {
		t.Errorf("published version = %q, want %q", got, "a")
	}
}

func TestProviderInitFailurePublishesNothing(t *testing.T) {
	p := NewProvider(func(context.Context) (*Snapshot, error) {
		return nil, errors.New("database unreachable")
	}, nil)

	if err := p.Init(context.Background()); err == nil {
		t.Fatal("expected init failure")
	}
	if p.Snapshot() != nil {
		t.Fatal("no snapshot should be published after a failed init")
	}
}

func TestProviderReloadKeepsPreviousSnapshotOnFailure(t *testing.T) {
	snapshots := []func() (*Snapshot, error){
		func() (*Snapshot, error) { return &Snapshot{version: "a"}, nil },
		func() (*Snapshot, error) { return nil, errors.New("transient failure") },
		func() (*Snapshot, error) { return &Snapshot{version: "b"}, nil },
	}
	calls := 0
	p := NewProvider(func(context.Context) (*Snapshot, error) {
		build := snapshots[calls]
		calls++
		return build()
	}, nil)

	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	first := p.Snapshot()

	// A failed reload leaves the previous snapshot untouched.
	if err := p.Reload(context.Background()); err == nil {
		t.Fatal("expected reload failure")
	}
	if p.Snapshot() != first {
		t.Fatal("failed reload must keep the previous snapshot active")
	}

	// A successful reload swaps in the new snapshot.
	if err := p.Reload(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := p.Snapshot().Version(); got != "b" {
		t.Errorf("published version = %q, want %q", got, "b")
	}
}
