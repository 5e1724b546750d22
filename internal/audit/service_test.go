package audit

import (
	"context"
	"testing"
)

func TestRecord_FillsDefaults(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	err := svc.Record(context.Background(), Delivery{
		Provider:    "vapi",
		EventType:   "call.started",
		Disposition: DispositionProcessed,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	all := repo.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(all))
	}
	if all[0].ID == "" || all[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be filled: %+v", all[0])
	}
}

func TestRecord_RejectsInvalid(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.Record(context.Background(), Delivery{Disposition: DispositionSkipped}); err != ErrInvalidDelivery {
		t.Fatalf("expected ErrInvalidDelivery for missing provider, got %v", err)
	}
	if err := svc.Record(context.Background(), Delivery{Provider: "vapi"}); err != ErrInvalidDelivery {
		t.Fatalf("expected ErrInvalidDelivery for missing disposition, got %v", err)
	}
}
