package orders

import (
	"context"
	"testing"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
)

func TestApplyTransitionTable(t *testing.T) {
	all := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusProcessing,
		enums.OrderStatusCompleted,
		enums.OrderStatusFailed,
		enums.OrderStatusCancelled,
	}

	allowed := map[enums.OrderStatus]map[enums.OrderStatus]bool{
		enums.OrderStatusPending: {
			enums.OrderStatusProcessing: true,
			enums.OrderStatusCancelled:  true,
		},
		enums.OrderStatusProcessing: {
			enums.OrderStatusCompleted: true,
			enums.OrderStatusFailed:    true,
			enums.OrderStatusCancelled: true,
		},
	}

	ctx := context.Background()
	for _, from := range all {
		for _, to := range all {
			err := applyTransition(ctx, from, to)
			if allowed[from][to] {
				if err != nil {
					t.Fatalf("transition %s -> %s should be legal: %v", from, to, err)
				}
				continue
			}
			if err == nil {
				t.Fatalf("transition %s -> %s should be rejected", from, to)
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
				t.Fatalf("transition %s -> %s: expected state conflict, got %v", from, to, err)
			}
		}
	}
}

func TestApplyTransitionPendingNeverADestination(t *testing.T) {
	ctx := context.Background()
	for _, from := range []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusProcessing,
		enums.OrderStatusCompleted,
	} {
		err := applyTransition(ctx, from, enums.OrderStatusPending)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("transition %s -> pending: expected state conflict, got %v", from, err)
		}
		details, ok := typed.Details().(map[string]any)
		if !ok {
			t.Fatalf("expected details map, got %T", typed.Details())
		}
		if details["to"] != enums.OrderStatusPending.String() {
			t.Fatalf("expected pending target detail, got %v", details)
		}
	}
}

func TestApplyTransitionRejectionCarriesDetails(t *testing.T) {
	err := applyTransition(context.Background(), enums.OrderStatusCompleted, enums.OrderStatusCancelled)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["from"] != enums.OrderStatusCompleted.String() {
		t.Fatalf("expected from detail, got %v", details)
	}
	if details["to"] != enums.OrderStatusCancelled.String() {
		t.Fatalf("expected to detail, got %v", details)
	}
}

func TestRequiresCompensation(t *testing.T) {
	cases := map[enums.OrderStatus]bool{
		enums.OrderStatusPending:    false,
		enums.OrderStatusProcessing: false,
		enums.OrderStatusCompleted:  false,
		enums.OrderStatusFailed:     true,
		enums.OrderStatusCancelled:  true,
	}
	for status, want := range cases {
		if got := requiresCompensation(status); got != want {
			t.Fatalf("requiresCompensation(%s) = %v, want %v", status, got, want)
		}
	}
}
