package orders

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
)

// Events are named after the destination status. A status missing from every
// Src list (the terminal ones) can never move again.
var lifecycleEvents = []loopfsm.EventDesc{
	{
		Name: enums.OrderStatusProcessing.String(),
		Src:  []string{enums.OrderStatusPending.String()},
		Dst:  enums.OrderStatusProcessing.String(),
	},
	{
		Name: enums.OrderStatusCompleted.String(),
		Src:  []string{enums.OrderStatusProcessing.String()},
		Dst:  enums.OrderStatusCompleted.String(),
	},
	{
		Name: enums.OrderStatusFailed.String(),
		Src:  []string{enums.OrderStatusProcessing.String()},
		Dst:  enums.OrderStatusFailed.String(),
	},
	{
		Name: enums.OrderStatusCancelled.String(),
		Src:  []string{enums.OrderStatusPending.String(), enums.OrderStatusProcessing.String()},
		Dst:  enums.OrderStatusCancelled.String(),
	},
}

// applyTransition validates current → target using a short-lived FSM instance
// (looplab/fsm tracks the current state internally, so one per call).
func applyTransition(ctx context.Context, current, target enums.OrderStatus) error {
	machine := loopfsm.NewFSM(current.String(), lifecycleEvents, nil)

	if err := machine.Event(ctx, target.String()); err != nil {
		// Unknown events cover targets no transition ever reaches, like pending.
		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) || errors.As(err, &noTransition) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]any{"from": current.String(), "to": target.String()})
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply status transition")
	}
	return nil
}

// requiresCompensation reports whether reaching the status must put the
// deducted stock back.
func requiresCompensation(status enums.OrderStatus) bool {
	return status == enums.OrderStatusCancelled || status == enums.OrderStatusFailed
}
