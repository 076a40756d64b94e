// Package dispatch renders the dispensing instruction handed to the
// machine actuator channel and publishes it over Pub/Sub.
package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db/models"
)

// Liquid is a caller-supplied finishing additive. Liquids are never
// persisted with the order; they only parameterize the instruction.
type Liquid struct {
	Name string
	Qty  string
}

const (
	containerCup     = "1 cup"
	containerBowl    = "1 bowl"
	containerGeneric = "1 container"

	sessionPrefixSmoothie = "smoothie-"
	sessionPrefixSalad    = "salad-"
)

// Render builds the actuator instruction for an order. The output is
// deterministic for a given order and additive list: container token,
// one dispense token per ingredient line, one add token per addon line,
// a chamber advance when anything was dispensed, then the finishing
// additives.
func Render(order *models.Order, liquids []Liquid) string {
	if order == nil {
		return ""
	}

	tokens := []string{containerToken(order.SessionID)}

	for _, item := range order.Items {
		tokens = append(tokens, dispenseToken(item))
	}
	for _, addon := range order.Addons {
		tokens = append(tokens, addonToken(addon))
	}
	if len(order.Items) > 0 || len(order.Addons) > 0 {
		tokens = append(tokens, "move to next chamber")
	}

	if len(liquids) == 0 {
		tokens = append(tokens, "add finishing touches")
	} else {
		for _, liquid := range liquids {
			tokens = append(tokens, fmt.Sprintf("add %s %s", liquid.Qty, liquid.Name))
		}
	}

	return fmt.Sprintf("order %s @ %s: %s",
		shortOrderID(order.ID.String()),
		order.CreatedAt.UTC().Format(time.RFC3339),
		strings.Join(tokens, ", "))
}

func containerToken(sessionID *string) string {
	if sessionID == nil {
		return containerGeneric
	}
	switch {
	case strings.HasPrefix(*sessionID, sessionPrefixSmoothie):
		return containerCup
	case strings.HasPrefix(*sessionID, sessionPrefixSalad):
		return containerBowl
	default:
		return containerGeneric
	}
}

func dispenseToken(item models.OrderItem) string {
	name := "ingredient"
	if item.Ingredient != nil {
		name = item.Ingredient.Name
	}
	if item.QtyML > 0 {
		return fmt.Sprintf("dispense %s %dml", name, item.QtyML)
	}
	return fmt.Sprintf("dispense %s %dg", name, item.GramsUsed)
}

func addonToken(addon models.OrderAddon) string {
	name := "addon"
	if addon.Addon != nil {
		name = addon.Addon.Name
	}
	return fmt.Sprintf("add %s x%d", name, addon.Qty)
}

func shortOrderID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
