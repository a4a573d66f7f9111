package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/shared"
)

// PriceSource records the provenance of a line's unit price
type PriceSource string

const (
	// PriceSourceManual marks a price typed in by the acting user
	PriceSourceManual PriceSource = "Manual"
	// PriceSourceReference marks a price taken from the item's reference price
	PriceSourceReference PriceSource = "ReferencePrice"
	// PriceSourceSystemDefault marks the zero fallback used when no price is known
	PriceSourceSystemDefault PriceSource = "SystemDefault"
	// PriceSourceSale marks a price carried over from a posted sale line
	PriceSourceSale PriceSource = "Sale"
	// PriceSourcePurchaseOrder marks a price copied from a purchase order
	PriceSourcePurchaseOrder PriceSource = "PurchaseOrder"
	// PriceSourceAverageCost marks a price derived from weighted average cost
	PriceSourceAverageCost PriceSource = "AverageCost"
)

// String returns the string representation of PriceSource
func (p PriceSource) String() string {
	return string(p)
}

// PriceResolution is the outcome of resolving a unit price for one line
type PriceResolution struct {
	UnitPrice decimal.Decimal
	Source    PriceSource
	SetByRole string
	SetByUser string
}

// ResolveInPrice resolves the unit price for an IN transaction line. Any
// actor may supply a manual price; otherwise the reference price is used,
// and as a last resort the price defaults to zero so zero-cost stock loads
// always succeed.
func ResolveInPrice(manual *decimal.Decimal, reference *decimal.Decimal, actor identity.Actor) (PriceResolution, error) {
	if manual != nil {
		if manual.IsNegative() {
			return PriceResolution{}, shared.NewValidationError("Manual price cannot be negative")
		}
		return PriceResolution{
			UnitPrice: *manual,
			Source:    PriceSourceManual,
			SetByRole: string(actor.Role),
			SetByUser: actor.Username,
		}, nil
	}

	if reference != nil {
		return PriceResolution{
			UnitPrice: *reference,
			Source:    PriceSourceReference,
			SetByRole: string(actor.Role),
			SetByUser: actor.Username,
		}, nil
	}

	return PriceResolution{
		UnitPrice: decimal.Zero,
		Source:    PriceSourceSystemDefault,
		SetByRole: string(actor.Role),
		SetByUser: actor.Username,
	}, nil
}

// ResolveOutPrice resolves the unit price for an OUT transaction line. Only
// Admin and Supervisor may override the reference price; without an
// override the reference price is mandatory because stock cannot leave the
// store unpriced.
func ResolveOutPrice(override *decimal.Decimal, reference *decimal.Decimal, actor identity.Actor) (PriceResolution, error) {
	if override != nil {
		if !actor.Role.CanOverrideSellingPrice() {
			return PriceResolution{}, shared.NewUnauthorizedError(fmt.Sprintf(
				"User %s with role %s is not authorized to override the selling price",
				actor.Username, actor.Role))
		}
		if override.IsNegative() {
			return PriceResolution{}, shared.NewValidationError("Manual price cannot be negative")
		}
		return PriceResolution{
			UnitPrice: *override,
			Source:    PriceSourceManual,
			SetByRole: string(actor.Role),
			SetByUser: actor.Username,
		}, nil
	}

	if reference != nil {
		return PriceResolution{
			UnitPrice: *reference,
			Source:    PriceSourceReference,
			SetByRole: string(actor.Role),
			SetByUser: "System",
		}, nil
	}

	return PriceResolution{}, shared.NewBusinessError(
		"Cannot create an outbound transaction without a selling price: no reference price exists and no override was supplied")
}

// ResolveAdjustPrice resolves the informational valuation for an ADJUST
// line using the same fallback chain as IN
func ResolveAdjustPrice(manual *decimal.Decimal, reference *decimal.Decimal, actor identity.Actor) (PriceResolution, error) {
	return ResolveInPrice(manual, reference, actor)
}
