package domain

import (
	"errors"
	"fmt"
)

type FulfillmentType string

const (
	FulfillmentTypeShipment FulfillmentType = "SHIPMENT"
	FulfillmentTypePickup   FulfillmentType = "PICKUP"
)

type FulfillmentState string

// remember to add new states to the validFulfillmentStates map
const (
	FulfillmentStateProposed  FulfillmentState = "PROPOSED"
	FulfillmentStateReserved  FulfillmentState = "RESERVED"
	FulfillmentStatePrepared  FulfillmentState = "PREPARED"
	FulfillmentStateCompleted FulfillmentState = "COMPLETED"
	FulfillmentStateCanceled  FulfillmentState = "CANCELED"
	FulfillmentStateFailed    FulfillmentState = "FAILED"
)

var validFulfillmentStates = map[FulfillmentState]struct{}{
	FulfillmentStateProposed:  {},
	FulfillmentStateReserved:  {},
	FulfillmentStatePrepared:  {},
	FulfillmentStateCompleted: {},
	FulfillmentStateCanceled:  {},
	FulfillmentStateFailed:    {},
}

func ToFulfillmentState(s string) (FulfillmentState, error) {
	state := FulfillmentState(s)
	if _, ok := validFulfillmentStates[state]; ok {
		return state, nil
	}

	return "", errors.New("invalid fulfillment state")
}

// Fulfillment is the shipment/delivery specification attached to an order.
// This system attaches at most one active fulfillment per order.
type Fulfillment struct {
	UID      string
	Type     FulfillmentType
	State    FulfillmentState
	Shipment *ShipmentDetails
}

type ShipmentDetails struct {
	Recipient    Recipient
	Carrier      string
	ShippingType string
}

// Recipient names the person a shipment goes to. Fields are explicit and
// validated up front; a missing required field is a validation error, never
// silently omitted.
type Recipient struct {
	DisplayName string
	Email       string
	Phone       string
	Address     Address
}

func (r Recipient) Validate() error {
	if r.DisplayName == "" {
		return fmt.Errorf("recipient display name is required: %w", ErrValidation)
	}

	if err := r.Address.Validate(); err != nil {
		return fmt.Errorf("recipient address: %w", err)
	}

	return nil
}

type Address struct {
	Line1      string
	Line2      string
	Locality   string
	Region     string
	PostalCode string
	Country    string
}

func (a Address) Validate() error {
	if a.Line1 == "" {
		return fmt.Errorf("address line1 is required: %w", ErrValidation)
	}
	if a.Locality == "" {
		return fmt.Errorf("address locality is required: %w", ErrValidation)
	}
	if a.PostalCode == "" {
		return fmt.Errorf("address postal code is required: %w", ErrValidation)
	}

	return nil
}
