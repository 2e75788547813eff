package ledger

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nikolayk812/cartledger/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type orderEnvelope struct {
	Order wireOrder `json:"order"`
}

type locationsEnvelope struct {
	Locations []wireLocation `json:"locations"`
}

type errorEnvelope struct {
	Errors []wireError `json:"errors"`
}

type wireError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
	Field    string `json:"field"`
}

type wireLocation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type wireOrder struct {
	ID           string            `json:"id,omitempty"`
	Version      int64             `json:"version,omitempty"`
	LocationID   string            `json:"location_id,omitempty"`
	State        string            `json:"state,omitempty"`
	LineItems    []wireLineItem    `json:"line_items,omitempty"`
	Fulfillments []wireFulfillment `json:"fulfillments,omitempty"`
	TotalMoney   *wireMoney        `json:"total_money,omitempty"`
	CreatedAt    *time.Time        `json:"created_at,omitempty"`
	UpdatedAt    *time.Time        `json:"updated_at,omitempty"`
}

type wireLineItem struct {
	UID             string     `json:"uid,omitempty"`
	CatalogObjectID string     `json:"catalog_object_id,omitempty"`
	Name            string     `json:"name,omitempty"`
	Quantity        string     `json:"quantity,omitempty"`
	BasePriceMoney  *wireMoney `json:"base_price_money,omitempty"`
	TotalMoney      *wireMoney `json:"total_money,omitempty"`
}

type wireFulfillment struct {
	UID             string               `json:"uid,omitempty"`
	Type            string               `json:"type,omitempty"`
	State           string               `json:"state,omitempty"`
	ShipmentDetails *wireShipmentDetails `json:"shipment_details,omitempty"`
}

type wireShipmentDetails struct {
	Recipient    wireRecipient `json:"recipient"`
	Carrier      string        `json:"carrier,omitempty"`
	ShippingType string        `json:"shipping_type,omitempty"`
}

type wireRecipient struct {
	DisplayName  string       `json:"display_name,omitempty"`
	EmailAddress string       `json:"email_address,omitempty"`
	PhoneNumber  string       `json:"phone_number,omitempty"`
	Address      *wireAddress `json:"address,omitempty"`
}

type wireAddress struct {
	AddressLine1                 string `json:"address_line_1,omitempty"`
	AddressLine2                 string `json:"address_line_2,omitempty"`
	Locality                     string `json:"locality,omitempty"`
	AdministrativeDistrictLevel1 string `json:"administrative_district_level_1,omitempty"`
	PostalCode                   string `json:"postal_code,omitempty"`
	Country                      string `json:"country,omitempty"`
}

type updateOrderRequest struct {
	Order          wireOrder `json:"order"`
	FieldsToClear  []string  `json:"fields_to_clear,omitempty"`
	IdempotencyKey string    `json:"idempotency_key"`
}

type payOrderRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// The ledger speaks decimal-string quantities; the domain is integral.
func parseQuantity(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("decimal.NewFromString[%s]: %w", s, err)
	}

	if !d.IsInteger() {
		return 0, fmt.Errorf("quantity[%s] is not integral", s)
	}

	return d.IntPart(), nil
}

func mapWireMoneyToDomain(m *wireMoney) (domain.Money, error) {
	if m == nil {
		return domain.Money{}, nil
	}

	parsedCurrency, err := currency.ParseISO(m.Currency)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", m.Currency, err)
	}

	return domain.Money{Amount: m.Amount, Currency: parsedCurrency}, nil
}

func mapWireLineItemToDomain(w wireLineItem) (domain.LineItem, error) {
	quantity, err := parseQuantity(w.Quantity)
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("parseQuantity: %w", err)
	}

	basePrice, err := mapWireMoneyToDomain(w.BasePriceMoney)
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("base price: %w", err)
	}

	total, err := mapWireMoneyToDomain(w.TotalMoney)
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("total: %w", err)
	}

	return domain.LineItem{
		UID:             w.UID,
		CatalogObjectID: w.CatalogObjectID,
		Name:            w.Name,
		Quantity:        quantity,
		BasePrice:       basePrice,
		Total:           total,
	}, nil
}

func mapWireFulfillmentToDomain(w wireFulfillment) (domain.Fulfillment, error) {
	var f domain.Fulfillment

	state, err := domain.ToFulfillmentState(w.State)
	if err != nil {
		return f, fmt.Errorf("domain.ToFulfillmentState[%s]: %w", w.State, err)
	}

	f = domain.Fulfillment{
		UID:   w.UID,
		Type:  domain.FulfillmentType(w.Type),
		State: state,
	}

	if w.ShipmentDetails != nil {
		f.Shipment = &domain.ShipmentDetails{
			Recipient:    mapWireRecipientToDomain(w.ShipmentDetails.Recipient),
			Carrier:      w.ShipmentDetails.Carrier,
			ShippingType: w.ShipmentDetails.ShippingType,
		}
	}

	return f, nil
}

func mapWireRecipientToDomain(w wireRecipient) domain.Recipient {
	r := domain.Recipient{
		DisplayName: w.DisplayName,
		Email:       w.EmailAddress,
		Phone:       w.PhoneNumber,
	}

	if w.Address != nil {
		r.Address = domain.Address{
			Line1:      w.Address.AddressLine1,
			Line2:      w.Address.AddressLine2,
			Locality:   w.Address.Locality,
			Region:     w.Address.AdministrativeDistrictLevel1,
			PostalCode: w.Address.PostalCode,
			Country:    w.Address.Country,
		}
	}

	return r
}

func mapWireOrderToDomain(w wireOrder) (domain.Order, error) {
	var o domain.Order

	var items []domain.LineItem
	for _, wi := range w.LineItems {
		item, err := mapWireLineItemToDomain(wi)
		if err != nil {
			return o, fmt.Errorf("mapWireLineItemToDomain: %w", err)
		}

		items = append(items, item)
	}

	var fulfillments []domain.Fulfillment
	for _, wf := range w.Fulfillments {
		f, err := mapWireFulfillmentToDomain(wf)
		if err != nil {
			return o, fmt.Errorf("mapWireFulfillmentToDomain: %w", err)
		}

		fulfillments = append(fulfillments, f)
	}

	total, err := mapWireMoneyToDomain(w.TotalMoney)
	if err != nil {
		return o, fmt.Errorf("total money: %w", err)
	}

	return domain.Order{
		ID:           w.ID,
		Version:      w.Version,
		LocationID:   w.LocationID,
		State:        w.State,
		LineItems:    items,
		Fulfillments: fulfillments,
		Total:        total,
		CreatedAt:    lo.FromPtr(w.CreatedAt),
		UpdatedAt:    lo.FromPtr(w.UpdatedAt),
	}, nil
}

func mapDomainRecipientToWire(r domain.Recipient) wireRecipient {
	return wireRecipient{
		DisplayName:  r.DisplayName,
		EmailAddress: r.Email,
		PhoneNumber:  r.Phone,
		Address: &wireAddress{
			AddressLine1:                 r.Address.Line1,
			AddressLine2:                 r.Address.Line2,
			Locality:                     r.Address.Locality,
			AdministrativeDistrictLevel1: r.Address.Region,
			PostalCode:                   r.Address.PostalCode,
			Country:                      r.Address.Country,
		},
	}
}

func mapDomainFulfillmentToWire(f domain.Fulfillment) wireFulfillment {
	w := wireFulfillment{
		UID:   f.UID,
		Type:  string(f.Type),
		State: string(f.State),
	}

	if f.Shipment != nil {
		w.ShipmentDetails = &wireShipmentDetails{
			Recipient:    mapDomainRecipientToWire(f.Shipment.Recipient),
			Carrier:      f.Shipment.Carrier,
			ShippingType: f.Shipment.ShippingType,
		}
	}

	return w
}

// mapMutationToWire produces the sparse update body: only the fields being
// written, the expected version and the clear paths. Nothing else.
func mapMutationToWire(req domain.MutationRequest) updateOrderRequest {
	order := wireOrder{
		LocationID: req.LocationID,
		Version:    req.ExpectedVersion,
	}

	for _, item := range req.LineItems {
		order.LineItems = append(order.LineItems, wireLineItem{
			UID:             item.UID,
			CatalogObjectID: item.CatalogObjectID,
			Quantity:        strconv.FormatInt(item.Quantity, 10),
		})
	}

	for _, f := range req.Fulfillments {
		order.Fulfillments = append(order.Fulfillments, mapDomainFulfillmentToWire(f))
	}

	return updateOrderRequest{
		Order:          order,
		FieldsToClear:  req.FieldsToClear,
		IdempotencyKey: req.IdempotencyKey,
	}
}

func mapWireLocationsToDomain(ws []wireLocation) []domain.Location {
	return lo.Map(ws, func(w wireLocation, _ int) domain.Location {
		return domain.Location{ID: w.ID, Name: w.Name}
	})
}
