package httpapi

import (
	"github.com/nikolayk812/cartledger/internal/domain"
	"github.com/samber/lo"
)

type orderInfoRequest struct {
	OrderID string `json:"orderId"`
}

type addItemRequest struct {
	OrderID         string `json:"orderId"`
	CatalogObjectID string `json:"catalogObjectId"`
	Quantity        int64  `json:"quantity"`
}

type setItemQuantityRequest struct {
	OrderID  string `json:"orderId"`
	UID      string `json:"uid"`
	Quantity int64  `json:"quantity"`
}

type removeItemRequest struct {
	OrderID string `json:"orderId"`
	UID     string `json:"uid"`
}

type shippingDetailsRequest struct {
	OrderID   string           `json:"orderId"`
	Recipient recipientPayload `json:"recipient"`
	Address   addressPayload   `json:"address"`
}

type recipientPayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type addressPayload struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (r shippingDetailsRequest) toDomain() domain.Recipient {
	return domain.Recipient{
		DisplayName: r.Recipient.Name,
		Phone:       r.Recipient.Phone,
		Email:       r.Recipient.Email,
		Address: domain.Address{
			Line1:      r.Address.Line1,
			Line2:      r.Address.Line2,
			Locality:   r.Address.City,
			Region:     r.Address.Region,
			PostalCode: r.Address.PostalCode,
			Country:    r.Address.Country,
		},
	}
}

type paymentRequest struct {
	OrderID  string `json:"orderId"`
	SourceID string `json:"sourceId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type orderResponse struct {
	Order orderPayload `json:"order"`
}

type orderPayload struct {
	ID           string               `json:"id"`
	Version      int64                `json:"version"`
	LocationID   string               `json:"locationId"`
	State        string               `json:"state,omitempty"`
	LineItems    []lineItemPayload    `json:"lineItems"`
	Fulfillments []fulfillmentPayload `json:"fulfillments,omitempty"`
	TotalMoney   moneyPayload         `json:"totalMoney"`
}

type lineItemPayload struct {
	UID             string       `json:"uid"`
	CatalogObjectID string       `json:"catalogObjectId"`
	Name            string       `json:"name,omitempty"`
	Quantity        int64        `json:"quantity"`
	TotalMoney      moneyPayload `json:"totalMoney"`
}

type fulfillmentPayload struct {
	UID   string `json:"uid"`
	Type  string `json:"type"`
	State string `json:"state"`
}

type moneyPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type receiptResponse struct {
	Receipt receiptPayload `json:"receipt"`
}

type receiptPayload struct {
	PaymentID  string       `json:"paymentId,omitempty"`
	OrderID    string       `json:"orderId"`
	Amount     moneyPayload `json:"amount"`
	ReceiptURL string       `json:"receiptUrl,omitempty"`
}

func toOrderResponse(o domain.Order) orderPayload {
	lineItems := lo.Map(o.LineItems, func(item domain.LineItem, _ int) lineItemPayload {
		return lineItemPayload{
			UID:             item.UID,
			CatalogObjectID: item.CatalogObjectID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			TotalMoney:      toMoneyPayload(item.Total),
		}
	})
	if lineItems == nil {
		lineItems = []lineItemPayload{}
	}

	fulfillments := lo.Map(o.Fulfillments, func(f domain.Fulfillment, _ int) fulfillmentPayload {
		return fulfillmentPayload{
			UID:   f.UID,
			Type:  string(f.Type),
			State: string(f.State),
		}
	})

	return orderPayload{
		ID:           o.ID,
		Version:      o.Version,
		LocationID:   o.LocationID,
		State:        o.State,
		LineItems:    lineItems,
		Fulfillments: fulfillments,
		TotalMoney:   toMoneyPayload(o.Total),
	}
}

func toReceiptResponse(r domain.Receipt) receiptPayload {
	return receiptPayload{
		PaymentID:  r.PaymentID,
		OrderID:    r.OrderID,
		Amount:     toMoneyPayload(r.Amount),
		ReceiptURL: r.ReceiptURL,
	}
}

func toMoneyPayload(m domain.Money) moneyPayload {
	return moneyPayload{
		Amount:   m.Amount,
		Currency: m.Currency.String(),
	}
}
