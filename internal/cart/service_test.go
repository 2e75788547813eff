package cart_test

import (
	"sync"
	"testing"
	"time"

	"github.com/nikolayk812/cartledger/internal/cart"
	"github.com/nikolayk812/cartledger/internal/domain"
	"github.com/nikolayk812/cartledger/internal/idempotency"
	"github.com/nikolayk812/cartledger/internal/ledger/ledgertest"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type serviceTestSuite struct {
	suite.Suite

	fake    *ledgertest.Ledger
	service *cart.Service
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(serviceTestSuite))
}

func (suite *serviceTestSuite) SetupTest() {
	suite.fake = ledgertest.New()
	suite.fake.SetPrice("SKU-A", domain.Money{Amount: 100, Currency: currency.USD})
	suite.fake.SetPrice("SKU-B", domain.Money{Amount: 250, Currency: currency.USD})

	builder, err := cart.NewBuilder("L1", idempotency.NewGenerator())
	suite.Require().NoError(err)

	suite.service, err = cart.NewService(suite.fake, builder,
		cart.WithRetry(3, time.Millisecond))
	suite.Require().NoError(err)
}

func (suite *serviceTestSuite) TestAddItem() {
	ctx := suite.T().Context()
	order := suite.fake.CreateOrder("L1")

	updated, err := suite.service.AddItem(ctx, order.ID, "SKU-A", 2)
	suite.NoError(err)
	suite.Equal(order.Version+1, updated.Version)
	suite.Require().Len(updated.LineItems, 1)
	suite.Equal(int64(2), updated.LineItems[0].Quantity)
	suite.Equal(int64(200), updated.Total.Amount)

	// Second mutation builds against a freshly fetched snapshot, not a cached one.
	updated, err = suite.service.AddItem(ctx, order.ID, "SKU-B", 1)
	suite.NoError(err)
	suite.Equal(order.Version+2, updated.Version)
	suite.Len(updated.LineItems, 2)
	suite.Equal(int64(450), updated.Total.Amount)
}

func (suite *serviceTestSuite) TestSetItemQuantityZeroKeepsLine() {
	ctx := suite.T().Context()
	order := suite.fake.CreateOrder("L1")

	updated, err := suite.service.AddItem(ctx, order.ID, "SKU-A", 3)
	suite.Require().NoError(err)
	uid := updated.LineItems[0].UID

	updated, err = suite.service.SetItemQuantity(ctx, order.ID, uid, 0)
	suite.NoError(err)

	item, ok := updated.FindLineItem(uid)
	suite.Require().True(ok, "zeroed line item must keep its uid slot")
	suite.Equal(int64(0), item.Quantity)
	suite.Equal(int64(0), updated.Total.Amount)
}

func (suite *serviceTestSuite) TestRemoveItem() {
	ctx := suite.T().Context()
	order := suite.fake.CreateOrder("L1")

	updated, err := suite.service.AddItem(ctx, order.ID, "SKU-A", 1)
	suite.Require().NoError(err)
	uid := updated.LineItems[0].UID

	updated, err = suite.service.AddItem(ctx, order.ID, "SKU-B", 1)
	suite.Require().NoError(err)
	suite.Require().Len(updated.LineItems, 2)

	updated, err = suite.service.RemoveItem(ctx, order.ID, uid)
	suite.NoError(err)

	uids := lo.Map(updated.LineItems, func(item domain.LineItem, _ int) string { return item.UID })
	suite.NotContains(uids, uid)
	suite.Len(updated.LineItems, 1)
	suite.Equal(int64(250), updated.Total.Amount)
}

func (suite *serviceTestSuite) TestClearCartOnEmptyOrderStillCommits() {
	ctx := suite.T().Context()
	order := suite.fake.CreateOrder("L1")

	// Clearing an already-empty cart is not an error and still commits a version.
	updated, err := suite.service.ClearCart(ctx, order.ID)
	suite.NoError(err)
	suite.Empty(updated.LineItems)
	suite.Equal(order.Version+1, updated.Version)
}

func (suite *serviceTestSuite) TestSetShippingFulfillment() {
	ctx := suite.T().Context()
	order := suite.fake.CreateOrder("L1")

	recipient := domain.Recipient{
		DisplayName: "Jamie Doe",
		Address: domain.Address{
			Line1:      "1 Main St",
			Locality:   "Harbor City",
			PostalCode: "90710",
		},
	}

	updated, err := suite.service.SetShippingFulfillment(ctx, order.ID, recipient)
	suite.NoError(err)
	suite.Require().Len(updated.Fulfillments, 1)
	suite.NotEmpty(updated.Fulfillments[0].UID)
	suite.Equal(domain.FulfillmentStateProposed, updated.Fulfillments[0].State)
}

func (suite *serviceTestSuite) TestVersionConflictIsTerminal() {
	ctx := suite.T().Context()
	order := suite.fake.CreateOrder("L1")

	// A concurrent writer lands between our fetch and our patch, exactly once.
	var once sync.Once
	suite.fake.OnBeforeUpdate(func() {
		once.Do(func() { suite.fake.BumpVersion(order.ID) })
	})

	_, err := suite.service.AddItem(ctx, order.ID, "SKU-A", 1)
	suite.ErrorIs(err, domain.ErrVersionConflict)

	// A conflict is never resubmitted: one attempt, nothing applied.
	suite.Len(suite.fake.UpdateKeys(), 1)

	current, err := suite.fake.GetOrder(ctx, order.ID)
	suite.Require().NoError(err)
	suite.Empty(current.LineItems)
}

func (suite *serviceTestSuite) TestTransientRetryResubmitsSameKey() {
	ctx := suite.T().Context()
	order := suite.fake.CreateOrder("L1")

	suite.fake.FailUpdates(2)

	updated, err := suite.service.AddItem(ctx, order.ID, "SKU-A", 1)
	suite.NoError(err)
	suite.Equal(order.Version+1, updated.Version)
	suite.Len(updated.LineItems, 1)

	// Every resubmission carried the identical key for the identical body.
	keys := suite.fake.UpdateKeys()
	suite.Require().Len(keys, 3)
	suite.Len(lo.Uniq(keys), 1)
}

func (suite *serviceTestSuite) TestTransientBudgetExhausted() {
	ctx := suite.T().Context()
	order := suite.fake.CreateOrder("L1")

	suite.fake.FailUpdates(10)

	_, err := suite.service.AddItem(ctx, order.ID, "SKU-A", 1)
	suite.ErrorIs(err, domain.ErrTransient)

	// Initial attempt plus three retries, all with one key.
	keys := suite.fake.UpdateKeys()
	suite.Require().Len(keys, 4)
	suite.Len(lo.Uniq(keys), 1)
}

func (suite *serviceTestSuite) TestValidationRejectedBeforePatch() {
	ctx := suite.T().Context()
	order := suite.fake.CreateOrder("L1")

	_, err := suite.service.AddItem(ctx, order.ID, "SKU-A", 0)
	suite.ErrorIs(err, domain.ErrValidation)

	// The intent never reached the ledger.
	suite.Empty(suite.fake.UpdateKeys())
}

func (suite *serviceTestSuite) TestUnknownOrder() {
	ctx := suite.T().Context()

	_, err := suite.service.GetOrder(ctx, "no-such-order")
	suite.ErrorIs(err, domain.ErrNotFound)

	_, err = suite.service.AddItem(ctx, "no-such-order", "SKU-A", 1)
	suite.ErrorIs(err, domain.ErrNotFound)
}
