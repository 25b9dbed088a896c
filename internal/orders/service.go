package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autohaus-digital/backend/internal/cart"
	"github.com/autohaus-digital/backend/internal/discounts"
	"github.com/autohaus-digital/backend/internal/pricing"
	"github.com/autohaus-digital/backend/pkg/db"
	"github.com/autohaus-digital/backend/pkg/db/models"
	"github.com/autohaus-digital/backend/pkg/enums"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
	"github.com/autohaus-digital/backend/pkg/logger"
	"github.com/autohaus-digital/backend/pkg/outbox"
	"github.com/autohaus-digital/backend/pkg/outbox/payloads"
	"github.com/autohaus-digital/backend/pkg/pagination"
)

// vehicleNamePrefix tags vehicle order lines so readers can tell them from
// product lines without a join; vehicle lines also carry a NULL product_id.
const vehicleNamePrefix = "Fahrzeug: "

const maxNumberAttempts = 3

// Submitter identifies the authenticated caller of a submission.
type Submitter struct {
	UserID   uuid.UUID
	Approved bool
	Admin    bool
}

// SubmitInput carries the billing and shipping data for one submission. The
// same rules the UI enforces are re-checked here; the server is the trust
// boundary.
type SubmitInput struct {
	BillingName    string
	BillingEmail   string
	BillingPhone   string
	BillingStreet  string
	BillingZip     string
	BillingCity    string
	BillingCountry string

	UseDifferentShipping bool
	ShippingName         string
	ShippingStreet       string
	ShippingZip          string
	ShippingCity         string
	ShippingCountry      string

	Notes *string
}

// SubmitResult reports a successful submission.
type SubmitResult struct {
	OrderID     uuid.UUID
	OrderNumber string
	Totals      pricing.Totals
}

// Service turns carts into persisted quote orders and serves order reads.
type Service interface {
	Submit(ctx context.Context, submitter Submitter, input SubmitInput) (*SubmitResult, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, *pagination.Cursor, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	AdminList(ctx context.Context, params pagination.Params) ([]models.Order, *pagination.Cursor, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartAccess interface {
	Get(ctx context.Context, userID uuid.UUID) (*cart.Aggregate, pricing.Totals, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo    Repository
	ledger  discounts.Repository
	carts   cartAccess
	tx      txRunner
	emitter eventEmitter
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the order service backed by the provided stack.
func NewService(repo Repository, ledger discounts.Repository, carts cartAccess, tx txRunner, emitter eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("discount ledger required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart access required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		ledger:  ledger,
		carts:   carts,
		tx:      tx,
		emitter: emitter,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Submit freezes the caller's cart into an Order plus immutable items.
//
// The discount-use increment, the order insert and the outbox emit are one
// transaction; a failed conditional increment aborts the whole unit so an
// exhausted code never produces an order. The usage-ledger write and the cart
// clear run after commit and are best-effort only.
func (s *service) Submit(ctx context.Context, submitter Submitter, input SubmitInput) (*SubmitResult, error) {
	if submitter.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to submit a quote request")
	}
	if !submitter.Approved && !submitter.Admin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is not approved for quote requests")
	}
	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}

	agg, totals, err := s.carts.Get(ctx, submitter.UserID)
	if err != nil {
		return nil, err
	}
	if agg.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	var order *models.Order
	for attempt := 0; ; attempt++ {
		number, err := GenerateOrderNumber(s.now())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating order number")
		}
		order = buildOrder(submitter.UserID, number, input, agg, totals)

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if agg.AppliedDiscount != nil {
				consumed, err := s.ledger.WithTx(tx).ConsumeUse(ctx, agg.AppliedDiscount.ID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consuming discount use")
				}
				if !consumed {
					return pkgerrors.New(pkgerrors.CodeConflict, "discount code is no longer valid")
				}
			}
			if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
				return err
			}
			return s.emitter.Emit(ctx, tx, orderCreatedEvent(submitter.UserID, order, totals))
		})
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err, "ux_orders_order_number") && attempt < maxNumberAttempts-1 {
			continue
		}
		if coded := pkgerrors.As(err); coded != nil {
			return nil, coded
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "submitting order")
	}

	ctx = s.logg.WithOrderNumber(s.logg.WithUserID(ctx, submitter.UserID.String()), order.OrderNumber)

	if agg.AppliedDiscount != nil {
		usage := &models.DiscountCodeUsage{
			ID:             uuid.New(),
			UserID:         submitter.UserID,
			DiscountCodeID: agg.AppliedDiscount.ID,
			OrderID:        order.ID,
		}
		if err := s.ledger.RecordUsage(ctx, usage); err != nil {
			// under-counts the redemption, never the order
			s.logg.Error(ctx, "recording discount usage failed", err)
		}
	}

	if err := s.carts.Clear(ctx, submitter.UserID); err != nil {
		s.logg.Error(ctx, "clearing cart after submission failed", err)
	}

	s.logg.Info(ctx, "quote order submitted")

	return &SubmitResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Totals:      totals,
	}, nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, *pagination.Cursor, error) {
	orders, next, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return orders, next, nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) AdminList(ctx context.Context, params pagination.Params) ([]models.Order, *pagination.Cursor, error) {
	orders, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return orders, next, nil
}

// AdminUpdateStatus moves an order through its lifecycle. Items stay frozen;
// cancelled orders accept no further transitions.
func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.AdminGet(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cancelled orders cannot change status")
	}

	oldStatus := order.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, orderID, status); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Recipient:   order.UserID,
				OldStatus:   oldStatus,
				NewStatus:   status,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}

	order.Status = status
	return order, nil
}

func buildOrder(userID uuid.UUID, number string, input SubmitInput, agg *cart.Aggregate, totals pricing.Totals) *models.Order {
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		OrderNumber:    number,
		Status:         enums.OrderStatusPending,
		TotalAmount:    totals.NetTotal,
		DiscountAmount: totals.CodeDiscount,

		BillingName:    strings.TrimSpace(input.BillingName),
		BillingEmail:   strings.TrimSpace(input.BillingEmail),
		BillingPhone:   strings.TrimSpace(input.BillingPhone),
		BillingStreet:  strings.TrimSpace(input.BillingStreet),
		BillingZip:     strings.TrimSpace(input.BillingZip),
		BillingCity:    strings.TrimSpace(input.BillingCity),
		BillingCountry: strings.TrimSpace(input.BillingCountry),

		UseDifferentShipping: input.UseDifferentShipping,
		Notes:                input.Notes,
	}
	if input.UseDifferentShipping {
		order.ShippingName = strings.TrimSpace(input.ShippingName)
		order.ShippingStreet = strings.TrimSpace(input.ShippingStreet)
		order.ShippingZip = strings.TrimSpace(input.ShippingZip)
		order.ShippingCity = strings.TrimSpace(input.ShippingCity)
		order.ShippingCountry = strings.TrimSpace(input.ShippingCountry)
	}
	if agg.AppliedDiscount != nil {
		codeID := agg.AppliedDiscount.ID
		order.DiscountCodeID = &codeID
	}

	for _, line := range totals.Lines {
		item := models.OrderItem{
			ID:                 uuid.New(),
			OrderID:            order.ID,
			ProductName:        line.Name,
			Quantity:           line.Quantity,
			UnitPrice:          line.UnitPrice,
			OriginalUnitPrice:  line.OriginalUnitPrice,
			DiscountPercentage: line.DiscountPercentage,
			TotalPrice:         line.LineNet,
		}
		if line.IsVehicle {
			item.ProductName = vehicleNamePrefix + line.Name
		} else {
			productID := line.ID
			item.ProductID = &productID
		}
		order.Items = append(order.Items, item)
	}
	return order
}

func orderCreatedEvent(userID uuid.UUID, order *models.Order, totals pricing.Totals) outbox.DomainEvent {
	items := make([]payloads.OrderCreatedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, payloads.OrderCreatedItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			TotalPrice:  item.TotalPrice.StringFixed(2),
		})
	}
	return outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: userID, Role: "customer"},
		Data: payloads.OrderCreatedEvent{
			OrderID:        order.ID,
			OrderNumber:    order.OrderNumber,
			Recipient:      userID,
			Items:          items,
			NetTotal:       totals.NetTotal.StringFixed(2),
			TaxTotal:       totals.TaxTotal.StringFixed(2),
			GrossTotal:     totals.GrossTotal.StringFixed(2),
			CodeDiscount:   totals.CodeDiscount.StringFixed(2),
			DiscountCodeID: order.DiscountCodeID,
		},
		Version: 1,
	}
}

func validateSubmitInput(input SubmitInput) error {
	required := map[string]string{
		"billing name":    input.BillingName,
		"billing email":   input.BillingEmail,
		"billing street":  input.BillingStreet,
		"billing zip":     input.BillingZip,
		"billing city":    input.BillingCity,
		"billing country": input.BillingCountry,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
		}
	}
	if !hasFullName(input.BillingName) {
		return pkgerrors.New(pkgerrors.CodeValidation, "billing name must include first and last name")
	}

	if input.UseDifferentShipping {
		required := map[string]string{
			"shipping name":    input.ShippingName,
			"shipping street":  input.ShippingStreet,
			"shipping zip":     input.ShippingZip,
			"shipping city":    input.ShippingCity,
			"shipping country": input.ShippingCountry,
		}
		for field, value := range required {
			if strings.TrimSpace(value) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
			}
		}
		if !hasFullName(input.ShippingName) {
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping name must include first and last name")
		}
	}
	return nil
}

func hasFullName(name string) bool {
	return len(strings.Fields(name)) >= 2
}
