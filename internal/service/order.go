package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pharmacy/pkg/logging"

	"github.com/Skotchmaster/pharmacy/internal/events"
	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/repo"
	"github.com/Skotchmaster/pharmacy/internal/transport"
)

type OrderService struct {
	Repo    *repo.GormRepo
	Events  events.Publisher
	Pricing Pricing
	Now     func() time.Time
}

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// NewOrderNumber renders ORD-YYYYMMDD-XXXXXX with a random suffix.
func NewOrderNumber(at time.Time) (string, error) {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = orderNumberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), suffix), nil
}

func (s *OrderService) orderNumber(ctx context.Context, tx *repo.GormRepo) (string, error) {
	for i := 0; i < 5; i++ {
		n, err := NewOrderNumber(s.now())
		if err != nil {
			return "", err
		}
		taken, err := tx.OrderNumberTaken(ctx, n)
		if err != nil {
			return "", err
		}
		if !taken {
			return n, nil
		}
	}
	return "", errors.New("could not allocate an order number")
}

// Checkout turns the cart into an order in a single transaction.
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, req transport.CheckoutRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout")

	method := models.PaymentMethod(req.PaymentMethod)
	if method != models.PaymentCOD && method != models.PaymentOnline {
		return nil, fmt.Errorf("%w: unknown payment method", ErrValidation)
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if !user.IsVerified {
		return nil, fmt.Errorf("%w: verify your email before ordering", ErrForbidden)
	}

	var order *models.Order
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.GetCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return fmt.Errorf("%w: cart is empty", ErrValidation)
		}

		needsRx := false
		for _, it := range cart {
			if it.Product == nil || !it.Product.IsActive {
				return fmt.Errorf("%w: a product in the cart is no longer available", ErrValidation)
			}
			needsRx = needsRx || it.Product.RequiresPrescription
		}

		var rxID *uuid.UUID
		if needsRx {
			if err := s.checkPrescription(ctx, tx, userID, req.PrescriptionID); err != nil {
				return err
			}
			rxID = req.PrescriptionID
		}

		items := make([]models.OrderItem, 0, len(cart))
		var subtotal int64
		for _, it := range cart {
			ok, err := tx.AdjustStock(ctx, it.ProductID, -it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: only %d of %s left", ErrInsufficientStock, it.Product.Stock, it.Product.Name)
			}
			line := it.Product.Price * int64(it.Quantity)
			subtotal += line
			items = append(items, models.OrderItem{
				ProductID: it.ProductID,
				Name:      it.Product.Name,
				UnitPrice: it.Product.Price,
				Quantity:  it.Quantity,
				LineTotal: line,
			})
		}

		number, err := s.orderNumber(ctx, tx)
		if err != nil {
			return err
		}
		fee := s.Pricing.Shipping(subtotal)
		order = &models.Order{
			OrderNumber:     number,
			UserID:          userID,
			Subtotal:        subtotal,
			ShippingFee:     fee,
			Total:           subtotal + fee,
			Status:          models.OrderStatusPending,
			PaymentMethod:   method,
			PaymentStatus:   models.PaymentPending,
			ShippingName:    req.ShippingName,
			ShippingPhone:   req.ShippingPhone,
			ShippingAddress: req.Address.Model(),
			PrescriptionID:  rxID,
			Notes:           req.Notes,
			Items:           items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		return tx.ClearCart(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	l.Info("order_placed", "order_id", order.ID, "total", order.Total)
	s.publish(ctx, order, user, events.TypeOrderPlaced, "")
	return order, nil
}

func (s *OrderService) checkPrescription(ctx context.Context, tx *repo.GormRepo, userID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return fmt.Errorf("%w: the cart contains prescription-only medicines", ErrPrescriptionRequired)
	}
	rx, err := tx.GetPrescription(ctx, *id)
	if err != nil {
		if isNotFound(notFound(err, "prescription")) {
			return fmt.Errorf("%w: prescription not found", ErrPrescriptionRequired)
		}
		return err
	}
	if rx.UserID != userID {
		return fmt.Errorf("%w: prescription not found", ErrPrescriptionRequired)
	}
	if rx.Status != models.PrescriptionApproved {
		return fmt.Errorf("%w: prescription is %s", ErrPrescriptionRequired, rx.Status)
	}
	return nil
}

func (s *OrderService) List(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, repo.OrderFilter{UserID: &userID}, offset, limit)
}

func (s *OrderService) ListAll(ctx context.Context, status string, offset, limit int) (int64, []models.Order, error) {
	st := models.OrderStatus(status)
	if st != "" && !st.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.Repo.ListOrders(ctx, repo.OrderFilter{Status: st}, offset, limit)
}

// Get returns the order to its owner or to an admin. Other users see a 404.
func (s *OrderService) Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if o.UserID != userID && !isAdmin {
		return nil, fmt.Errorf("%w: order", ErrNotFound)
	}
	return o, nil
}

func (s *OrderService) Cancel(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	o, err := s.Get(ctx, id, userID, false)
	if err != nil {
		return nil, err
	}
	if !o.Status.CustomerCancellable() {
		return nil, fmt.Errorf("%w: order is already %s", ErrConflict, o.Status)
	}
	return s.transition(ctx, o, models.OrderStatusCancelled)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	to := models.OrderStatus(status)
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if !o.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, o.Status, to)
	}
	return s.transition(ctx, o, to)
}

// transition applies the status change. Cancellation restocks and refunds
// paid orders; delivered cash-on-delivery orders become paid.
func (s *OrderService) transition(ctx context.Context, o *models.Order, to models.OrderStatus) (*models.Order, error) {
	from := o.Status
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		ok, err := tx.TransitionOrder(ctx, o.ID, from, to)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: order changed concurrently", ErrConflict)
		}
		if to == models.OrderStatusCancelled {
			if err := tx.RestockItems(ctx, o.Items); err != nil {
				return err
			}
			if o.PaymentStatus == models.PaymentPaid {
				return tx.SetPaymentStatus(ctx, o.ID, models.PaymentRefunded)
			}
			return nil
		}
		if to == models.OrderStatusDelivered && o.PaymentMethod == models.PaymentCOD && o.PaymentStatus == models.PaymentPending {
			return tx.SetPaymentStatus(ctx, o.ID, models.PaymentPaid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.Repo.GetOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	s.publishFor(ctx, updated, events.TypeOrderStatusChanged, string(from))
	return updated, nil
}

func (s *OrderService) UpdatePayment(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	ps := models.PaymentStatus(status)
	if !ps.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, status)
	}
	if err := s.Repo.SetPaymentStatus(ctx, id, ps); err != nil {
		return nil, notFound(err, "order")
	}
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	s.publishFor(ctx, o, events.TypeOrderPaymentChanged, "")
	return o, nil
}

func (s *OrderService) publishFor(ctx context.Context, o *models.Order, eventType, prev string) {
	l := logging.FromContext(ctx).With("svc", "order.publish")
	user, err := s.Repo.GetUserByID(ctx, o.UserID)
	if err != nil {
		l.Warn("order_event_without_contact", "order_id", o.ID, "error", err)
		user = &models.User{Base: models.Base{ID: o.UserID}}
	}
	s.publish(ctx, o, user, eventType, prev)
}

func (s *OrderService) publish(ctx context.Context, o *models.Order, user *models.User, eventType, prev string) {
	l := logging.FromContext(ctx).With("svc", "order.publish")
	events.PublishLogged(ctx, s.Events, l, events.TopicOrders, o.ID.String(), events.OrderEvent{
		Type:          eventType,
		OrderID:       o.ID.String(),
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		PrevStatus:    prev,
		PaymentStatus: string(o.PaymentStatus),
		Total:         o.Total,
		Contact:       contactOf(user),
	})
}
