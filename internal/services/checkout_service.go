package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storecart/internal/domain"
	applog "storecart/internal/log"
)

// NoAddress is written as the shipping address when the buyer has none.
const NoAddress = "No address on file"

var (
	ErrEmptyCart      = errors.New("cart is empty, nothing to checkout")
	ErrOrderWrite     = errors.New("order write failed")
	ErrCartNotCleared = errors.New("order placed but cart not cleared")
)

type OrderWriter interface {
	Create(ctx context.Context, o domain.Order) error
	MarkForReconciliation(ctx context.Context, orderID string) error
}

// AddressBook returns sql.ErrNoRows when the user has no address.
type AddressBook interface {
	Address(ctx context.Context, userID string) (domain.Address, error)
}

type Notifier interface {
	Notify(ctx context.Context, o domain.Order) error
}

// CheckoutService turns a cart into an order: validate user, resolve address,
// total, write order, clear cart, notify. Nothing is retried. A cart that
// cannot be cleared after the order is written leaves the order marked
// needs_reconciliation; a failed notification is only logged.
type CheckoutService struct {
	Orders    OrderWriter
	Addresses AddressBook
	Notifier  Notifier // optional
	NewID     func() string
}

func NewCheckoutService(orders OrderWriter, addresses AddressBook, notifier Notifier) *CheckoutService {
	return &CheckoutService{Orders: orders, Addresses: addresses, Notifier: notifier, NewID: uuid.NewString}
}

type CheckoutResult struct {
	OrderID     string          `json:"order_id,omitempty"`
	Total       decimal.Decimal `json:"total"`
	ShipTo      string          `json:"ship_to,omitempty"`
	State       CheckoutState   `json:"state"`
	Trace       []CheckoutState `json:"trace"`
	Reconcile   bool            `json:"needs_reconciliation,omitempty"`
	NotifyError string          `json:"notify_error,omitempty"`
}

type saga struct {
	res *CheckoutResult
}

func (s *saga) to(next CheckoutState) error {
	if !CanTransitionTo(s.res.State, next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.res.State, next)
	}
	s.res.State = next
	s.res.Trace = append(s.res.Trace, next)
	return nil
}

func (s *saga) abort(userID string, err error) (CheckoutResult, error) {
	step := s.res.State
	_ = s.to(StateAborted)
	applog.Error(nil, "checkout.abort", err, map[string]any{
		"user_id":  userID,
		"step":     step.String(),
		"order_id": s.res.OrderID,
	})
	return *s.res, err
}

// Run executes the saga. lines is read once the user and address are settled
// and supplies the lines to order; clear empties them from the cart's store
// once the order is committed.
func (s *CheckoutService) Run(ctx context.Context, user *domain.User, lines func(context.Context) ([]domain.LineItem, error), clear func(context.Context) error) (CheckoutResult, error) {
	run := &saga{res: &CheckoutResult{State: StateIdle, Trace: []CheckoutState{StateIdle}}}

	if err := run.to(StateValidatingUser); err != nil {
		return *run.res, err
	}
	if user == nil || user.ID == "" {
		return run.abort("", ErrNotAuthenticated)
	}

	if err := run.to(StateFetchingAddress); err != nil {
		return *run.res, err
	}
	order := domain.Order{
		UserID:       user.ID,
		Status:       domain.OrderStatusPending,
		ShipTo:       NoAddress,
		ContactName:  user.Name,
		ContactEmail: user.Email,
	}
	if s.Addresses != nil {
		addr, err := s.Addresses.Address(ctx, user.ID)
		switch {
		case err == nil:
			if line := addr.String(); line != "" {
				order.ShipTo = line
			}
			if addr.Name != "" {
				order.ContactName = addr.Name
			}
			if addr.Email != "" {
				order.ContactEmail = addr.Email
			}
			order.ContactPhone = addr.Phone
		case errors.Is(err, sql.ErrNoRows):
			applog.Info(nil, "checkout.address.missing", map[string]any{"user_id": user.ID})
		default:
			return run.abort(user.ID, fmt.Errorf("fetch address: %w", err))
		}
	}
	run.res.ShipTo = order.ShipTo

	if err := run.to(StateComputingTotal); err != nil {
		return *run.res, err
	}
	items, err := lines(ctx)
	if err != nil {
		return run.abort(user.ID, fmt.Errorf("read cart: %w", err))
	}
	if len(items) == 0 {
		return run.abort(user.ID, ErrEmptyCart)
	}
	order.Lines = make([]domain.OrderLine, 0, len(items))
	for _, it := range items {
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID: it.ProductID,
			Title:     it.Title,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: it.Subtotal().Round(2),
			SellerID:  it.SellerID,
		})
	}
	order.Total = domain.Total(items)
	run.res.Total = order.Total

	if err := run.to(StateWritingOrder); err != nil {
		return *run.res, err
	}
	order.ID = s.NewID()
	if err := s.Orders.Create(ctx, order); err != nil {
		return run.abort(user.ID, fmt.Errorf("%w: %w", ErrOrderWrite, err))
	}
	run.res.OrderID = order.ID
	applog.Audit(nil, "checkout.order.created", map[string]any{
		"user_id":  user.ID,
		"order_id": order.ID,
		"total":    order.Total.StringFixed(2),
		"lines":    len(order.Lines),
	})

	if err := run.to(StateClearingCart); err != nil {
		return *run.res, err
	}
	if err := clear(ctx); err != nil {
		run.res.Reconcile = true
		if merr := s.Orders.MarkForReconciliation(ctx, order.ID); merr != nil {
			applog.Error(nil, "checkout.reconcile.mark.fail", merr, map[string]any{"order_id": order.ID})
		}
		return run.abort(user.ID, fmt.Errorf("%w: %w", ErrCartNotCleared, err))
	}

	if s.Notifier != nil {
		if err := run.to(StateNotifying); err != nil {
			return *run.res, err
		}
		if err := s.Notifier.Notify(ctx, order); err != nil {
			run.res.NotifyError = err.Error()
			applog.Warn(nil, "checkout.notify.fail", err, map[string]any{"order_id": order.ID})
		}
	}

	if err := run.to(StateDone); err != nil {
		return *run.res, err
	}
	return *run.res, nil
}
