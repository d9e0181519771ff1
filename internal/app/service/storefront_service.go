package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/app/repository"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/ikkim/vitrine-backend/internal/checkout"
	"github.com/ikkim/vitrine-backend/internal/storefront"
	"github.com/ikkim/vitrine-backend/pkg/logger"
	"github.com/ikkim/vitrine-backend/pkg/metrics"
	"github.com/ikkim/vitrine-backend/pkg/util"
)

// lockStripes bounds the number of session mutexes. Two sessions may share
// a stripe; one session always maps to the same one.
const lockStripes = 256

type SessionInfo struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EffectPublisher pushes command effects to the live connections of a
// session.
type EffectPublisher interface {
	Publish(sessionID string, effects []storefront.Effect)
}

type StorefrontService interface {
	CreateSession(ctx context.Context) (*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SweepIdle(ctx context.Context) (int, error)

	Grid(ctx context.Context, sessionID string) (storefront.GridView, error)
	Cart(ctx context.Context, sessionID string) (storefront.CartView, error)
	Modal(ctx context.Context, sessionID string) (*storefront.ModalView, error)
	CheckoutLink(ctx context.Context, sessionID string) (string, error)

	SetFilter(ctx context.Context, sessionID, filter string) ([]storefront.Effect, error)
	Search(ctx context.Context, sessionID, term string) ([]storefront.Effect, error)
	QuickAdd(ctx context.Context, sessionID string, productID model.ProductID) ([]storefront.Effect, error)
	OpenProduct(ctx context.Context, sessionID string, productID model.ProductID) ([]storefront.Effect, error)
	SelectTier(ctx context.Context, sessionID string, index int) ([]storefront.Effect, error)
	SelectSlot(ctx context.Context, sessionID string, slot int, optionID string) ([]storefront.Effect, error)
	StepQty(ctx context.Context, sessionID string, delta int) ([]storefront.Effect, error)
	Commit(ctx context.Context, sessionID string) ([]storefront.Effect, error)
	CloseModal(ctx context.Context, sessionID string) ([]storefront.Effect, error)
	AdjustCartLine(ctx context.Context, sessionID, key string, delta int) ([]storefront.Effect, error)
	SetCartLineQty(ctx context.Context, sessionID, key string, qty int) ([]storefront.Effect, error)
	RemoveCartLine(ctx context.Context, sessionID, key string) ([]storefront.Effect, error)
	ClearCart(ctx context.Context, sessionID string) ([]storefront.Effect, error)
	SetCheckoutFields(ctx context.Context, sessionID string, fields checkout.Fields) ([]storefront.Effect, error)
	Send(ctx context.Context, sessionID string) ([]storefront.Effect, error)
}

type StorefrontOptions struct {
	Secret    string
	TokenTTL  time.Duration
	IdleTTL   time.Duration
	Publisher EffectPublisher
	Metrics   *metrics.StorefrontMetrics
}

type storefrontService struct {
	sessions  repository.SessionRepository
	ctrl      *storefront.Controller
	publisher EffectPublisher
	metrics   *metrics.StorefrontMetrics
	secret    string
	tokenTTL  time.Duration
	idleTTL   time.Duration
	locks     [lockStripes]sync.Mutex
}

func NewStorefrontService(
	sessions repository.SessionRepository,
	ctrl *storefront.Controller,
	opts StorefrontOptions,
) StorefrontService {
	return &storefrontService{
		sessions:  sessions,
		ctrl:      ctrl,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		secret:    opts.Secret,
		tokenTTL:  opts.TokenTTL,
		idleTTL:   opts.IdleTTL,
	}
}

func (s *storefrontService) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *storefrontService) CreateSession(ctx context.Context) (*SessionInfo, error) {
	id := uuid.NewString()
	if err := s.save(ctx, id, storefront.NewState(), time.Time{}); err != nil {
		logger.Error("Failed to create session", err)
		return nil, err
	}

	token, err := util.GenerateSessionToken(id, s.secret, s.tokenTTL)
	if err != nil {
		logger.Error("Failed to sign session token", err, map[string]interface{}{
			"session_id": id,
		})
		return nil, err
	}

	s.metrics.IncSessionsCreated()
	logger.Info("Session created", map[string]interface{}{
		"session_id": id,
	})
	return &SessionInfo{SessionID: id, Token: token, ExpiresAt: time.Now().Add(s.tokenTTL)}, nil
}

func (s *storefrontService) DeleteSession(ctx context.Context, sessionID string) error {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()
	return s.sessions.Delete(ctx, sessionID)
}

// SweepIdle drops sessions idle for longer than the configured TTL.
func (s *storefrontService) SweepIdle(ctx context.Context) (int, error) {
	removed, err := s.sessions.DeleteIdle(ctx, time.Now().Add(-s.idleTTL))
	if err != nil {
		logger.Error("Failed to sweep idle sessions", err)
		return 0, err
	}
	s.metrics.AddSessionsSwept(removed)
	if removed > 0 {
		logger.Info("Idle sessions swept", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed, nil
}

// load returns the restored state and the session's creation time.
func (s *storefrontService) load(ctx context.Context, sessionID string) (*storefront.State, time.Time, error) {
	stored, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		return nil, time.Time{}, err
	}
	var snap storefront.Snapshot
	if err := json.Unmarshal(stored.Data, &snap); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return storefront.Restore(s.ctrl.Catalog(), snap), stored.CreatedAt, nil
}

// save keeps createdAt; a zero value marks a new session.
func (s *storefrontService) save(ctx context.Context, sessionID string, st *storefront.State, createdAt time.Time) error {
	data, err := json.Marshal(st.Snapshot())
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	return s.sessions.Save(ctx, &model.Session{ID: sessionID, Data: data, CreatedAt: createdAt})
}

// view runs fn against a read-only copy of the session state.
func (s *storefrontService) view(ctx context.Context, sessionID string, fn func(st *storefront.State)) error {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	st, _, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	fn(st)
	return nil
}

// execute is the single path for commands: load, apply, save, publish.
// The state is saved even when the command fails so the idle deadline
// moves; effects of a failed command (toasts) are still published.
func (s *storefrontService) execute(
	ctx context.Context,
	sessionID, command string,
	fn func(st *storefront.State) ([]storefront.Effect, error),
) ([]storefront.Effect, error) {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	st, createdAt, err := s.load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			logger.Error("Failed to load session", err, map[string]interface{}{
				"session_id": sessionID,
				"command":    command,
			})
		}
		return nil, err
	}

	effects, cmdErr := fn(st)

	if err := s.save(ctx, sessionID, st, createdAt); err != nil {
		logger.Error("Failed to save session", err, map[string]interface{}{
			"session_id": sessionID,
			"command":    command,
		})
		return nil, err
	}

	if len(effects) > 0 && s.publisher != nil {
		s.publisher.Publish(sessionID, effects)
	}

	logger.Debug("Storefront command applied", map[string]interface{}{
		"session_id": sessionID,
		"command":    command,
		"effects":    len(effects),
		"failed":     cmdErr != nil,
	})
	if effects == nil {
		effects = []storefront.Effect{}
	}
	return effects, cmdErr
}

func (s *storefrontService) Grid(ctx context.Context, sessionID string) (storefront.GridView, error) {
	var view storefront.GridView
	err := s.view(ctx, sessionID, func(st *storefront.State) {
		view = s.ctrl.Grid(st)
	})
	return view, err
}

func (s *storefrontService) Cart(ctx context.Context, sessionID string) (storefront.CartView, error) {
	var view storefront.CartView
	err := s.view(ctx, sessionID, func(st *storefront.State) {
		view = s.ctrl.Cart(st)
	})
	return view, err
}

func (s *storefrontService) Modal(ctx context.Context, sessionID string) (*storefront.ModalView, error) {
	var view *storefront.ModalView
	err := s.view(ctx, sessionID, func(st *storefront.State) {
		view = s.ctrl.Modal(st)
	})
	return view, err
}

func (s *storefrontService) CheckoutLink(ctx context.Context, sessionID string) (string, error) {
	var link string
	err := s.view(ctx, sessionID, func(st *storefront.State) {
		link = s.ctrl.CheckoutLink(st)
	})
	return link, err
}

func (s *storefrontService) SetFilter(ctx context.Context, sessionID, filter string) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "filter", func(st *storefront.State) ([]storefront.Effect, error) {
		return s.ctrl.OnFilterChange(st, filter), nil
	})
}

func (s *storefrontService) Search(ctx context.Context, sessionID, term string) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "search", func(st *storefront.State) ([]storefront.Effect, error) {
		return s.ctrl.OnSearch(st, term), nil
	})
}

func (s *storefrontService) QuickAdd(ctx context.Context, sessionID string, productID model.ProductID) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "quick_add", func(st *storefront.State) ([]storefront.Effect, error) {
		p := s.ctrl.Catalog().Find(productID)
		if p == nil {
			return nil, catalog.ErrProductNotFound
		}
		effects := s.ctrl.OnQuickAdd(st, productID)
		if !p.IsBox && len(effects) > 0 {
			s.metrics.AddCartUnits("quick_add", 1)
		}
		return effects, nil
	})
}

func (s *storefrontService) OpenProduct(ctx context.Context, sessionID string, productID model.ProductID) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "open_product", func(st *storefront.State) ([]storefront.Effect, error) {
		if s.ctrl.Catalog().Find(productID) == nil {
			return nil, catalog.ErrProductNotFound
		}
		return s.ctrl.OnOpenProduct(st, productID), nil
	})
}

func (s *storefrontService) SelectTier(ctx context.Context, sessionID string, index int) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "select_tier", func(st *storefront.State) ([]storefront.Effect, error) {
		if st.Modal == nil {
			return nil, storefront.ErrModalClosed
		}
		return s.ctrl.OnTierSelect(st, index), nil
	})
}

func (s *storefrontService) SelectSlot(ctx context.Context, sessionID string, slot int, optionID string) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "select_slot", func(st *storefront.State) ([]storefront.Effect, error) {
		if st.Modal == nil {
			return nil, storefront.ErrModalClosed
		}
		return s.ctrl.OnSlotSelect(st, slot, optionID), nil
	})
}

func (s *storefrontService) StepQty(ctx context.Context, sessionID string, delta int) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "step_qty", func(st *storefront.State) ([]storefront.Effect, error) {
		if st.Modal == nil {
			return nil, storefront.ErrModalClosed
		}
		return s.ctrl.OnQtyStep(st, delta), nil
	})
}

func (s *storefrontService) Commit(ctx context.Context, sessionID string) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "commit", func(st *storefront.State) ([]storefront.Effect, error) {
		qty := 0
		if st.Modal != nil {
			qty = st.Modal.Qty()
		}
		effects, err := s.ctrl.OnCommit(st)
		if err == nil {
			s.metrics.AddCartUnits("modal", qty)
		}
		return effects, err
	})
}

func (s *storefrontService) CloseModal(ctx context.Context, sessionID string) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "close_modal", func(st *storefront.State) ([]storefront.Effect, error) {
		return s.ctrl.OnCloseModal(st), nil
	})
}

func (s *storefrontService) AdjustCartLine(ctx context.Context, sessionID, key string, delta int) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "cart_adjust", func(st *storefront.State) ([]storefront.Effect, error) {
		return s.ctrl.OnCartAdjust(st, key, delta), nil
	})
}

func (s *storefrontService) SetCartLineQty(ctx context.Context, sessionID, key string, qty int) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "cart_set_qty", func(st *storefront.State) ([]storefront.Effect, error) {
		return s.ctrl.OnCartSetQty(st, key, qty), nil
	})
}

func (s *storefrontService) RemoveCartLine(ctx context.Context, sessionID, key string) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "cart_remove", func(st *storefront.State) ([]storefront.Effect, error) {
		return s.ctrl.OnCartRemove(st, key), nil
	})
}

func (s *storefrontService) ClearCart(ctx context.Context, sessionID string) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "cart_clear", func(st *storefront.State) ([]storefront.Effect, error) {
		return s.ctrl.OnCartClear(st), nil
	})
}

func (s *storefrontService) SetCheckoutFields(ctx context.Context, sessionID string, fields checkout.Fields) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "checkout_fields", func(st *storefront.State) ([]storefront.Effect, error) {
		return s.ctrl.OnCheckoutFields(st, fields), nil
	})
}

func (s *storefrontService) Send(ctx context.Context, sessionID string) ([]storefront.Effect, error) {
	return s.execute(ctx, sessionID, "send", func(st *storefront.State) ([]storefront.Effect, error) {
		effects, err := s.ctrl.OnSend(st)
		switch {
		case err == nil:
			s.metrics.IncCheckoutSend("ok")
			logger.Info("Order link issued", map[string]interface{}{
				"session_id": sessionID,
				"lines":      st.Cart.Len(),
				"units":      st.Cart.TotalQty(),
			})
		case errors.Is(err, checkout.ErrCartEmpty):
			s.metrics.IncCheckoutSend("cart_empty")
		default:
			s.metrics.IncCheckoutSend("fields_required")
		}
		return effects, err
	})
}
