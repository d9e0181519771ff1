package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/vitrine-backend/internal/app/repository"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/ikkim/vitrine-backend/internal/checkout"
	"github.com/ikkim/vitrine-backend/internal/selection"
	"github.com/ikkim/vitrine-backend/internal/storefront"
	"github.com/ikkim/vitrine-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "service-test-secret"

type recordingPublisher struct {
	mu        sync.Mutex
	published map[string][]storefront.Effect
}

func (p *recordingPublisher) Publish(sessionID string, effects []storefront.Effect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.published == nil {
		p.published = make(map[string][]storefront.Effect)
	}
	p.published[sessionID] = append(p.published[sessionID], effects...)
}

func (p *recordingPublisher) count(sessionID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published[sessionID])
}

func setupStorefrontServiceTest(t *testing.T) (StorefrontService, *recordingPublisher, repository.SessionRepository) {
	cat, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)

	pub := &recordingPublisher{}
	repo := repository.NewMemorySessionRepository()
	svc := NewStorefrontService(repo, storefront.NewController(cat, "212665358533"), StorefrontOptions{
		Secret:    testSecret,
		TokenTTL:  time.Hour,
		IdleTTL:   time.Hour,
		Publisher: pub,
	})
	return svc, pub, repo
}

func TestStorefrontService_CreateSession(t *testing.T) {
	svc, _, _ := setupStorefrontServiceTest(t)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, info.SessionID)

	claims, err := util.ValidateToken(info.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, info.SessionID, claims.SessionID)

	grid, err := svc.Grid(ctx, info.SessionID)
	require.NoError(t, err)
	assert.Equal(t, catalog.FilterNew, grid.Filter)
	assert.Len(t, grid.Cards, 2)
}

func TestStorefrontService_UnknownSession(t *testing.T) {
	svc, _, _ := setupStorefrontServiceTest(t)

	_, err := svc.QuickAdd(context.Background(), "nope", "3001")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	_, err = svc.Cart(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestStorefrontService_StatePersistsAcrossCommands(t *testing.T) {
	svc, pub, _ := setupStorefrontServiceTest(t)
	ctx := context.Background()
	info, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	id := info.SessionID

	effects, err := svc.QuickAdd(ctx, id, "3001")
	require.NoError(t, err)
	assert.Len(t, effects, 2)
	assert.Equal(t, 2, pub.count(id))

	_, err = svc.OpenProduct(ctx, id, "3001")
	require.NoError(t, err)
	_, err = svc.SelectTier(ctx, id, 1)
	require.NoError(t, err)
	_, err = svc.StepQty(ctx, id, 1)
	require.NoError(t, err)

	modal, err := svc.Modal(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, modal)
	assert.Equal(t, 2, modal.Qty)

	_, err = svc.Commit(ctx, id)
	require.NoError(t, err)

	view, err := svc.Cart(ctx, id)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, "3001::100G::", view.Lines[0].Key)
	assert.Equal(t, "3001::50G::", view.Lines[1].Key)
	assert.Equal(t, 3, view.Count)
	assert.Equal(t, "1040 €", view.TotalLabel)

	modal, err = svc.Modal(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, modal)
}

func TestStorefrontService_CreatedAtSurvivesCommands(t *testing.T) {
	svc, _, repo := setupStorefrontServiceTest(t)
	ctx := context.Background()
	info, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	created, err := repo.Find(ctx, info.SessionID)
	require.NoError(t, err)
	require.False(t, created.CreatedAt.IsZero())

	time.Sleep(5 * time.Millisecond)
	_, err = svc.QuickAdd(ctx, info.SessionID, "3001")
	require.NoError(t, err)

	saved, err := repo.Find(ctx, info.SessionID)
	require.NoError(t, err)
	assert.True(t, saved.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, saved.UpdatedAt.After(created.UpdatedAt))
}

func TestStorefrontService_CommandErrors(t *testing.T) {
	svc, _, _ := setupStorefrontServiceTest(t)
	ctx := context.Background()
	info, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	id := info.SessionID

	_, err = svc.OpenProduct(ctx, id, "missing")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = svc.Commit(ctx, id)
	assert.ErrorIs(t, err, storefront.ErrModalClosed)
	_, err = svc.SelectTier(ctx, id, 0)
	assert.ErrorIs(t, err, storefront.ErrModalClosed)

	_, err = svc.OpenProduct(ctx, id, "99901")
	require.NoError(t, err)
	_, err = svc.Commit(ctx, id)
	assert.ErrorIs(t, err, selection.ErrIncomplete)

	modal, err := svc.Modal(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, modal, "an incomplete box keeps the modal open")
}

func TestStorefrontService_Send(t *testing.T) {
	svc, pub, _ := setupStorefrontServiceTest(t)
	ctx := context.Background()
	info, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	id := info.SessionID

	effects, err := svc.Send(ctx, id)
	assert.ErrorIs(t, err, checkout.ErrCartEmpty)
	require.Len(t, effects, 1)
	assert.Equal(t, storefront.ToastCartEmpty, effects[0].Message)
	assert.Equal(t, 1, pub.count(id))

	_, err = svc.QuickAdd(ctx, id, "3001")
	require.NoError(t, err)
	_, err = svc.Send(ctx, id)
	assert.ErrorIs(t, err, checkout.ErrFieldsRequired)

	_, err = svc.SetCheckoutFields(ctx, id, checkout.Fields{Department: "75", Address: "Rue A", Slot: "Midi"})
	require.NoError(t, err)
	effects, err = svc.Send(ctx, id)
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.Equal(t, storefront.EffectNavigate, effects[0].Type)

	link, err := svc.CheckoutLink(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, link, effects[0].URL)

	view, err := svc.Cart(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Count, "send leaves the cart alone")
}

func TestStorefrontService_ConcurrentCommands(t *testing.T) {
	svc, _, _ := setupStorefrontServiceTest(t)
	ctx := context.Background()
	info, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.QuickAdd(ctx, info.SessionID, "3001")
		}()
	}
	wg.Wait()

	view, err := svc.Cart(ctx, info.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 20, view.Count)
}

func TestStorefrontService_SweepIdle(t *testing.T) {
	cat, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)
	repo := repository.NewMemorySessionRepository()
	svc := NewStorefrontService(repo, storefront.NewController(cat, "1"), StorefrontOptions{
		Secret:   testSecret,
		TokenTTL: time.Hour,
		IdleTTL:  -time.Hour,
	})
	ctx := context.Background()

	info, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	removed, err := svc.SweepIdle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = svc.Grid(ctx, info.SessionID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}
