package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/prodplan/pkg/config"
	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/infrastructure/repositories/memory"
)

// mapStore is an in-process Store that round-trips through JSON like Redis does
type mapStore struct {
	data    map[string][]byte
	failGet error
}

func newMapStore() *mapStore { return &mapStore{data: map[string][]byte{}} }

func (s *mapStore) Get(_ context.Context, key string, value interface{}) error {
	if s.failGet != nil {
		return s.failGet
	}
	raw, ok := s.data[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(raw, value)
}

func (s *mapStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) CacheHit()  { m.Called() }
func (m *MockObserver) CacheMiss() { m.Called() }

func seededProducts(t *testing.T) *memory.ProductRepository {
	t.Helper()
	p, err := entities.NewProduct("WIDGET", "Widget")
	require.NoError(t, err)
	step, err := entities.NewMachineStep("PRESS", decimal.RequireFromString("1.5"), 1)
	require.NoError(t, err)
	p.MachineSteps = append(p.MachineSteps, *step)
	repo := memory.NewProductRepository(1)
	require.NoError(t, repo.LoadProducts([]*entities.Product{p}))
	return repo
}

func TestProductRepository_ReadThrough(t *testing.T) {
	store := newMapStore()
	observer := new(MockObserver)
	observer.On("CacheMiss").Once()
	observer.On("CacheHit").Once()

	repo := NewProductRepository(seededProducts(t), store, time.Minute, observer)

	first, err := repo.GetProduct(context.Background(), "WIDGET")
	require.NoError(t, err)
	assert.Contains(t, store.data, "product:WIDGET")

	second, err := repo.GetProduct(context.Background(), "WIDGET")
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, second.MachineSteps, 1)
	assert.True(t, second.MachineSteps[0].CycleTimeMinutes.Equal(decimal.RequireFromString("1.5")))

	observer.AssertExpectations(t)
}

func TestProductRepository_NotFoundIsNotCached(t *testing.T) {
	store := newMapStore()
	repo := NewProductRepository(memory.NewProductRepository(0), store, time.Minute, nil)

	_, err := repo.GetProduct(context.Background(), "GHOST")
	assert.True(t, errors.Is(err, entities.ErrNotFound))
	assert.Empty(t, store.data)
}

func TestProductRepository_CacheFailureFallsBack(t *testing.T) {
	store := newMapStore()
	store.failGet = errors.New("connection reset")
	repo := NewProductRepository(seededProducts(t), store, time.Minute, nil)

	p, err := repo.GetProduct(context.Background(), "WIDGET")
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
}

func TestProductRepository_DisabledCache(t *testing.T) {
	disabled, err := NewRedisCache(config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, disabled.Enabled())
	assert.NoError(t, disabled.Close())

	repo := NewProductRepository(seededProducts(t), disabled, time.Minute, nil)
	p, err := repo.GetProduct(context.Background(), "WIDGET")
	require.NoError(t, err)
	assert.Equal(t, entities.ProductID("WIDGET"), p.ID)
}
