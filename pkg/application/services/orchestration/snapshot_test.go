package orchestration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/prodplan/pkg/application/services/fixtures"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

func TestLoadSnapshot(t *testing.T) {
	s := fixtures.NewScenario().
		WithMachine("PRESS", "2", "480", "0").
		WithMaterial("STEEL", "5", "0", 1).
		WithOrder("SO-1", "WIDGET", 5, 1)
	require.NoError(t, s.Orders.LoadOrders([]*entities.Order{{
		ID:              "DONE",
		ProductID:       "WIDGET",
		QuantityOrdered: 1,
		DeliveryDate:    fixtures.Day(1),
		Status:          entities.Completed,
	}}))

	snap, err := LoadSnapshot(context.Background(), s.Orders, s.Machines, s.Materials)
	require.NoError(t, err)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, entities.OrderID("SO-1"), snap.Orders[0].ID)
	assert.Len(t, snap.Machines, 1)
	assert.Len(t, snap.Materials, 1)
}

func TestLoadSnapshot_LeavesRepositorySliceIntact(t *testing.T) {
	s := fixtures.NewScenario().WithMachine("PRESS", "2", "480", "0")
	listed := []*entities.Order{
		{ID: "DONE", ProductID: "WIDGET", QuantityOrdered: 1, DeliveryDate: fixtures.Day(1), Status: entities.Completed},
		{ID: "SO-1", ProductID: "WIDGET", QuantityOrdered: 5, DeliveryDate: fixtures.Day(2), Status: entities.InProgress},
	}
	orders := new(MockOrderRepository)
	orders.On("ListActiveOrders", mock.Anything).Return(listed, nil)

	snap, err := LoadSnapshot(context.Background(), orders, s.Machines, s.Materials)
	require.NoError(t, err)

	require.Len(t, snap.Orders, 1)
	assert.Equal(t, entities.OrderID("SO-1"), snap.Orders[0].ID)
	assert.Equal(t, entities.OrderID("DONE"), listed[0].ID)
	assert.Equal(t, entities.OrderID("SO-1"), listed[1].ID)
	orders.AssertExpectations(t)
}
