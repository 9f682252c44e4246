package mocks

import (
	"context"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	mock "github.com/stretchr/testify/mock"
)

// Order is a mock type for the Order type
type Order struct {
	mock.Mock
}

type Order_Expecter struct {
	mock *mock.Mock
}

func (_m *Order) EXPECT() *Order_Expecter {
	return &Order_Expecter{mock: &_m.Mock}
}

// PlaceOrder provides a mock function with given fields: ctx, orderNew
func (_m *Order) PlaceOrder(ctx context.Context, orderNew *entity.OrderNew) (*entity.OrderFull, error) {
	ret := _m.Called(ctx, orderNew)

	var r0 *entity.OrderFull
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.OrderFull)
	}
	return r0, ret.Error(1)
}

type Order_PlaceOrder_Call struct {
	*mock.Call
}

func (_e *Order_Expecter) PlaceOrder(ctx interface{}, orderNew interface{}) *Order_PlaceOrder_Call {
	return &Order_PlaceOrder_Call{Call: _e.mock.On("PlaceOrder", ctx, orderNew)}
}

func (_c *Order_PlaceOrder_Call) Return(_a0 *entity.OrderFull, _a1 error) *Order_PlaceOrder_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// UpdateOrderStatus provides a mock function with given fields: ctx, orderID, status
func (_m *Order) UpdateOrderStatus(ctx context.Context, orderID int, status entity.OrderStatus) (*entity.Order, error) {
	ret := _m.Called(ctx, orderID, status)

	var r0 *entity.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.Order)
	}
	return r0, ret.Error(1)
}

type Order_UpdateOrderStatus_Call struct {
	*mock.Call
}

func (_e *Order_Expecter) UpdateOrderStatus(ctx interface{}, orderID interface{}, status interface{}) *Order_UpdateOrderStatus_Call {
	return &Order_UpdateOrderStatus_Call{Call: _e.mock.On("UpdateOrderStatus", ctx, orderID, status)}
}

func (_c *Order_UpdateOrderStatus_Call) Return(_a0 *entity.Order, _a1 error) *Order_UpdateOrderStatus_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// GetOrderById provides a mock function with given fields: ctx, orderID
func (_m *Order) GetOrderById(ctx context.Context, orderID int) (*entity.OrderFull, error) {
	ret := _m.Called(ctx, orderID)

	var r0 *entity.OrderFull
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.OrderFull)
	}
	return r0, ret.Error(1)
}

type Order_GetOrderById_Call struct {
	*mock.Call
}

func (_e *Order_Expecter) GetOrderById(ctx interface{}, orderID interface{}) *Order_GetOrderById_Call {
	return &Order_GetOrderById_Call{Call: _e.mock.On("GetOrderById", ctx, orderID)}
}

func (_c *Order_GetOrderById_Call) Return(_a0 *entity.OrderFull, _a1 error) *Order_GetOrderById_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// GetStalePendingOrders provides a mock function with given fields: ctx, olderThan
func (_m *Order) GetStalePendingOrders(ctx context.Context, olderThan time.Time) ([]entity.Order, error) {
	ret := _m.Called(ctx, olderThan)

	var r0 []entity.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]entity.Order)
	}
	return r0, ret.Error(1)
}

type Order_GetStalePendingOrders_Call struct {
	*mock.Call
}

func (_e *Order_Expecter) GetStalePendingOrders(ctx interface{}, olderThan interface{}) *Order_GetStalePendingOrders_Call {
	return &Order_GetStalePendingOrders_Call{Call: _e.mock.On("GetStalePendingOrders", ctx, olderThan)}
}

func (_c *Order_GetStalePendingOrders_Call) Return(_a0 []entity.Order, _a1 error) *Order_GetStalePendingOrders_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// NewOrder creates a new instance of Order. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrder(t interface {
	mock.TestingT
	Cleanup(func())
}) *Order {
	m := &Order{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
