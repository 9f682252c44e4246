package mocks

import (
	"context"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	mock "github.com/stretchr/testify/mock"
)

// Analytics is a mock type for the Analytics type
type Analytics struct {
	mock.Mock
}

type Analytics_Expecter struct {
	mock *mock.Mock
}

func (_m *Analytics) EXPECT() *Analytics_Expecter {
	return &Analytics_Expecter{mock: &_m.Mock}
}

// SalesSeries provides a mock function with given fields: ctx, q
func (_m *Analytics) SalesSeries(ctx context.Context, q entity.SalesSeriesQuery) ([]entity.SalesSeriesRow, error) {
	ret := _m.Called(ctx, q)

	var r0 []entity.SalesSeriesRow
	if rf, ok := ret.Get(0).(func(context.Context, entity.SalesSeriesQuery) []entity.SalesSeriesRow); ok {
		r0 = rf(ctx, q)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]entity.SalesSeriesRow)
	}
	return r0, ret.Error(1)
}

type Analytics_SalesSeries_Call struct {
	*mock.Call
}

func (_e *Analytics_Expecter) SalesSeries(ctx interface{}, q interface{}) *Analytics_SalesSeries_Call {
	return &Analytics_SalesSeries_Call{Call: _e.mock.On("SalesSeries", ctx, q)}
}

func (_c *Analytics_SalesSeries_Call) Return(_a0 []entity.SalesSeriesRow, _a1 error) *Analytics_SalesSeries_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *Analytics_SalesSeries_Call) Once() *Analytics_SalesSeries_Call {
	_c.Call.Once()
	return _c
}

// SalesSeriesVersion provides a mock function with given fields: ctx, q
func (_m *Analytics) SalesSeriesVersion(ctx context.Context, q entity.SalesSeriesQuery) (string, error) {
	ret := _m.Called(ctx, q)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, entity.SalesSeriesQuery) string); ok {
		r0 = rf(ctx, q)
	} else {
		r0 = ret.String(0)
	}
	return r0, ret.Error(1)
}

type Analytics_SalesSeriesVersion_Call struct {
	*mock.Call
}

func (_e *Analytics_Expecter) SalesSeriesVersion(ctx interface{}, q interface{}) *Analytics_SalesSeriesVersion_Call {
	return &Analytics_SalesSeriesVersion_Call{Call: _e.mock.On("SalesSeriesVersion", ctx, q)}
}

func (_c *Analytics_SalesSeriesVersion_Call) Return(_a0 string, _a1 error) *Analytics_SalesSeriesVersion_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *Analytics_SalesSeriesVersion_Call) Once() *Analytics_SalesSeriesVersion_Call {
	_c.Call.Once()
	return _c
}

// NewAnalytics creates a new instance of Analytics. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewAnalytics(t interface {
	mock.TestingT
	Cleanup(func())
}) *Analytics {
	m := &Analytics{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
