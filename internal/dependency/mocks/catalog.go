package mocks

import (
	"context"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	mock "github.com/stretchr/testify/mock"
)

// Catalog is a mock type for the Catalog type
type Catalog struct {
	mock.Mock
}

type Catalog_Expecter struct {
	mock *mock.Mock
}

func (_m *Catalog) EXPECT() *Catalog_Expecter {
	return &Catalog_Expecter{mock: &_m.Mock}
}

// GetCategories provides a mock function with given fields: ctx
func (_m *Catalog) GetCategories(ctx context.Context) ([]entity.Category, error) {
	ret := _m.Called(ctx)

	var r0 []entity.Category
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]entity.Category)
	}
	return r0, ret.Error(1)
}

type Catalog_GetCategories_Call struct {
	*mock.Call
}

func (_e *Catalog_Expecter) GetCategories(ctx interface{}) *Catalog_GetCategories_Call {
	return &Catalog_GetCategories_Call{Call: _e.mock.On("GetCategories", ctx)}
}

func (_c *Catalog_GetCategories_Call) Return(_a0 []entity.Category, _a1 error) *Catalog_GetCategories_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *Catalog_GetCategories_Call) Once() *Catalog_GetCategories_Call {
	_c.Call.Once()
	return _c
}

// CategoriesVersion provides a mock function with given fields: ctx
func (_m *Catalog) CategoriesVersion(ctx context.Context) (string, error) {
	ret := _m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

type Catalog_CategoriesVersion_Call struct {
	*mock.Call
}

func (_e *Catalog_Expecter) CategoriesVersion(ctx interface{}) *Catalog_CategoriesVersion_Call {
	return &Catalog_CategoriesVersion_Call{Call: _e.mock.On("CategoriesVersion", ctx)}
}

func (_c *Catalog_CategoriesVersion_Call) Return(_a0 string, _a1 error) *Catalog_CategoriesVersion_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *Catalog_CategoriesVersion_Call) Once() *Catalog_CategoriesVersion_Call {
	_c.Call.Once()
	return _c
}

// GetProductsForCategory provides a mock function with given fields: ctx, categoryID
func (_m *Catalog) GetProductsForCategory(ctx context.Context, categoryID *int) ([]entity.ProductRef, error) {
	ret := _m.Called(ctx, categoryID)

	var r0 []entity.ProductRef
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]entity.ProductRef)
	}
	return r0, ret.Error(1)
}

type Catalog_GetProductsForCategory_Call struct {
	*mock.Call
}

func (_e *Catalog_Expecter) GetProductsForCategory(ctx interface{}, categoryID interface{}) *Catalog_GetProductsForCategory_Call {
	return &Catalog_GetProductsForCategory_Call{Call: _e.mock.On("GetProductsForCategory", ctx, categoryID)}
}

func (_c *Catalog_GetProductsForCategory_Call) Return(_a0 []entity.ProductRef, _a1 error) *Catalog_GetProductsForCategory_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *Catalog_GetProductsForCategory_Call) Once() *Catalog_GetProductsForCategory_Call {
	_c.Call.Once()
	return _c
}

// ProductsVersion provides a mock function with given fields: ctx, categoryID
func (_m *Catalog) ProductsVersion(ctx context.Context, categoryID *int) (string, error) {
	ret := _m.Called(ctx, categoryID)
	return ret.String(0), ret.Error(1)
}

type Catalog_ProductsVersion_Call struct {
	*mock.Call
}

func (_e *Catalog_Expecter) ProductsVersion(ctx interface{}, categoryID interface{}) *Catalog_ProductsVersion_Call {
	return &Catalog_ProductsVersion_Call{Call: _e.mock.On("ProductsVersion", ctx, categoryID)}
}

func (_c *Catalog_ProductsVersion_Call) Return(_a0 string, _a1 error) *Catalog_ProductsVersion_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *Catalog_ProductsVersion_Call) Once() *Catalog_ProductsVersion_Call {
	_c.Call.Once()
	return _c
}

// NewCatalog creates a new instance of Catalog. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCatalog(t interface {
	mock.TestingT
	Cleanup(func())
}) *Catalog {
	m := &Catalog{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
