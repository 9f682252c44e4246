package gerr

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	OrderNotFound     = status.Error(codes.NotFound, "order not found")
	ProductNotFound   = status.Error(codes.NotFound, "product not found")
	InsufficientStock = status.Error(codes.FailedPrecondition, "insufficient stock")
	InvalidStatus     = status.Error(codes.InvalidArgument, "invalid order status")
	EmptyOrder        = status.Error(codes.InvalidArgument, "order has no items")
)
