// Package respond writes JSON responses and maps domain errors to HTTP.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("can't encode response",
			slog.String("err", err.Error()),
		)
	}
}

// Error writes err. Domain errors carry a grpc status and map to the matching
// HTTP code with their own message. Anything else is logged under msg and
// reported as a 500 with msg as the only detail.
func Error(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		st := se.GRPCStatus()
		if st.Code() != codes.Unknown && st.Code() != codes.Internal {
			JSON(w, runtime.HTTPStatusFromCode(st.Code()), errorBody{Error: st.Message()})
			return
		}
	}
	slog.Default().ErrorContext(ctx, msg,
		slog.String("err", err.Error()),
	)
	JSON(w, http.StatusInternalServerError, errorBody{Error: msg})
}

// BadRequest reports a malformed request.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
