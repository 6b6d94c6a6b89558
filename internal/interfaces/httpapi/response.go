package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/esports-arena/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "esports-arena"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	writeErrorWithData(ctx, w, err, nil)
}

// writeErrorWithData keeps partial results next to the error so a caller
// can see which steps already took effect.
func writeErrorWithData(ctx context.Context, w http.ResponseWriter, err error, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(err)
	message := err.Error()
	if mapped.HTTPStatus == http.StatusInternalServerError {
		// Storage and driver errors stay in the logs.
		message = "internal server error"
	}

	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: message,
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

// errorTable is checked in order; the first sentinel matched by errors.Is wins.
var errorTable = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrLedgerInconsistency, mappedError{http.StatusInternalServerError, "ledgerInconsistency", "INTERNAL"}},
	{usecase.ErrInsufficientFunds, mappedError{http.StatusPaymentRequired, "insufficientFunds", "FAILED_PRECONDITION"}},
	{usecase.ErrMatchFull, mappedError{http.StatusConflict, "matchFull", "RESOURCE_EXHAUSTED"}},
	{usecase.ErrMatchLocked, mappedError{http.StatusLocked, "matchLocked", "FAILED_PRECONDITION"}},
	{usecase.ErrMatchInUse, mappedError{http.StatusConflict, "matchInUse", "FAILED_PRECONDITION"}},
	{usecase.ErrAlreadyJoined, mappedError{http.StatusConflict, "alreadyJoined", "ALREADY_EXISTS"}},
	{usecase.ErrSlotTaken, mappedError{http.StatusConflict, "slotTaken", "ABORTED"}},
	{usecase.ErrAlreadyInTeam, mappedError{http.StatusConflict, "alreadyInTeam", "ALREADY_EXISTS"}},
	{usecase.ErrDuplicatePayout, mappedError{http.StatusConflict, "duplicatePayout", "ALREADY_EXISTS"}},
	{usecase.ErrNotJoined, mappedError{http.StatusForbidden, "notJoined", "FAILED_PRECONDITION"}},
	{usecase.ErrNotLeader, mappedError{http.StatusForbidden, "notLeader", "PERMISSION_DENIED"}},
	{usecase.ErrPaymentNotVerified, mappedError{http.StatusPaymentRequired, "paymentNotVerified", "FAILED_PRECONDITION"}},
	{usecase.ErrInvalidRank, mappedError{http.StatusBadRequest, "invalidRank", "INVALID_ARGUMENT"}},
	{usecase.ErrInvalidAmount, mappedError{http.StatusBadRequest, "invalidAmount", "INVALID_ARGUMENT"}},
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrForbidden, mappedError{http.StatusForbidden, "forbidden", "PERMISSION_DENIED"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

func mapError(err error) mappedError {
	for _, entry := range errorTable {
		if errors.Is(err, entry.target) {
			return entry.mapped
		}
	}
	return mappedError{
		HTTPStatus: http.StatusInternalServerError,
		Reason:     "internalError",
		Status:     "INTERNAL",
	}
}
