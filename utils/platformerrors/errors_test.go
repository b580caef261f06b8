package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestPlatformErrorFormat(t *testing.T) {
	underlying := errors.New("dial tcp: connection refused")
	perr := NewError(context.Background(), LayerDomain, ErrorTypeProviderUnavailable, "the serp provider is unavailable", underlying, "fixed-uuid")

	want := "[domain][PROVIDER_UNAVAILABLE][fixed-uuid] the serp provider is unavailable: dial tcp: connection refused"
	if got := perr.Error(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	bare := NewError(context.Background(), LayerHandler, ErrorTypeInvalidRequest, "query must not be empty", nil, "fixed-uuid")
	want = "[handler][INVALID_REQUEST][fixed-uuid] query must not be empty"
	if got := bare.Error(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestPlatformErrorUnwrap(t *testing.T) {
	underlying := errors.New("boom")
	perr := NewError(context.Background(), LayerDomain, ErrorTypeInternal, "wrapped", underlying, "")

	if !errors.Is(perr, underlying) {
		t.Error("Expected errors.Is to reach the underlying error")
	}

	wrapped := fmt.Errorf("outer: %w", perr)
	var target *PlatformError
	if !errors.As(wrapped, &target) {
		t.Fatal("Expected errors.As to find the platform error through wrapping")
	}
	if target.Type != ErrorTypeInternal {
		t.Errorf("Expected type INTERNAL, got %s", target.Type)
	}
}

func TestNewErrorGeneratesUUID(t *testing.T) {
	first := NewError(context.Background(), LayerDomain, ErrorTypeInternal, "m", nil, "")
	second := NewError(context.Background(), LayerDomain, ErrorTypeInternal, "m", nil, "")

	if first.UUID == "" {
		t.Error("Expected a generated UUID")
	}
	if first.UUID == second.UUID {
		t.Error("Expected distinct UUIDs per error")
	}

	custom := NewError(context.Background(), LayerDomain, ErrorTypeInternal, "m", nil, "my-uuid")
	if custom.UUID != "my-uuid" {
		t.Errorf("Expected custom UUID kept, got %s", custom.UUID)
	}
}

func TestNewErrorReadsRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), "requestID", "req-123")

	perr := NewError(ctx, LayerDomain, ErrorTypeInternal, "m", nil, "")
	if perr.RequestID != "req-123" {
		t.Errorf("Expected request ID from context, got %q", perr.RequestID)
	}

	noID := NewError(context.Background(), LayerDomain, ErrorTypeInternal, "m", nil, "")
	if noID.RequestID != "" {
		t.Errorf("Expected empty request ID, got %q", noID.RequestID)
	}
}

func TestNewErrorWithContextCopiesFields(t *testing.T) {
	fields := map[string]any{"stage": "fetching", "provider": "serp"}
	perr := NewErrorWithContext(context.Background(), LayerDomain, ErrorTypeProviderUnavailable, "m", nil, "", fields)

	if perr.Context["stage"] != "fetching" || perr.Context["provider"] != "serp" {
		t.Errorf("Expected context fields carried over, got %v", perr.Context)
	}

	// The error holds a copy, not the caller's map.
	fields["stage"] = "mutated"
	if perr.Context["stage"] != "fetching" {
		t.Error("Expected context fields to be copied, not aliased")
	}
}

func TestIsErrorType(t *testing.T) {
	perr := NewError(context.Background(), LayerDomain, ErrorTypeProviderTimeout, "m", nil, "")

	if !IsErrorType(perr, ErrorTypeProviderTimeout) {
		t.Error("Expected match on the error's own type")
	}
	if IsErrorType(perr, ErrorTypeProviderUnavailable) {
		t.Error("Expected mismatch on a different type")
	}
	if !IsErrorType(fmt.Errorf("wrapped: %w", perr), ErrorTypeProviderTimeout) {
		t.Error("Expected match through wrapping")
	}
	if IsErrorType(errors.New("plain"), ErrorTypeProviderTimeout) {
		t.Error("Expected no match for plain errors")
	}
	if IsErrorType(nil, ErrorTypeProviderTimeout) {
		t.Error("Expected no match for nil")
	}
}

func TestTypeOf(t *testing.T) {
	perr := NewError(context.Background(), LayerDomain, ErrorTypeUnparsableResponse, "m", nil, "")

	if got := TypeOf(perr); got != ErrorTypeUnparsableResponse {
		t.Errorf("Expected UNPARSABLE_MODEL_RESPONSE, got %s", got)
	}
	if got := TypeOf(errors.New("plain")); got != ErrorTypeInternal {
		t.Errorf("Expected INTERNAL for plain errors, got %s", got)
	}
}

func TestAsError(t *testing.T) {
	if AsError(context.Background(), LayerHandler, nil, "m") != nil {
		t.Error("Expected nil for nil input")
	}

	plain := AsError(context.Background(), LayerHandler, errors.New("boom"), "handling failed")
	if plain.Type != ErrorTypeInternal {
		t.Errorf("Expected plain errors to become INTERNAL, got %s", plain.Type)
	}

	inner := NewError(context.Background(), LayerDomain, ErrorTypeProviderTimeout, "inner message", nil, "inner-uuid")
	outer := AsError(context.Background(), LayerHandler, inner, "handling failed")
	if outer.Type != ErrorTypeProviderTimeout {
		t.Errorf("Expected the inner type preserved, got %s", outer.Type)
	}
	if outer.UUID != "inner-uuid" {
		t.Errorf("Expected the inner UUID preserved, got %s", outer.UUID)
	}
	if outer.Layer != LayerHandler {
		t.Errorf("Expected the outer layer, got %s", outer.Layer)
	}
}

func TestErrorTypeToHTTPStatus(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      int
	}{
		{errorType: ErrorTypeNotFound, want: http.StatusNotFound},
		{errorType: ErrorTypeValidation, want: http.StatusBadRequest},
		{errorType: ErrorTypeInvalidRequest, want: http.StatusBadRequest},
		{errorType: ErrorTypeConflict, want: http.StatusConflict},
		{errorType: ErrorTypeUnauthorized, want: http.StatusUnauthorized},
		{errorType: ErrorTypeForbidden, want: http.StatusForbidden},
		{errorType: ErrorTypeNotImplemented, want: http.StatusNotImplemented},
		{errorType: ErrorTypeProviderTimeout, want: http.StatusGatewayTimeout},
		{errorType: ErrorTypeProviderUnavailable, want: http.StatusBadGateway},
		{errorType: ErrorTypeUnparsableResponse, want: http.StatusBadGateway},
		{errorType: ErrorTypeExternal, want: http.StatusBadGateway},
		{errorType: ErrorTypeInternal, want: http.StatusInternalServerError},
		{errorType: ErrorType("SOMETHING_ELSE"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := ErrorTypeToHTTPStatus(tt.errorType); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.errorType, tt.want, got)
		}
	}
}
