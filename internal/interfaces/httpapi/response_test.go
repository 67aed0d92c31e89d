package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/dlawede/fantasy-roster/internal/domain/roster"
	"github.com/dlawede/fantasy-roster/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_StatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantHTTP   int
		wantStatus string
	}{
		{
			name:       "not found",
			err:        fmt.Errorf("%w: player missing", usecase.ErrNotFound),
			wantHTTP:   http.StatusNotFound,
			wantStatus: "NOT_FOUND",
		},
		{
			name:       "unauthorized",
			err:        fmt.Errorf("%w: bad token", usecase.ErrUnauthorized),
			wantHTTP:   http.StatusUnauthorized,
			wantStatus: "UNAUTHENTICATED",
		},
		{
			name:       "version conflict",
			err:        fmt.Errorf("%w: stale read", roster.ErrVersionConflict),
			wantHTTP:   http.StatusConflict,
			wantStatus: "ABORTED",
		},
		{
			name:       "commit conflict",
			err:        fmt.Errorf("%w: retries exhausted", usecase.ErrConflict),
			wantHTTP:   http.StatusConflict,
			wantStatus: "ABORTED",
		},
		{
			name:       "insufficient funds",
			err:        fmt.Errorf("createTeam rejected: %w", roster.ErrInsufficientFunds),
			wantHTTP:   http.StatusUnprocessableEntity,
			wantStatus: "FAILED_PRECONDITION",
		},
		{
			name:       "team diversity",
			err:        fmt.Errorf("selectLineup rejected: %w", roster.ErrTeamDiversity),
			wantHTTP:   http.StatusUnprocessableEntity,
			wantStatus: "FAILED_PRECONDITION",
		},
		{
			name:       "captain outside lineup",
			err:        roster.ErrCaptainNotStarting,
			wantHTTP:   http.StatusUnprocessableEntity,
			wantStatus: "FAILED_PRECONDITION",
		},
		{
			name:       "dependency unavailable",
			err:        fmt.Errorf("%w: stats feed down", usecase.ErrDependencyUnavailable),
			wantHTTP:   http.StatusServiceUnavailable,
			wantStatus: "UNAVAILABLE",
		},
		{
			name:       "unmapped error",
			err:        fmt.Errorf("boom"),
			wantHTTP:   http.StatusInternalServerError,
			wantStatus: "INTERNAL",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapError(context.Background(), tc.err)
			if mapped.HTTPStatus != tc.wantHTTP {
				t.Fatalf("expected http status %d, got %d", tc.wantHTTP, mapped.HTTPStatus)
			}
			if mapped.Status != tc.wantStatus {
				t.Fatalf("expected status %s, got %s", tc.wantStatus, mapped.Status)
			}
		})
	}
}
