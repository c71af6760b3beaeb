package orderapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/lifecycle"
	"github.com/polkiloo/uniformorders/internal/server/http/dto"
	testhelpers "github.com/polkiloo/uniformorders/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL, "secret-token", testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", "", testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", "", testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestFetchOrder(t *testing.T) {
	order := testhelpers.NewPendingOrder("o-1")
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/orders/o-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("unexpected authorization %q", got)
		}
		writeJSON(w, http.StatusOK, dto.FromOrder(order))
	})

	got, err := client.FetchOrder(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if !got.Equal(order) {
		t.Fatalf("expected %+v, got %+v", order, got)
	}
}

func TestUpdateOrderSendsChange(t *testing.T) {
	approved := testhelpers.NewOrderInStatus("o-1", model.OrderStatusApproved)
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/orders/o-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var change dto.OrderChange
		if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if change.ExpectedStatus != "PENDING" || change.VerifyReceipt == nil || *change.VerifyReceipt != "FULL_PAYMENT" {
			t.Errorf("unexpected change %+v", change)
		}
		writeJSON(w, http.StatusOK, dto.FromOrder(approved))
	})

	receiptType := model.ReceiptTypeFullPayment
	got, err := client.UpdateOrder(context.Background(), "o-1", model.OrderChange{
		ExpectedStatus: model.OrderStatusPending,
		VerifyReceipt:  &receiptType,
	})
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if got.Status != model.OrderStatusApproved {
		t.Fatalf("expected APPROVED, got %s", got.Status)
	}
}

func TestRejectOrderSendsReason(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/orders/o-1/reject" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req dto.RejectRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		rejected := testhelpers.NewPendingOrder("o-1")
		rejected.Status = model.OrderStatusRejected
		rejected.RejectionReason = req.Reason
		writeJSON(w, http.StatusOK, dto.FromOrder(rejected))
	})

	got, err := client.RejectOrder(context.Background(), "o-1", "Insufficient funds")
	if err != nil {
		t.Fatalf("reject returned error: %v", err)
	}
	if got.RejectionReason != "Insufficient funds" {
		t.Fatalf("unexpected reason %q", got.RejectionReason)
	}
}

func TestFailureMapping(t *testing.T) {
	fresh := testhelpers.NewOrderInStatus("o-1", model.OrderStatusMeasured)
	freshDTO := dto.FromOrder(fresh)

	cases := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   dto.ErrorResponse{Error: "Order not found."},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domainErrors.ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
			},
		},
		{
			name:   "unprocessable",
			status: http.StatusUnprocessableEntity,
			body:   dto.ErrorResponse{Error: "illegal transition from MEASURED to PENDING"},
			check: func(t *testing.T, err error) {
				var validation *domainErrors.ValidationError
				if !errors.As(err, &validation) || validation.Reason != "illegal transition from MEASURED to PENDING" {
					t.Fatalf("expected verbatim validation error, got %v", err)
				}
			},
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   dto.ErrorResponse{Error: "malformed body"},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domainErrors.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   dto.ErrorResponse{Error: "role may not verify receipts"},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domainErrors.ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domainErrors.ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
			},
		},
		{
			name:   "conflict with snapshot",
			status: http.StatusConflict,
			body:   dto.ErrorResponse{Error: "The order was changed by someone else and is now MEASURED.", Order: &freshDTO},
			check: func(t *testing.T, err error) {
				var conflict *domainErrors.ConflictError
				if !errors.As(err, &conflict) {
					t.Fatalf("expected conflict, got %v", err)
				}
				if !conflict.Current.Equal(fresh) {
					t.Fatalf("conflict must carry fresh snapshot, got %+v", conflict.Current)
				}
				if domainErrors.Message(err) != "The order was changed by someone else and is now MEASURED." {
					t.Fatalf("unexpected message %q", domainErrors.Message(err))
				}
			},
		},
		{
			name:   "server error",
			status: http.StatusServiceUnavailable,
			body:   dto.ErrorResponse{Error: "service unavailable"},
			check: func(t *testing.T, err error) {
				var transport *domainErrors.TransportError
				if !errors.As(err, &transport) || transport.StatusCode != http.StatusServiceUnavailable {
					t.Fatalf("expected transport error, got %v", err)
				}
				if domainErrors.Message(err) != "service unavailable" {
					t.Fatalf("unexpected message %q", domainErrors.Message(err))
				}
			},
		},
		{
			name:   "server error without body",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domainErrors.ErrTransport) {
					t.Fatalf("expected transport error, got %v", err)
				}
				if domainErrors.Message(err) != domainErrors.GenericMessage {
					t.Fatalf("expected generic message, got %q", domainErrors.Message(err))
				}
			},
		},
		{
			name:   "inconsistent snapshot",
			status: http.StatusOK,
			body: func() dto.Order {
				broken := dto.FromOrder(testhelpers.NewPendingOrder("o-1"))
				broken.Receipts[0].IsVerified = true
				return broken
			}(),
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domainErrors.ErrTransport) || !errors.Is(err, model.ErrInconsistentOrder) {
					t.Fatalf("expected transport error for inconsistent snapshot, got %v", err)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.body == nil {
					w.WriteHeader(tc.status)
					return
				}
				writeJSON(w, tc.status, tc.body)
			})
			status := model.OrderStatusPending
			_, err := client.UpdateOrder(context.Background(), "o-1", model.OrderChange{Status: &status})
			tc.check(t, err)
		})
	}
}

func TestConflictWithoutSnapshotRefetches(t *testing.T) {
	fresh := testhelpers.NewOrderInStatus("o-1", model.OrderStatusClaimed)
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, dto.FromOrder(fresh))
			return
		}
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "stale"})
	})

	_, err := client.RejectOrder(context.Background(), "o-1", "late")
	var conflict *domainErrors.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if conflict.Current.Status != model.OrderStatusClaimed {
		t.Fatalf("expected refetched snapshot, got %s", conflict.Current.Status)
	}
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client, err := NewHTTPClient(baseURL, "", testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	_, err = client.FetchOrder(context.Background(), "o-1")
	if !errors.Is(err, domainErrors.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if domainErrors.Message(err) != domainErrors.GenericMessage {
		t.Fatalf("expected generic message, got %q", domainErrors.Message(err))
	}
}

func TestListEndpoints(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/7/orders":
			writeJSON(w, http.StatusOK, dto.FromOrders([]model.Order{testhelpers.NewPendingOrder("a"), testhelpers.NewPendingOrder("b")}))
		case "/api/users/8/orders":
			w.WriteHeader(http.StatusNoContent)
		case "/api/orders":
			if r.URL.Query().Get("status") != "APPROVED" {
				t.Errorf("unexpected query %q", r.URL.RawQuery)
			}
			writeJSON(w, http.StatusOK, dto.FromOrders([]model.Order{testhelpers.NewOrderInStatus("c", model.OrderStatusApproved)}))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	orders, err := client.FetchOrdersForUser(context.Background(), 7)
	if err != nil || len(orders) != 2 {
		t.Fatalf("expected two orders, got %d (%v)", len(orders), err)
	}
	orders, err = client.FetchOrdersForUser(context.Background(), 8)
	if err != nil || len(orders) != 0 {
		t.Fatalf("expected no orders, got %d (%v)", len(orders), err)
	}
	status := model.OrderStatusApproved
	orders, err = client.ListOrders(context.Background(), &status)
	if err != nil || len(orders) != 1 || orders[0].ID != "c" {
		t.Fatalf("unexpected listing %+v (%v)", orders, err)
	}
}

func TestControllerOverHTTPClient(t *testing.T) {
	stub := testhelpers.NewCollaboratorStub(testhelpers.NewPendingOrder("o-1"))
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var change dto.OrderChange
		_ = json.NewDecoder(r.Body).Decode(&change)
		updated, err := stub.UpdateOrder(r.Context(), "o-1", change.ToModel())
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Error: domainErrors.Message(err)})
			return
		}
		writeJSON(w, http.StatusOK, dto.FromOrder(*updated))
	})

	controller := lifecycle.NewController(testhelpers.NewPendingOrder("o-1"), client, model.FullCapabilities)
	order, err := controller.VerifyReceipt(context.Background())
	if err != nil {
		t.Fatalf("verify returned error: %v", err)
	}
	if order.Status != model.OrderStatusApproved || order.MeasurementSchedule == nil {
		t.Fatalf("unexpected order %+v", order)
	}
}
