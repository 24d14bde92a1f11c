package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Soozey/MADAVOLA/internal/geo"
	"github.com/Soozey/MADAVOLA/internal/lots/service"
	"github.com/Soozey/MADAVOLA/internal/lots/store"
	"github.com/Soozey/MADAVOLA/internal/payments"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	"github.com/Soozey/MADAVOLA/pkg/requestcontext"
)

type testEnv struct {
	router   chi.Router
	payments *payments.MemoryStore
	origin   id.GeoPointID
	miner    id.ActorID
	enforcer id.ActorID
}

// newTestEnv wires the handler against real in-memory dependencies. Identity
// is injected the way the auth middleware would.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		payments: payments.NewMemoryStore(),
		origin:   id.NewGeoPointID(),
		miner:    id.NewActorID(),
		enforcer: id.NewActorID(),
	}
	resolver := geo.NewMemoryResolver()
	resolver.Add(env.origin)

	svc := service.New(store.NewMemory(), env.payments, resolver, slog.New(slog.DiscardHandler))
	h := New(svc, slog.New(slog.DiscardHandler))

	env.router = chi.NewRouter()
	h.Register(env.router)
	return env
}

// do issues a request as the given actor with the given roles.
func (e *testEnv) do(t *testing.T, method, path string, payload any, actor id.ActorID, roles ...string) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	ctx := requestcontext.WithActorID(req.Context(), actor)
	if len(roles) > 0 {
		ctx = requestcontext.WithRoles(ctx, roles)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func (e *testEnv) createLot(t *testing.T, quantity string) lotResponseBody {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/lots", map[string]any{
		"filiere":             "OR",
		"product_type":        "or_brut",
		"unit":                "g",
		"quantity":            quantity,
		"origin_geo_point_id": e.origin.String(),
	}, e.miner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating lot, got %d: %s", rec.Code, rec.Body.String())
	}
	var lot lotResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&lot); err != nil {
		t.Fatalf("decode lot response: %v", err)
	}
	return lot
}

type lotResponseBody struct {
	ID            string `json:"id"`
	Quantity      string `json:"quantity"`
	Status        string `json:"status"`
	Owner         string `json:"owner"`
	ReceiptNumber string `json:"receipt_number"`
	QRValue       string `json:"qr_value"`
}

func TestCreateLotViaHandler(t *testing.T) {
	env := newTestEnv(t)

	lot := env.createLot(t, "100.0000")
	if lot.ID == "" || lot.Status != "available" {
		t.Fatalf("unexpected lot response: %+v", lot)
	}
	if lot.Owner != env.miner.String() {
		t.Fatalf("expected declarer as owner, got %s", lot.Owner)
	}
	if lot.ReceiptNumber == "" || lot.QRValue == "" {
		t.Fatalf("expected receipt and qr in response: %+v", lot)
	}
}

func TestCreateLotRejectsUnknownOrigin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/lots", map[string]any{
		"filiere":             "OR",
		"product_type":        "or_brut",
		"unit":                "g",
		"quantity":            "10",
		"origin_geo_point_id": id.NewGeoPointID().String(),
	}, env.miner)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown origin, got %d", rec.Code)
	}
}

func TestCreateLotRequiresAuthenticatedActor(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/lots", map[string]any{
		"filiere":             "OR",
		"product_type":        "or_brut",
		"unit":                "g",
		"quantity":            "10",
		"origin_geo_point_id": env.origin.String(),
	}, id.ActorID{})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without actor, got %d", rec.Code)
	}
}

func TestTransferRequiresSettledPayment(t *testing.T) {
	env := newTestEnv(t)
	lot := env.createLot(t, "50")
	buyer := id.NewActorID()

	t.Run("missing payment yields 404", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/lots/"+lot.ID+"/transfer", map[string]string{
			"new_owner_id": buyer.String(),
			"payment_id":   id.NewPaymentID().String(),
		}, env.miner)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for missing payment, got %d", rec.Code)
		}
	})

	t.Run("settled payment transfers ownership", func(t *testing.T) {
		paymentID := id.NewPaymentID()
		env.payments.Put(context.Background(), payments.Payment{
			ID:       paymentID,
			Payer:    buyer,
			Payee:    env.miner,
			Amount:   decimal.RequireFromString("1000.00"),
			Currency: "MGA",
			Status:   payments.StatusSuccess,
		})

		rec := env.do(t, http.MethodPost, "/lots/"+lot.ID+"/transfer", map[string]string{
			"new_owner_id": buyer.String(),
			"payment_id":   paymentID.String(),
		}, env.miner)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp lotResponseBody
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Owner != buyer.String() {
			t.Fatalf("expected new owner %s, got %s", buyer, resp.Owner)
		}
	})
}

func TestSplitViaHandler(t *testing.T) {
	env := newTestEnv(t)
	lot := env.createLot(t, "100.0000")

	t.Run("mismatched quantities yield 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/lots/"+lot.ID+"/split", map[string]any{
			"quantities": []string{"40", "70"},
		}, env.miner)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("exact quantities yield children", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/lots/"+lot.ID+"/split", map[string]any{
			"quantities": []string{"40", "60"},
		}, env.miner)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var children []lotResponseBody
		if err := json.NewDecoder(rec.Body).Decode(&children); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(children) != 2 {
			t.Fatalf("expected 2 children, got %d", len(children))
		}
	})

	t.Run("second split conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/lots/"+lot.ID+"/split", map[string]any{
			"quantities": []string{"40", "60"},
		}, env.miner)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestPenaltyRequiresEnforcementRole(t *testing.T) {
	env := newTestEnv(t)
	lot := env.createLot(t, "25")
	payload := map[string]any{
		"action":     "block",
		"penalty_id": id.NewPenaltyID().String(),
	}

	t.Run("plain actor is forbidden", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/lots/"+lot.ID+"/penalty", payload, env.miner, "tresor")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 without enforcement role, got %d", rec.Code)
		}
	})

	t.Run("enforcement role blocks the lot", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/lots/"+lot.ID+"/penalty", payload, env.enforcer, "police")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp lotResponseBody
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != "blocked" {
			t.Fatalf("expected blocked status, got %s", resp.Status)
		}
	})
}

func TestLedgerAndBalanceEndpoints(t *testing.T) {
	env := newTestEnv(t)
	lot := env.createLot(t, "100.0000")

	rec := env.do(t, http.MethodGet, "/ledger?lot="+lot.ID, nil, env.miner)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing ledger, got %d", rec.Code)
	}
	var entries []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode ledger: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(entries))
	}

	rec = env.do(t, http.MethodGet, "/ledger/balance", nil, env.miner)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 reading balance, got %d", rec.Code)
	}
	var balance map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance["quantity"] != "100.0000" {
		t.Fatalf("expected balance 100.0000, got %s", balance["quantity"])
	}
}

func TestGetLotNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/lots/"+id.NewLotID().String(), nil, env.miner)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
