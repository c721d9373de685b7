package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skillwave/skillwave-backend/api/middleware"
	cartsvc "github.com/skillwave/skillwave-backend/internal/cart"
	"github.com/skillwave/skillwave-backend/pkg/db/models"
	pkgerrors "github.com/skillwave/skillwave-backend/pkg/errors"
)

type stubCartService struct {
	view      *cartsvc.CartView
	result    *cartsvc.ApplyCouponResult
	usage     *models.CouponUsage
	coupons   []cartsvc.CouponView
	err       error
	lastOwner cartsvc.Owner
	lastCode  string
}

func (s *stubCartService) GetCart(ctx context.Context, owner cartsvc.Owner) (*cartsvc.CartView, error) {
	s.lastOwner = owner
	return s.view, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, owner cartsvc.Owner, courseID uuid.UUID) (*cartsvc.CartView, error) {
	s.lastOwner = owner
	return s.view, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, owner cartsvc.Owner, itemID uuid.UUID) (*cartsvc.CartView, error) {
	s.lastOwner = owner
	return s.view, s.err
}

func (s *stubCartService) ClearCart(ctx context.Context, owner cartsvc.Owner) (*cartsvc.CartView, error) {
	s.lastOwner = owner
	return s.view, s.err
}

func (s *stubCartService) ApplyCoupon(ctx context.Context, owner cartsvc.Owner, code string) (*cartsvc.ApplyCouponResult, error) {
	s.lastOwner = owner
	s.lastCode = code
	return s.result, s.err
}

func (s *stubCartService) RemoveCoupon(ctx context.Context, owner cartsvc.Owner) (*cartsvc.CartView, error) {
	s.lastOwner = owner
	return s.view, s.err
}

func (s *stubCartService) MergeGuestCart(ctx context.Context, userID uuid.UUID, sessionID string) (*cartsvc.CartView, error) {
	return s.view, s.err
}

func (s *stubCartService) RedeemCoupon(ctx context.Context, userID uuid.UUID) (*models.CouponUsage, error) {
	return s.usage, s.err
}

func (s *stubCartService) GetAvailableCoupons(ctx context.Context) ([]cartsvc.CouponView, error) {
	return s.coupons, s.err
}

func guestRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithSessionID(req.Context(), uuid.NewString()))
}

func userRequest(method, target string, body string, userID uuid.UUID) *http.Request {
	req := guestRequest(method, target, body)
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestCartGetReturnsGuestCart(t *testing.T) {
	view := &cartsvc.CartView{ID: uuid.New(), Status: "active"}
	svc := &stubCartService{view: view}
	handler := CartGet(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.CartView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != view.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
	if _, ok := svc.lastOwner.SessionID(); !ok {
		t.Fatal("expected guest owner")
	}
}

func TestCartGetPrefersAuthenticatedUser(t *testing.T) {
	userID := uuid.New()
	svc := &stubCartService{view: &cartsvc.CartView{ID: uuid.New()}}
	handler := CartGet(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, userRequest(http.MethodGet, "/api/v1/cart", "", userID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	got, ok := svc.lastOwner.UserID()
	if !ok || got != userID {
		t.Fatalf("expected user owner %s, got %v", userID, svc.lastOwner)
	}
}

func TestCartGetWithoutOwnerContext(t *testing.T) {
	handler := CartGet(&stubCartService{}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemRejectsMalformedBody(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodPost, "/api/v1/cart/items", `{"course_id":"nope"}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartRemoveItemParsesPathParam(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.CartView{ID: uuid.New()}}
	itemID := uuid.New()

	router := chi.NewRouter()
	router.Delete("/api/v1/cart/items/{itemID}", CartRemoveItem(svc, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, guestRequest(http.MethodDelete, "/api/v1/cart/items/"+itemID.String(), ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartRemoveItemRejectsBadID(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/api/v1/cart/items/{itemID}", CartRemoveItem(&stubCartService{}, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, guestRequest(http.MethodDelete, "/api/v1/cart/items/not-a-uuid", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartApplyCouponPassesCodeThrough(t *testing.T) {
	svc := &stubCartService{result: &cartsvc.ApplyCouponResult{Cart: &cartsvc.CartView{ID: uuid.New()}}}
	handler := CartApplyCoupon(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodPost, "/api/v1/cart/coupon", `{"code":"SAVE20"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastCode != "SAVE20" {
		t.Fatalf("expected code SAVE20, got %q", svc.lastCode)
	}
}

func TestCartApplyCouponSurfacesBusinessRule(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeBusinessRule, "cart total is below the coupon minimum")}
	handler := CartApplyCoupon(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodPost, "/api/v1/cart/coupon", `{"code":"BIGSPEND"}`))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestCartMergeRequiresAuthentication(t *testing.T) {
	handler := CartMerge(&stubCartService{}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodPost, "/api/v1/cart/merge", ""))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartCheckoutReturnsUsage(t *testing.T) {
	redeemer := uuid.New()
	usage := &models.CouponUsage{ID: uuid.New(), UserID: &redeemer}
	svc := &stubCartService{usage: usage}
	handler := CartCheckout(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, userRequest(http.MethodPost, "/api/v1/cart/checkout", "", redeemer))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
