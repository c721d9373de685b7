package controllers

import (
	"net/http"

	"github.com/skillwave/skillwave-backend/api/responses"
	cartsvc "github.com/skillwave/skillwave-backend/internal/cart"
	pkgerrors "github.com/skillwave/skillwave-backend/pkg/errors"
	"github.com/skillwave/skillwave-backend/pkg/logger"
)

// CouponsAvailable lists public coupons currently open for redemption.
func CouponsAvailable(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		views, err := svc.GetAvailableCoupons(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, views)
	}
}
