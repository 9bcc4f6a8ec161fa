package api

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/floramart/internal/domain/revenue"
	"github.com/xenking/floramart/internal/domain/user"
)

type revenueRecordResponse struct {
	Date         string          `json:"date"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	OrderCount   int             `json:"order_count"`
}

type revenueResponse struct {
	Timeframe         string                  `json:"timeframe"`
	Records           []revenueRecordResponse `json:"records"`
	TotalRevenue      decimal.Decimal         `json:"total_revenue"`
	OrderCount        int                     `json:"order_count"`
	AverageOrderValue decimal.Decimal         `json:"average_order_value"`
}

// revenueReport builds a report handler. The timeframe can be overridden with
// the ?timeframe= query parameter; byShop makes the shopId parameter required.
func (h *Handler) revenueReport(defaultTF revenue.Timeframe, byShop bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tf := defaultTF
		if v := r.URL.Query().Get("timeframe"); v != "" {
			tf = revenue.Timeframe(v)
		}
		if tf != revenue.Daily && tf != revenue.Monthly {
			respondFailed(w, http.StatusBadRequest, "timeframe must be daily or monthly")
			return
		}

		shopID := r.URL.Query().Get("shopId")
		if byShop {
			// Shop owners are pinned to their own shop; the query parameter
			// is only trusted for admins.
			sess := sessionFrom(r.Context())
			if sess != nil && sess.Role == user.RoleShopOwner {
				shop, err := h.catalog.GetShopByOwner(r.Context(), sess.UserID)
				if err != nil {
					respondDomainError(w, r, err)
					return
				}
				if shopID != "" && shopID != shop.ID {
					respondFailed(w, http.StatusForbidden, "cannot view another shop's revenue")
					return
				}
				shopID = shop.ID
			} else if shopID == "" {
				respondFailed(w, http.StatusBadRequest, "shopId is required")
				return
			}
		}

		since, err := parseDateParam(r, "since")
		if err != nil {
			respondFailed(w, http.StatusBadRequest, err.Error())
			return
		}
		until, err := parseDateParam(r, "until")
		if err != nil {
			respondFailed(w, http.StatusBadRequest, err.Error())
			return
		}

		report, err := h.revenue.Report(r.Context(), tf, shopID, since, until)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}

		records := make([]revenueRecordResponse, len(report.Records))
		for i, rec := range report.Records {
			records[i] = revenueRecordResponse{
				Date:         rec.Date,
				TotalRevenue: rec.TotalRevenue,
				OrderCount:   rec.OrderCount,
			}
		}
		respondSuccess(w, http.StatusOK, "", revenueResponse{
			Timeframe:         string(tf),
			Records:           records,
			TotalRevenue:      report.KPI.TotalRevenue,
			OrderCount:        report.KPI.OrderCount,
			AverageOrderValue: report.KPI.AverageOrderValue,
		})
	}
}

// parseDateParam reads an optional "2006-01-02" query parameter. A missing
// parameter yields the zero time, which leaves the bound open.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid %s date", name)
	}
	return t, nil
}
