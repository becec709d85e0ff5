package adminapi

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/internal/report"
	"github.com/plantee/storefront/pkg/metrics"
)

func TestOrderSummaryAndExport(t *testing.T) {
	s := newTestServer(t, nil)

	body := cart(item(1, 2, 29.99))
	body["totalAmount"] = 59.98
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/orders", body).Code)
	body = cart(item(2, 1, 19.99))
	body["totalAmount"] = 5
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/orders", body).Code)

	rec := s.do(t, http.MethodGet, "/api/orders/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum report.OrderSummary
	decode(t, rec, &sum)
	assert.Equal(t, 2, sum.Orders)
	assert.Equal(t, 3, sum.Units)
	assert.Equal(t, "64.98", sum.Revenue)
	assert.Equal(t, 1, sum.FlaggedTotals)
	assert.Equal(t, 2, sum.ByStatus[domain.OrderStatusPending])

	rec = s.do(t, http.MethodGet, "/api/orders/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mimeXLSX, rec.Header().Get("Content-Type"))
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "Order ID", f.GetCellValue(report.OrdersSheet, "A1"))
	assert.NotEmpty(t, f.GetCellValue(report.OrdersSheet, "A3"))
	assert.Equal(t, "Monstera Deliciosa", f.GetCellValue(report.OrdersSheet, "I3"))

	rec = s.do(t, http.MethodGet, "/api/orders/export.xlsx?from=1999-01-01&to=1999-12-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f, err = excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, f.GetCellValue(report.OrdersSheet, "A2"))

	rec = s.do(t, http.MethodGet, "/api/orders/export.xlsx?from=yesterday-ish", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryMetric(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/orders", cart(item(1, 1, 29.99))).Code)
	require.EqualValues(t, 1, metrics.Counter("orders_placed"))

	rec := s.do(t, http.MethodGet, "/api/system/metrics/orders_placed?since=10m", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var points []metrics.Point
	decode(t, rec, &points)
	require.NotEmpty(t, points)
	assert.Equal(t, 1.0, points[len(points)-1].Value)

	rec = s.do(t, http.MethodGet, "/api/system/metrics/never_recorded", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/system/metrics/Bad-Name", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/system/metrics/orders_placed?since=whenever", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
