package adminapi

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/internal/report"
	"github.com/plantee/storefront/internal/webserver"
	"github.com/plantee/storefront/pkg/metrics"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV  = "text/csv; charset=utf-8"
)

var metricName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

func registerReportRoutes() {
	webserver.ApiGET("/orders/summary", orderSummary)
	webserver.ApiGET("/orders/export.xlsx", exportOrders)
	webserver.ApiGET("/contact/export.csv", exportContacts)
	webserver.ApiGET("/system/metrics/:name", queryMetric)
}

// @Summary Order book summary
// @Tags reports
// @Produce json
// @Success 200 {object} report.OrderSummary
// @Router /orders/summary [get]
func orderSummary(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	orders, err := GetAppContext(c).Checkout().List(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err)
	}
	return ok(c, report.Summarize(orders))
}

// @Summary Export orders as a spreadsheet
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string false "start date"
// @Param to query string false "end date"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /orders/export.xlsx [get]
func exportOrders(c echo.Context) error {
	from, to, err := report.ParseRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", err.Error(), nil)
	}

	appCtx := GetAppContext(c)
	ctx, cancel := requestContext(c)
	defer cancel()
	orders, err := appCtx.Checkout().List(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err)
	}
	plants, err := appCtx.Store().Plants.List(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query plants", err)
	}
	byID := make(map[string]domain.Plant, len(plants))
	for _, p := range plants {
		byID[p.ID] = p
	}

	var buf bytes.Buffer
	if err := report.WriteOrdersXLSX(&buf, report.FilterOrders(orders, from, to), byID); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to export orders", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=orders-%s.xlsx", time.Now().Format("20060102")))
	return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}

// @Summary Export contact messages as CSV
// @Tags reports
// @Produce text/csv
// @Success 200 {file} file
// @Router /contact/export.csv [get]
func exportContacts(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	msgs, err := GetAppContext(c).Store().Contacts.List(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contact messages", err)
	}
	var buf bytes.Buffer
	if err := report.WriteContactsCSV(&buf, msgs); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to export contact messages", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=contacts.csv")
	return c.Blob(http.StatusOK, mimeCSV, buf.Bytes())
}

// parseSince accepts a duration such as "30m" or a date. Empty means the
// last hour.
func parseSince(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().Add(-time.Hour), nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(-d), nil
	}
	return dateparse.ParseIn(s, time.UTC)
}

// @Summary Time series points of a metric
// @Tags reports
// @Produce json
// @Param name path string true "metric name"
// @Param since query string false "duration or date"
// @Success 200 {array} metrics.Point
// @Failure 400 {object} ErrorResponse
// @Router /system/metrics/{name} [get]
func queryMetric(c echo.Context) error {
	name := c.Param("name")
	if !metricName.MatchString(name) {
		return fail(c, http.StatusBadRequest, "INVALID_METRIC", "Invalid metric name", nil)
	}
	since, err := parseSince(c.QueryParam("since"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", fmt.Sprintf("Invalid since value %q", c.QueryParam("since")), nil)
	}
	points, err := metrics.Query(name, since)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query metric", err)
	}
	return ok(c, points)
}
