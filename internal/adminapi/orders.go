package adminapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/plantee/storefront/internal/checkout"
	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/internal/webserver"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	idempotencyScope = "orders"

	invalidOrderFormat = "Invalid order format. Must include user and items array."
)

type orderPayload struct {
	User        *domain.Buyer `json:"user"`
	Items       interface{}   `json:"items"`
	TotalAmount interface{}   `json:"totalAmount"`
}

type statusPayload struct {
	Status string `json:"status"`
}

// OrderItemView is an order line with its plant expanded. Plant is nil when
// the plant has been deleted since the order was placed.
type OrderItemView struct {
	Plant    *domain.Plant `json:"plant"`
	Quantity int           `json:"quantity"`
	Price    float64       `json:"price"`
}

type OrderView struct {
	ID          string          `json:"_id"`
	OrderNumber int64           `json:"orderNumber,string"`
	User        domain.Buyer    `json:"user"`
	Items       []OrderItemView `json:"items"`
	TotalAmount float64         `json:"totalAmount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func registerOrderRoutes() {
	webserver.ApiGET("/orders/test", testOrders)
	webserver.ApiPOST("/orders", placeOrder)
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPATCH("/orders/:id/status", updateOrderStatus)
}

func testOrders(c echo.Context) error {
	return ok(c, echo.Map{"message": "Order routes are working"})
}

// toPlaceRequest converts the loosely typed body. It returns false when the
// user or the item list is missing or malformed.
func toPlaceRequest(p orderPayload) (checkout.PlaceRequest, bool) {
	list, isList := p.Items.([]interface{})
	if p.User == nil || !isList || len(list) == 0 {
		return checkout.PlaceRequest{}, false
	}
	req := checkout.PlaceRequest{
		User:        p.User,
		Items:       make([]checkout.ItemRequest, 0, len(list)),
		TotalAmount: cast.ToFloat64(p.TotalAmount),
	}
	for _, raw := range list {
		m, isMap := raw.(map[string]interface{})
		if !isMap {
			return checkout.PlaceRequest{}, false
		}
		req.Items = append(req.Items, checkout.ItemRequest{
			Plant:    m["plant"],
			Quantity: m["quantity"],
			Price:    cast.ToFloat64(m["price"]),
		})
	}
	return req, true
}

// placementFailed maps checkout errors onto HTTP responses
func placementFailed(c echo.Context, err error) error {
	var (
		notFound *checkout.PlantNotFoundError
		noStock  *checkout.InsufficientStockError
	)
	switch {
	case errors.As(err, &notFound):
		return fail(c, http.StatusBadRequest, "PLANT_NOT_FOUND", fmt.Sprintf("Plant with ID %s not found", notFound.Reference), nil)
	case errors.As(err, &noStock):
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for %s (requested %d, available %d)", noStock.PlantName, noStock.Requested, noStock.Available), nil)
	case errors.Is(err, checkout.ErrCatalogEmpty):
		return fail(c, http.StatusBadRequest, "CATALOG_EMPTY", "No plants found in database", nil)
	case errors.Is(err, checkout.ErrInvalidRequest):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to place order", err)
	}
}

// @Summary Place an order
// @Tags orders
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "replay protection key"
// @Param body body orderPayload true "cart"
// @Success 201 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders [post]
func placeOrder(c echo.Context) error {
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", invalidOrderFormat, err)
	}
	req, valid := toPlaceRequest(payload)
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", invalidOrderFormat, nil)
	}

	appCtx := GetAppContext(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	key := strings.TrimSpace(c.Request().Header.Get(IdempotencyHeader))
	idem := appCtx.Idempotency()
	if key == "" || idem == nil {
		order, err := appCtx.Checkout().Place(ctx, req)
		if err != nil {
			return placementFailed(c, err)
		}
		return created(c, order)
	}

	if id, found, err := idem.Recall(ctx, idempotencyScope, key); err != nil {
		return fail(c, http.StatusInternalServerError, "IDEMPOTENCY_ERROR", "Failed to check idempotency key", err)
	} else if found {
		order, err := appCtx.Checkout().Get(ctx, id)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load order", err)
		}
		return created(c, order)
	}
	locked, err := idem.TryLock(ctx, idempotencyScope, key)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "IDEMPOTENCY_ERROR", "Failed to claim idempotency key", err)
	}
	if !locked {
		return fail(c, http.StatusConflict, "REQUEST_IN_PROGRESS", "A request with this Idempotency-Key is already in progress", nil)
	}

	order, err := appCtx.Checkout().Place(ctx, req)
	if err != nil {
		if rerr := idem.Release(context.WithoutCancel(ctx), idempotencyScope, key); rerr != nil {
			zap.L().Error("release idempotency key failed", zap.String("namespace", "api"), zap.Error(rerr))
		}
		return placementFailed(c, err)
	}
	if err := idem.Remember(context.WithoutCancel(ctx), idempotencyScope, key, order.ID); err != nil {
		zap.L().Error("remember idempotency key failed", zap.String("namespace", "api"), zap.Error(err))
	}
	return created(c, order)
}

// expandOrders resolves every item's plant against the current catalog
func expandOrders(ctx context.Context, c echo.Context, orders []domain.Order) ([]OrderView, error) {
	plants, err := GetAppContext(c).Store().Plants.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Plant, len(plants))
	for _, p := range plants {
		byID[p.ID] = p
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			User:        o.User,
			Items:       make([]OrderItemView, 0, len(o.Items)),
			TotalAmount: o.TotalAmount,
			Status:      o.Status,
			CreatedAt:   o.CreatedAt,
		}
		for _, it := range o.Items {
			iv := OrderItemView{Quantity: it.Quantity, Price: it.Price}
			if p, found := byID[it.Plant]; found {
				iv.Plant = &p
			}
			v.Items = append(v.Items, iv)
		}
		views = append(views, v)
	}
	return views, nil
}

// @Summary List orders with plants expanded
// @Tags orders
// @Produce json
// @Success 200 {array} OrderView
// @Router /orders [get]
func listOrders(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	orders, err := GetAppContext(c).Checkout().List(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err)
	}
	views, err := expandOrders(ctx, c, orders)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query plants", err)
	}
	return ok(c, views)
}

// @Summary Get an order with plants expanded
// @Tags orders
// @Produce json
// @Param id path string true "order id"
// @Success 200 {object} OrderView
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func getOrder(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	order, err := GetAppContext(c).Checkout().Get(ctx, c.Param("id"))
	if errors.Is(err, checkout.ErrOrderNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", err)
	}
	views, err := expandOrders(ctx, c, []domain.Order{*order})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query plants", err)
	}
	return ok(c, views[0])
}

// @Summary Overwrite an order status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "order id"
// @Param body body statusPayload true "status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id}/status [patch]
func updateOrderStatus(c echo.Context) error {
	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	order, err := GetAppContext(c).Checkout().SetStatus(ctx, c.Param("id"), payload.Status)
	switch {
	case errors.Is(err, checkout.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	case errors.Is(err, checkout.ErrInvalidStatus):
		return fail(c, http.StatusBadRequest, "INVALID_STATUS",
			fmt.Sprintf("status must be one of %s", strings.Join(domain.OrderStatuses, ", ")), nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order", err)
	}
	return ok(c, order)
}
