package adminapi

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"

	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/internal/repository"
	"github.com/plantee/storefront/internal/webserver"
	"github.com/plantee/storefront/pkg/common"
)

// plantPayload accepts numbers or numeric strings for price and stock
type plantPayload struct {
	Name          string      `json:"name" validate:"required"`
	Description   string      `json:"description" validate:"required"`
	Price         interface{} `json:"price" validate:"numeric"`
	ImageURL      string      `json:"imageUrl" validate:"required"`
	Category      string      `json:"category" validate:"required"`
	StockQuantity interface{} `json:"stockQuantity" validate:"numeric"`
}

// plantPatch holds the mutable fields a PATCH may carry. Other keys are
// ignored.
type plantPatch struct {
	Name          *string  `mapstructure:"name"`
	Description   *string  `mapstructure:"description"`
	Price         *float64 `mapstructure:"price"`
	ImageURL      *string  `mapstructure:"imageUrl"`
	Category      *string  `mapstructure:"category"`
	StockQuantity *float64 `mapstructure:"stockQuantity"`
}

func registerPlantRoutes() {
	webserver.ApiGET("/plants", listPlants)
	webserver.ApiGET("/plants/:id", getPlant)
	webserver.ApiPOST("/plants", createPlant)
	webserver.ApiPATCH("/plants/:id", updatePlant)
	webserver.ApiDELETE("/plants/:id", deletePlant)
}

// @Summary List the catalog
// @Tags plants
// @Produce json
// @Success 200 {array} domain.Plant
// @Router /plants [get]
func listPlants(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	plants, err := GetAppContext(c).Store().Plants.List(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query plants", err)
	}
	return ok(c, plants)
}

// @Summary Get a plant
// @Tags plants
// @Produce json
// @Param id path string true "plant id"
// @Success 200 {object} domain.Plant
// @Failure 404 {object} ErrorResponse
// @Router /plants/{id} [get]
func getPlant(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := GetAppContext(c).Store().Plants.Get(ctx, common.NormalizeID(c.Param("id")))
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Plant not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query plant", err)
	}
	return ok(c, p)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isWhole(v float64) bool {
	return v == math.Trunc(v)
}

// @Summary Create a plant
// @Tags plants
// @Accept json
// @Produce json
// @Param body body plantPayload true "plant"
// @Success 201 {object} domain.Plant
// @Failure 400 {object} ValidationResponse
// @Router /plants [post]
func createPlant(c echo.Context) error {
	var payload plantPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse plant", err)
	}
	if err := c.Validate(&payload); err != nil {
		return validationFailed(c, err)
	}

	price := cast.ToFloat64(payload.Price)
	stock := cast.ToFloat64(payload.StockQuantity)
	var fieldErrs []FieldError
	if !nonNegative(price) {
		fieldErrs = append(fieldErrs, FieldError{Field: "price", Message: "price must not be negative", Value: payload.Price})
	}
	if !nonNegative(stock) || !isWhole(stock) {
		fieldErrs = append(fieldErrs, FieldError{Field: "stockQuantity", Message: "stockQuantity must be a non-negative integer", Value: payload.StockQuantity})
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, ValidationResponse{Errors: fieldErrs})
	}

	p := domain.Plant{
		Name:          payload.Name,
		Description:   payload.Description,
		Price:         price,
		ImageURL:      payload.ImageURL,
		Category:      payload.Category,
		StockQuantity: int(stock),
		CreatedAt:     common.Now(),
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := GetAppContext(c).Store().Plants.Create(ctx, &p); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create plant", err)
	}
	return created(c, p)
}

// applyPlantPatch decodes a loosely typed body onto p
func applyPlantPatch(p *domain.Plant, body map[string]interface{}) error {
	var patch plantPatch
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &patch,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(body); err != nil {
		return err
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.StockQuantity != nil {
		if !isWhole(*patch.StockQuantity) {
			return errors.New("stockQuantity must be an integer")
		}
		p.StockQuantity = int(*patch.StockQuantity)
	}

	switch {
	case strings.TrimSpace(p.Name) == "":
		return errors.New("name is required")
	case strings.TrimSpace(p.Description) == "":
		return errors.New("description is required")
	case strings.TrimSpace(p.ImageURL) == "":
		return errors.New("imageUrl is required")
	case strings.TrimSpace(p.Category) == "":
		return errors.New("category is required")
	case !nonNegative(p.Price):
		return errors.New("price must not be negative")
	case p.StockQuantity < 0:
		return errors.New("stockQuantity must not be negative")
	}
	return nil
}

// @Summary Partially update a plant
// @Tags plants
// @Accept json
// @Produce json
// @Param id path string true "plant id"
// @Success 200 {object} domain.Plant
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /plants/{id} [patch]
func updatePlant(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	plants := GetAppContext(c).Store().Plants

	p, err := plants.Get(ctx, common.NormalizeID(c.Param("id")))
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Plant not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query plant", err)
	}

	body := map[string]interface{}{}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse plant", err)
	}
	if err := applyPlantPatch(p, body); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	if err := plants.Update(ctx, p); errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Plant not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update plant", err)
	}
	return ok(c, p)
}

// @Summary Delete a plant
// @Tags plants
// @Produce json
// @Param id path string true "plant id"
// @Success 200 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /plants/{id} [delete]
func deletePlant(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	err := GetAppContext(c).Store().Plants.Delete(ctx, common.NormalizeID(c.Param("id")))
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Plant not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete plant", err)
	}
	return ok(c, echo.Map{"message": "Plant deleted"})
}
