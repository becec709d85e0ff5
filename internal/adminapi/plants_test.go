package adminapi

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantee/storefront/internal/domain"
)

func TestListAndGetPlants(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/plants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plants []domain.Plant
	decode(t, rec, &plants)
	require.Len(t, plants, len(domain.CatalogSeed))
	assert.Equal(t, "Monstera Deliciosa", plants[0].Name)
	assert.Contains(t, rec.Body.String(), `"_id"`)
	assert.Contains(t, rec.Body.String(), `"imageUrl"`)

	rec = s.do(t, http.MethodGet, "/api/plants/"+plants[1].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var one domain.Plant
	decode(t, rec, &one)
	assert.Equal(t, "Snake Plant", one.Name)

	rec = s.do(t, http.MethodGet, "/api/plants/"+strings.ToUpper(plants[1].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, "ids match regardless of hex case")
	decode(t, rec, &one)
	assert.Equal(t, plants[1].ID, one.ID)

	for _, id := range []string{"not-an-id", "0123456789abcdef01234567"} {
		rec = s.do(t, http.MethodGet, "/api/plants/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "Plant not found", message(t, rec))
	}
}

func TestCreatePlant(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/plants", map[string]interface{}{
		"name":          "String of Pearls",
		"description":   "Trailing succulent",
		"price":         "12.50",
		"imageUrl":      "/assets/img/pearls.png",
		"category":      "Succulent",
		"stockQuantity": 7,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p domain.Plant
	decode(t, rec, &p)
	assert.Len(t, p.ID, 24)
	assert.Equal(t, 12.5, p.Price)
	assert.Equal(t, 7, p.StockQuantity)
	assert.False(t, p.CreatedAt.IsZero())

	plants := s.plants(t)
	assert.Equal(t, "String of Pearls", plants[len(plants)-1].Name, "new plants go last in catalog order")
}

func TestCreatePlantValidation(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/plants", map[string]interface{}{
		"name":  "Half a plant",
		"price": "cheap",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ValidationResponse
	decode(t, rec, &body)
	fields := map[string]bool{}
	for _, fe := range body.Errors {
		fields[fe.Field] = true
	}
	for _, f := range []string{"description", "price", "imageUrl", "category", "stockQuantity"} {
		assert.True(t, fields[f], f)
	}
	assert.False(t, fields["name"])

	rec = s.do(t, http.MethodPost, "/api/plants", map[string]interface{}{
		"name": "Negative", "description": "d", "price": 1, "imageUrl": "i", "category": "c", "stockQuantity": -1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	decode(t, rec, &body)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "stockQuantity", body.Errors[0].Field)
}

func TestPatchPlant(t *testing.T) {
	s := newTestServer(t, nil)
	target := s.plants(t)[0]

	rec := s.do(t, http.MethodPatch, "/api/plants/"+target.ID, map[string]interface{}{
		"price":         "31.5",
		"stockQuantity": "4",
		"_id":           "ffffffffffffffffffffffff",
		"unknown":       true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p domain.Plant
	decode(t, rec, &p)
	assert.Equal(t, target.ID, p.ID)
	assert.Equal(t, 31.5, p.Price)
	assert.Equal(t, 4, p.StockQuantity)
	assert.Equal(t, target.Name, p.Name)
	assert.Equal(t, 4, s.plants(t)[0].StockQuantity)

	for _, body := range []map[string]interface{}{
		{"name": ""},
		{"price": -3},
		{"stockQuantity": "lots"},
		{"stockQuantity": 2.5},
	} {
		rec = s.do(t, http.MethodPatch, "/api/plants/"+target.ID, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Equal(t, 4, s.plants(t)[0].StockQuantity)

	rec = s.do(t, http.MethodPatch, "/api/plants/0123456789abcdef01234567", map[string]interface{}{"price": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePlant(t *testing.T) {
	s := newTestServer(t, nil)
	target := s.plants(t)[2]

	rec := s.do(t, http.MethodDelete, "/api/plants/"+target.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Plant deleted", message(t, rec))
	assert.Len(t, s.plants(t), len(domain.CatalogSeed)-1)

	rec = s.do(t, http.MethodDelete, "/api/plants/"+target.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
