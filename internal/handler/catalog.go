package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// CatalogHandler exposes the restaurant catalog.  Listing and detail
// are public (guests browse before registering); onboarding a new
// branch requires the OWNER role.
type CatalogHandler struct {
	Restaurants *repository.RestaurantRepo
}

// NewCatalogHandler constructs a CatalogHandler.  The repository
// must be non-nil.
func NewCatalogHandler(restaurants *repository.RestaurantRepo) *CatalogHandler {
	if restaurants == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Restaurants: restaurants}
}

// List handles GET /v1/restaurants.  It returns every branch with
// its table counts so clients can show availability up front.
func (h *CatalogHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Restaurants.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/restaurants/:id and returns one branch joined
// with its inventory.
func (h *CatalogHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	info, err := h.Restaurants.GetInfo(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, info)
}

type createRestaurantReq struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	TotalTables uint32 `json:"total_tables"`
}

// Create handles POST /v1/restaurants (OWNER only).  The restaurant
// and its inventory row are inserted in one transaction with
// free_tables starting at total_tables.
func (h *CatalogHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRestaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" || req.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and address required"})
	}
	if req.TotalTables == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_tables must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rest := model.Restaurant{Name: req.Name, Address: req.Address, OwnerID: ownerID}
	if err := h.Restaurants.Create(ctx, &rest, req.TotalTables); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create restaurant failed"})
	}
	return c.JSON(http.StatusCreated, repository.RestaurantInfo{
		ID:          rest.ID,
		Name:        rest.Name,
		Address:     rest.Address,
		TotalTables: req.TotalTables,
		FreeTables:  req.TotalTables,
	})
}
