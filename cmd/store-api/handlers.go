package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mcruz-dev/clothing-store/internal/auth"
	"github.com/mcruz-dev/clothing-store/internal/catalog"
	"github.com/mcruz-dev/clothing-store/internal/httpx"
	"github.com/mcruz-dev/clothing-store/internal/order"
	"github.com/mcruz-dev/clothing-store/internal/stats"
)

type orderPlacer interface {
	PlaceOrder(ctx context.Context, ident auth.Identity, items []order.ItemRequest) (*order.Receipt, error)
}

type orderHistory interface {
	ListOrders(ctx context.Context, customerID int64) ([]order.Summary, error)
	ListOrdersWithItems(ctx context.Context, customerID int64) ([]order.OrderWithItems, error)
}

type authService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.Customer, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.TokenResponse, error)
	Delete(ctx context.Context, customerID int64) error
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// placeOrderHandler godoc
// @Summary Place an order
// @Tags orders
// @Accept json
// @Produce json
// @Param request body order.PlaceOrderRequest true "items"
// @Success 201 {object} order.Receipt
// @Failure 400 {object} HTTPError
// @Failure 401 {object} HTTPError
// @Failure 404 {object} HTTPError
// @Failure 409 {object} HTTPError
// @Security BearerAuth
// @Router /orders [post]
func placeOrderHandler(svc orderPlacer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := httpx.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authenticated customer"})
			return
		}
		var req order.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
			return
		}
		receipt, err := svc.PlaceOrder(c.Request.Context(), ident, req.Items)
		if err != nil {
			status := orderErrorStatus(err)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, receipt)
	}
}

func orderErrorStatus(err error) int {
	var (
		invalid      *order.InvalidRequestError
		notFound     *order.ProductNotFoundError
		insufficient *order.InsufficientStockError
	)
	switch {
	case errors.Is(err, order.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, order.ErrLockTimeout):
		return http.StatusConflict
	case errors.As(err, &invalid), errors.As(err, &insufficient):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// listOrdersHandler godoc
// @Summary List the caller's past orders
// @Tags orders
// @Produce json
// @Param details query bool false "include nested items"
// @Success 200 {array} order.Summary
// @Failure 401 {object} HTTPError
// @Security BearerAuth
// @Router /orders [get]
func listOrdersHandler(history orderHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := httpx.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authenticated customer"})
			return
		}
		if c.Query("details") == "true" {
			orders, err := history.ListOrdersWithItems(c.Request.Context(), ident.CustomerID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list orders"})
				return
			}
			if orders == nil {
				orders = []order.OrderWithItems{}
			}
			c.JSON(http.StatusOK, orders)
			return
		}
		orders, err := history.ListOrders(c.Request.Context(), ident.CustomerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list orders"})
			return
		}
		if orders == nil {
			orders = []order.Summary{}
		}
		c.JSON(http.StatusOK, orders)
	}
}

// registerHandler godoc
// @Summary Register a customer account
// @Tags users
// @Accept json
// @Produce json
// @Param request body auth.RegisterRequest true "account"
// @Success 201 {object} map[string]any
// @Failure 400 {object} HTTPError
// @Router /users/register [post]
func registerHandler(svc authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
			return
		}
		customer, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrAlreadyExist), errors.Is(err, auth.ErrInvalidRegistration):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user_id": customer.ID, "email": customer.Email})
	}
}

// loginHandler godoc
// @Summary Log in and obtain a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param request body auth.LoginRequest true "credentials"
// @Success 200 {object} auth.TokenResponse
// @Failure 401 {object} HTTPError
// @Router /users/login [post]
func loginHandler(svc authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
			return
		}
		token, err := svc.Login(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		c.JSON(http.StatusOK, token)
	}
}

// deleteUserHandler godoc
// @Summary Delete a customer account (admin)
// @Tags users
// @Produce json
// @Param id path int true "customer id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} HTTPError
// @Security BearerAuth
// @Router /users/{id} [delete]
func deleteUserHandler(svc authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "User deleted"})
	}
}

// listProductsHandler godoc
// @Summary List catalog products
// @Tags catalog
// @Produce json
// @Success 200 {array} catalog.Product
// @Router /products [get]
func listProductsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := repo.ListProducts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list products"})
			return
		}
		if products == nil {
			products = []catalog.Product{}
		}
		c.JSON(http.StatusOK, products)
	}
}

// listCategoriesHandler godoc
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} catalog.Category
// @Router /categories [get]
func listCategoriesHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := repo.ListCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list categories"})
			return
		}
		if categories == nil {
			categories = []catalog.Category{}
		}
		c.JSON(http.StatusOK, categories)
	}
}

// getCategoryHandler godoc
// @Summary Get one category
// @Tags catalog
// @Produce json
// @Param id path int true "category id"
// @Success 200 {object} catalog.Category
// @Failure 404 {object} HTTPError
// @Router /categories/{id} [get]
func getCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		category, err := repo.GetCategory(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch category"})
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// createCategoryHandler godoc
// @Summary Create a category (admin)
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body catalog.CreateCategoryRequest true "category"
// @Success 201 {object} catalog.Category
// @Failure 400 {object} HTTPError
// @Security BearerAuth
// @Router /categories [post]
func createCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'name'"})
			return
		}
		category, err := repo.CreateCategory(c.Request.Context(), req.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create category"})
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// customerStatsHandler godoc
// @Summary Per-customer sales aggregates (admin)
// @Tags stats
// @Produce json
// @Success 200 {array} stats.CustomerStats
// @Security BearerAuth
// @Router /stats/customers [get]
func customerStatsHandler(repo stats.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.CustomerOrders(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// productStatsHandler godoc
// @Summary Per-product sales aggregates (admin)
// @Tags stats
// @Produce json
// @Success 200 {array} stats.ProductStats
// @Security BearerAuth
// @Router /stats/products [get]
func productStatsHandler(repo stats.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.ProductOrders(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// topProductsHandler godoc
// @Summary Best selling products by turnover (admin)
// @Tags stats
// @Produce json
// @Param n query int false "how many, max 10"
// @Success 200 {array} stats.ProductStats
// @Security BearerAuth
// @Router /stats/top-products [get]
func topProductsHandler(repo stats.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, _ := strconv.Atoi(c.DefaultQuery("n", "10"))
		out, err := repo.TopProducts(c.Request.Context(), n)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// recentSalesHandler godoc
// @Summary Sales within the recent window (admin)
// @Tags stats
// @Produce json
// @Param days query int false "window in days, max 90"
// @Success 200 {array} stats.RecentSale
// @Security BearerAuth
// @Router /stats/recent-sales [get]
func recentSalesHandler(repo stats.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
		out, err := repo.RecentSales(c.Request.Context(), days)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}
