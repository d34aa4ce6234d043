package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kmfahey/nutritracker/internal/domain"
	"github.com/kmfahey/nutritracker/internal/usecase"
	"go.uber.org/zap"
)

// FoodService is the food catalogue surface the handlers need
type FoodService interface {
	ListFoods(ctx context.Context, page, size int) (usecase.Page[*domain.FoodRecord], error)
	SearchLocal(ctx context.Context, query string, page, size int) (usecase.Page[*domain.FoodRecord], error)
	GetLocal(ctx context.Context, fdcID int) (*domain.FoodRecord, error)
	SearchFDC(ctx context.Context, query string, page, size int) (usecase.Page[*domain.FoodStub], error)
	LookupFDC(ctx context.Context, fdcID int) (*domain.FoodRecord, error)
	ImportFDC(ctx context.Context, fdcID int) (*domain.FoodRecord, bool, error)
}

// RecipeService is the recipe surface the handlers need
type RecipeService interface {
	ListRecipes(ctx context.Context, page, size int) (usecase.Page[*domain.Recipe], error)
	CreateRecipe(ctx context.Context, name, owner string) (*usecase.RecipeView, error)
	GetRecipe(ctx context.Context, id string) (*usecase.RecipeView, error)
	PreviewIngredient(ctx context.Context, id string, fdcID int, servings float64) (*usecase.IngredientPreview, error)
	AddIngredient(ctx context.Context, id string, fdcID int, servings float64) (*usecase.RecipeView, error)
	RemoveIngredient(ctx context.Context, id string, index int) (*usecase.RecipeView, error)
	FinishRecipe(ctx context.Context, id string) (*usecase.RecipeView, error)
	DeleteRecipe(ctx context.Context, id string) error
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	foods   FoodService
	recipes RecipeService
	db      Pinger
	log     *zap.Logger
}

// NewHandler creates a new HTTP handler. Any service may be nil, in which
// case its endpoints answer 503.
func NewHandler(foods FoodService, recipes RecipeService, db Pinger, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		foods:   foods,
		recipes: recipes,
		db:      db,
		log:     log.Named("http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			h.log.Warn("health check ping failed", zap.Error(err))
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "nutritracker",
		"version": "1.0.0",
	})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFoodNotFound), errors.Is(err, domain.ErrRecipeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRecipeComplete):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFDCAPIFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrUnusableRecord),
		errors.Is(err, domain.ErrUnsupportedDataType),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidServings),
		errors.Is(err, domain.ErrInvalidServingSize),
		errors.Is(err, domain.ErrUnknownNutrient):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrIngredientIndex):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	code := statusFor(err)
	switch code {
	case http.StatusInternalServerError:
		h.log.Error("request failed", zap.String("request_id", requestID(c)), zap.Error(err))
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	case http.StatusBadGateway:
		h.log.Warn("FDC request failed", zap.String("request_id", requestID(c)), zap.Error(err))
		c.JSON(code, gin.H{"error": "FDC API temporarily unavailable"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notConfigured(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": what + " service not configured"})
}

// pageParams reads ?page= and ?page_size=; absent values are zero and the
// service applies its defaults.
func pageParams(c *gin.Context) (page, size int, ok bool) {
	var err error
	if raw := c.Query("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil {
			badRequest(c, "page must be an integer")
			return 0, 0, false
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil {
			badRequest(c, "page_size must be an integer")
			return 0, 0, false
		}
	}
	return page, size, true
}

func fdcIDParam(c *gin.Context, raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		badRequest(c, "fdc id must be a positive integer")
		return 0, false
	}
	return id, true
}

type pageResponse struct {
	Items         []map[string]interface{} `json:"items"`
	Page          int                      `json:"page"`
	PageSize      int                      `json:"page_size"`
	TotalItems    int                      `json:"total_items"`
	TotalPages    int                      `json:"total_pages"`
	NoMoreResults bool                     `json:"no_more_results"`
}

func renderPage[T any](p usecase.Page[T], render func(T) map[string]interface{}) pageResponse {
	items := make([]map[string]interface{}, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, render(item))
	}
	return pageResponse{
		Items:         items,
		Page:          p.Number,
		PageSize:      p.Size,
		TotalItems:    p.TotalItems,
		TotalPages:    p.TotalPages,
		NoMoreResults: p.NoMoreResults,
	}
}
