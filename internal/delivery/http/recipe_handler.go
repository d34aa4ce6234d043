package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kmfahey/nutritracker/internal/domain"
	"github.com/kmfahey/nutritracker/internal/usecase"
)

type createRecipeRequest struct {
	Name  string `json:"name" binding:"required"`
	Owner string `json:"owner"`
}

type addIngredientRequest struct {
	FdcID          int     `json:"fdc_id" binding:"required"`
	ServingsNumber float64 `json:"servings_number"`
}

func renderRecipe(r *domain.Recipe) map[string]interface{} {
	ingredients := make([]map[string]interface{}, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ingredients = append(ingredients, map[string]interface{}{
			"servings_number": ing.ServingsNumber,
			"food":            ing.Food.Serialize(),
		})
	}
	return map[string]interface{}{
		"id":          r.ID,
		"name":        r.Name,
		"owner":       r.Owner,
		"complete":    r.Complete,
		"ingredients": ingredients,
	}
}

// renderRecipeView adds the aggregated totals keyed by nutrient symbol
func renderRecipeView(v *usecase.RecipeView) map[string]interface{} {
	out := renderRecipe(v.Recipe)
	totals := make(map[string]interface{}, len(v.Totals))
	for _, total := range v.Totals {
		totals[total.Kind.Symbol] = total.Serialize()
	}
	out["totals"] = totals
	return out
}

// ListRecipes handles GET /recipes
func (h *Handler) ListRecipes(c *gin.Context) {
	if h.recipes == nil {
		notConfigured(c, "recipe")
		return
	}
	page, size, ok := pageParams(c)
	if !ok {
		return
	}
	result, err := h.recipes.ListRecipes(c.Request.Context(), page, size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderPage(result, renderRecipe))
}

// CreateRecipe handles POST /recipes
func (h *Handler) CreateRecipe(c *gin.Context) {
	if h.recipes == nil {
		notConfigured(c, "recipe")
		return
	}
	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: name is required")
		return
	}
	v, err := h.recipes.CreateRecipe(c.Request.Context(), req.Name, req.Owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, renderRecipeView(v))
}

// GetRecipe handles GET /recipes/:id
func (h *Handler) GetRecipe(c *gin.Context) {
	if h.recipes == nil {
		notConfigured(c, "recipe")
		return
	}
	v, err := h.recipes.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderRecipeView(v))
}

// DeleteRecipe handles DELETE /recipes/:id
func (h *Handler) DeleteRecipe(c *gin.Context) {
	if h.recipes == nil {
		notConfigured(c, "recipe")
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PreviewIngredient handles GET /recipes/:id/ingredients/preview?fdc_id=&servings=
func (h *Handler) PreviewIngredient(c *gin.Context) {
	if h.recipes == nil {
		notConfigured(c, "recipe")
		return
	}
	fdcID, ok := fdcIDParam(c, c.Query("fdc_id"))
	if !ok {
		return
	}
	servings, err := strconv.ParseFloat(c.Query("servings"), 64)
	if err != nil {
		badRequest(c, "servings must be a number")
		return
	}
	preview, err := h.recipes.PreviewIngredient(c.Request.Context(), c.Param("id"), fdcID, servings)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipe_id":       preview.RecipeID,
		"servings_number": preview.Servings,
		"food":            preview.Food.Serialize(),
	})
}

// AddIngredient handles POST /recipes/:id/ingredients
func (h *Handler) AddIngredient(c *gin.Context) {
	if h.recipes == nil {
		notConfigured(c, "recipe")
		return
	}
	var req addIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: fdc_id is required")
		return
	}
	v, err := h.recipes.AddIngredient(c.Request.Context(), c.Param("id"), req.FdcID, req.ServingsNumber)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderRecipeView(v))
}

// RemoveIngredient handles DELETE /recipes/:id/ingredients/:index
func (h *Handler) RemoveIngredient(c *gin.Context) {
	if h.recipes == nil {
		notConfigured(c, "recipe")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "index must be an integer")
		return
	}
	v, err := h.recipes.RemoveIngredient(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderRecipeView(v))
}

// FinishRecipe handles POST /recipes/:id/finish
func (h *Handler) FinishRecipe(c *gin.Context) {
	if h.recipes == nil {
		notConfigured(c, "recipe")
		return
	}
	v, err := h.recipes.FinishRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderRecipeView(v))
}
