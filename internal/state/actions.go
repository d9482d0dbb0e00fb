package state

import "github.com/wolfeidau/recipebook/internal/models"

// SetRecipes replaces the whole collection, typically after a fetch.
type SetRecipes struct {
	Recipes []models.Recipe
}

// AddRecipe appends a recipe.
type AddRecipe struct {
	Recipe models.Recipe
}

// UpdateRecipe replaces the recipe at Index. Out of range indexes are ignored.
type UpdateRecipe struct {
	Index  int
	Recipe models.Recipe
}

// DeleteRecipe removes the recipe at Index. Out of range indexes are ignored.
type DeleteRecipe struct {
	Index int
}

// ClearError drops the last authentication error message.
type ClearError struct{}

// RouteChanged records the route the session lifecycle navigated to.
type RouteChanged struct {
	Route string
}

// SetShoppingList replaces the shopping list, typically after loading it from disk.
type SetShoppingList struct {
	Ingredients []models.Ingredient
}

// AddIngredients appends ingredients to the shopping list.
type AddIngredients struct {
	Ingredients []models.Ingredient
}
