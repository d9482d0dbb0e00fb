package recipes

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfeidau/recipebook/internal/models"
	"github.com/wolfeidau/recipebook/internal/state"
)

// ErrRecipeNotFound is returned when an index does not select a recipe.
var ErrRecipeNotFound = errors.New("recipe not found")

// Syncer reads and writes the remote collection.
type Syncer interface {
	Fetch(ctx context.Context) ([]models.Recipe, error)
	Store(ctx context.Context, recipes []models.Recipe) error
}

var _ Syncer = (*Client)(nil)

// Service keeps the state container and the remote collection in step.
type Service struct {
	syncer Syncer
	state  *state.Store
}

// NewService creates a service applying changes to st.
func NewService(syncer Syncer, st *state.Store) *Service {
	return &Service{syncer: syncer, state: st}
}

// Load fetches the remote collection into state.
func (s *Service) Load(ctx context.Context) ([]models.Recipe, error) {
	recipes, err := s.syncer.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.state.Apply(state.SetRecipes{Recipes: recipes})
	return s.List(), nil
}

// Save writes the collection held in state.
func (s *Service) Save(ctx context.Context) error {
	return s.syncer.Store(ctx, s.List())
}

// List returns the recipes currently held in state.
func (s *Service) List() []models.Recipe {
	return state.Select(s.state, func(st state.AppState) []models.Recipe { return st.Recipes })
}

// Get selects a recipe by its position in the collection.
func (s *Service) Get(index int) (models.Recipe, error) {
	recipes := s.List()
	if index < 0 || index >= len(recipes) {
		return models.Recipe{}, fmt.Errorf("%w: index %d", ErrRecipeNotFound, index)
	}
	return recipes[index], nil
}

// Add appends a recipe and saves the collection.
func (s *Service) Add(ctx context.Context, r models.Recipe) error {
	return s.mutate(ctx, state.AddRecipe{Recipe: r})
}

// Update replaces the recipe at index and saves the collection.
func (s *Service) Update(ctx context.Context, index int, r models.Recipe) error {
	if _, err := s.Get(index); err != nil {
		return err
	}
	return s.mutate(ctx, state.UpdateRecipe{Index: index, Recipe: r})
}

// Delete removes the recipe at index and saves the collection.
func (s *Service) Delete(ctx context.Context, index int) error {
	if _, err := s.Get(index); err != nil {
		return err
	}
	return s.mutate(ctx, state.DeleteRecipe{Index: index})
}

// AddToShoppingList appends the ingredients of the recipe at index to the
// shopping list held in state and returns the resulting list.
func (s *Service) AddToShoppingList(index int) ([]models.Ingredient, error) {
	r, err := s.Get(index)
	if err != nil {
		return nil, err
	}
	s.state.Apply(state.AddIngredients{Ingredients: r.Ingredients})
	return state.Select(s.state, func(st state.AppState) []models.Ingredient { return st.ShoppingList }), nil
}

// mutate applies action and saves the result. The previous collection is
// restored when the save fails.
func (s *Service) mutate(ctx context.Context, action any) error {
	previous := s.List()
	s.state.Apply(action)

	if err := s.Save(ctx); err != nil {
		s.state.Apply(state.SetRecipes{Recipes: previous})
		return err
	}
	return nil
}
