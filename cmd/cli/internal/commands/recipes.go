package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wolfeidau/recipebook/internal/models"
	"github.com/wolfeidau/recipebook/internal/recipes"
	"github.com/wolfeidau/recipebook/internal/state"
)

type RecipesCmd struct {
	List   RecipesListCmd   `cmd:"" help:"List recipes"`
	Show   RecipesShowCmd   `cmd:"" help:"Show a recipe"`
	Add    RecipesAddCmd    `cmd:"" help:"Add a recipe"`
	Edit   RecipesEditCmd   `cmd:"" help:"Edit a recipe"`
	Delete RecipesDeleteCmd `cmd:"" help:"Delete a recipe"`
	Shop   RecipesShopCmd   `cmd:"" help:"Add a recipe's ingredients to the shopping list"`
}

// withRecipes restores the session, loads the collection and runs fn.
func withRecipes(ctx context.Context, globals *Globals, fn func(*runtime, *recipes.Service) error) error {
	rt, err := startRuntime(ctx, globals)
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, err := rt.recipes()
	if err != nil {
		return err
	}

	if _, err := rt.restore(ctx); err != nil {
		return fmt.Errorf("login required: %w", err)
	}

	if _, err := svc.Load(ctx); err != nil {
		return fmt.Errorf("failed to fetch recipes: %w", err)
	}

	return fn(rt, svc)
}

type RecipesListCmd struct{}

func (l *RecipesListCmd) Run(ctx context.Context, globals *Globals) error {
	return withRecipes(ctx, globals, func(_ *runtime, svc *recipes.Service) error {
		out := globals.out()
		list := svc.List()

		if len(list) == 0 {
			fmt.Fprintln(out, "No recipes found.")
			return nil
		}

		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Recipes (%d)", len(list))))
		for i, r := range list {
			fmt.Fprintf(out, "%3d  %-30s %s\n", i, r.Name, mutedStyle.Render(r.Description))
		}
		return nil
	})
}

type RecipesShowCmd struct {
	Index int `arg:"" help:"Recipe index as shown by list"`
}

func (s *RecipesShowCmd) Run(ctx context.Context, globals *Globals) error {
	return withRecipes(ctx, globals, func(_ *runtime, svc *recipes.Service) error {
		r, err := svc.Get(s.Index)
		if err != nil {
			return err
		}

		out := globals.out()
		fmt.Fprintln(out, titleStyle.Render(r.Name))
		fmt.Fprintln(out, field("Description", r.Description))
		if r.ImagePath != "" {
			fmt.Fprintln(out, field("Image", r.ImagePath))
		}

		if len(r.Ingredients) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("No ingredients."))
			return nil
		}

		fmt.Fprintln(out, labelStyle.Render("Ingredients"))
		for _, ing := range r.Ingredients {
			fmt.Fprintf(out, "  - %s (%d)\n", ing.Name, ing.Amount)
		}
		return nil
	})
}

type RecipesAddCmd struct {
	Name        string   `help:"Recipe name" required:""`
	Description string   `help:"Recipe description"`
	ImagePath   string   `help:"Image URL"`
	Ingredient  []string `help:"Ingredient as name:amount, repeatable"`
}

func (a *RecipesAddCmd) Run(ctx context.Context, globals *Globals) error {
	ingredients, err := parseIngredients(a.Ingredient)
	if err != nil {
		return err
	}

	recipe := models.Recipe{
		Name:        a.Name,
		Description: a.Description,
		ImagePath:   a.ImagePath,
		Ingredients: ingredients,
	}

	return withRecipes(ctx, globals, func(_ *runtime, svc *recipes.Service) error {
		if err := svc.Add(ctx, recipe); err != nil {
			return fmt.Errorf("failed to store recipes: %w", err)
		}
		fmt.Fprintf(globals.out(), "Added %s.\n", recipe.Name)
		return nil
	})
}

type RecipesEditCmd struct {
	Index       int      `arg:"" help:"Recipe index as shown by list"`
	Name        string   `help:"New recipe name"`
	Description string   `help:"New recipe description"`
	ImagePath   string   `help:"New image URL"`
	Ingredient  []string `help:"Replace the ingredients, name:amount, repeatable"`
}

func (e *RecipesEditCmd) Run(ctx context.Context, globals *Globals) error {
	ingredients, err := parseIngredients(e.Ingredient)
	if err != nil {
		return err
	}

	return withRecipes(ctx, globals, func(_ *runtime, svc *recipes.Service) error {
		r, err := svc.Get(e.Index)
		if err != nil {
			return err
		}

		if e.Name != "" {
			r.Name = e.Name
		}
		if e.Description != "" {
			r.Description = e.Description
		}
		if e.ImagePath != "" {
			r.ImagePath = e.ImagePath
		}
		if len(ingredients) > 0 {
			r.Ingredients = ingredients
		}

		if err := svc.Update(ctx, e.Index, r); err != nil {
			return fmt.Errorf("failed to store recipes: %w", err)
		}
		fmt.Fprintf(globals.out(), "Updated %s.\n", r.Name)
		return nil
	})
}

type RecipesShopCmd struct {
	Index int `arg:"" help:"Recipe index as shown by list"`
}

func (s *RecipesShopCmd) Run(ctx context.Context, globals *Globals) error {
	return withRecipes(ctx, globals, func(rt *runtime, svc *recipes.Service) error {
		list, err := rt.shoppingList()
		if err != nil {
			return err
		}

		current, err := list.Load(ctx)
		if err != nil {
			return err
		}
		rt.state.Apply(state.SetShoppingList{Ingredients: current})

		items, err := svc.AddToShoppingList(s.Index)
		if err != nil {
			return err
		}

		if err := list.Save(ctx, items); err != nil {
			return err
		}

		printShoppingList(globals, items)
		return nil
	})
}

type RecipesDeleteCmd struct {
	Index int `arg:"" help:"Recipe index as shown by list"`
}

func (d *RecipesDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	return withRecipes(ctx, globals, func(_ *runtime, svc *recipes.Service) error {
		r, err := svc.Get(d.Index)
		if err != nil {
			return err
		}
		if err := svc.Delete(ctx, d.Index); err != nil {
			return fmt.Errorf("failed to store recipes: %w", err)
		}
		fmt.Fprintf(globals.out(), "Deleted %s.\n", r.Name)
		return nil
	})
}

func parseIngredients(raw []string) ([]models.Ingredient, error) {
	ingredients := make([]models.Ingredient, 0, len(raw))
	for _, r := range raw {
		ing, err := parseIngredient(r)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

func parseIngredient(raw string) (models.Ingredient, error) {
	name, amount, ok := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return models.Ingredient{}, fmt.Errorf("invalid ingredient %q, expected name:amount", raw)
	}

	n, err := strconv.Atoi(strings.TrimSpace(amount))
	if err != nil || n < 1 {
		return models.Ingredient{}, fmt.Errorf("invalid amount in ingredient %q", raw)
	}

	return models.Ingredient{Name: name, Amount: n}, nil
}
