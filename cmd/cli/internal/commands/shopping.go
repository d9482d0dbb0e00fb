package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/recipebook/internal/models"
	"github.com/wolfeidau/recipebook/internal/shopping"
)

type ShoppingCmd struct {
	List  ShoppingListCmd  `cmd:"" help:"Show the shopping list"`
	Clear ShoppingClearCmd `cmd:"" help:"Empty the shopping list"`
}

type ShoppingListCmd struct{}

func (l *ShoppingListCmd) Run(ctx context.Context, globals *Globals) error {
	list, err := openShoppingList(globals)
	if err != nil {
		return err
	}

	items, err := list.Load(ctx)
	if err != nil {
		return err
	}

	printShoppingList(globals, items)
	return nil
}

type ShoppingClearCmd struct{}

func (c *ShoppingClearCmd) Run(ctx context.Context, globals *Globals) error {
	list, err := openShoppingList(globals)
	if err != nil {
		return err
	}

	if err := list.Save(ctx, nil); err != nil {
		return err
	}

	fmt.Fprintln(globals.out(), "Shopping list cleared.")
	return nil
}

// openShoppingList needs no identity settings, so the API key is not required.
func openShoppingList(globals *Globals) (*shopping.FileList, error) {
	cfg, err := globals.resolveConfig()
	if err != nil {
		return nil, err
	}
	return shopping.NewFileList(cfg.SessionDir)
}

func printShoppingList(globals *Globals, items []models.Ingredient) {
	out := globals.out()

	if len(items) == 0 {
		fmt.Fprintln(out, "Shopping list is empty.")
		return
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Shopping list (%d)", len(items))))
	for _, ing := range items {
		fmt.Fprintf(out, "  - %s (%d)\n", ing.Name, ing.Amount)
	}
}
