package models

// Ingredient is a named quantity used by a recipe.
type Ingredient struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

// Recipe is one entry of the recipe collection stored in the document database.
type Recipe struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	ImagePath   string       `json:"imagePath"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Normalize returns a copy with a non-nil ingredient list.
func (r Recipe) Normalize() Recipe {
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	return r
}
