package state

import (
	"github.com/wolfeidau/recipebook/internal/auth"
	"github.com/wolfeidau/recipebook/internal/models"
)

func reduce(st AppState, action any) AppState {
	st.Auth = reduceAuth(st.Auth, action)
	st.Recipes = reduceRecipes(st.Recipes, action)
	st.ShoppingList = reduceShoppingList(st.ShoppingList, action)

	if a, ok := action.(RouteChanged); ok {
		st.Route = a.Route
	}

	return st
}

func reduceAuth(st AuthState, action any) AuthState {
	switch a := action.(type) {
	case auth.LoginStart, auth.SignupStart:
		st.Loading = true
		st.Error = ""
	case auth.AuthenticateSuccess:
		user := a.Session()
		st.User = &user
		st.Error = ""
		st.Loading = false
	case auth.AuthenticateFailure:
		st.User = nil
		st.Error = a.Message
		st.Loading = false
	case auth.Logout:
		st.User = nil
		st.Error = ""
		st.Loading = false
	case ClearError:
		st.Error = ""
	}
	return st
}

func reduceRecipes(recipes []models.Recipe, action any) []models.Recipe {
	switch a := action.(type) {
	case SetRecipes:
		next := make([]models.Recipe, 0, len(a.Recipes))
		for _, r := range a.Recipes {
			next = append(next, r.Normalize())
		}
		return next
	case AddRecipe:
		next := make([]models.Recipe, 0, len(recipes)+1)
		next = append(next, recipes...)
		return append(next, a.Recipe.Normalize())
	case UpdateRecipe:
		if a.Index < 0 || a.Index >= len(recipes) {
			return recipes
		}
		next := append([]models.Recipe(nil), recipes...)
		next[a.Index] = a.Recipe.Normalize()
		return next
	case DeleteRecipe:
		if a.Index < 0 || a.Index >= len(recipes) {
			return recipes
		}
		next := make([]models.Recipe, 0, len(recipes)-1)
		next = append(next, recipes[:a.Index]...)
		return append(next, recipes[a.Index+1:]...)
	}
	return recipes
}

func reduceShoppingList(list []models.Ingredient, action any) []models.Ingredient {
	switch a := action.(type) {
	case SetShoppingList:
		return append([]models.Ingredient{}, a.Ingredients...)
	case AddIngredients:
		next := make([]models.Ingredient, 0, len(list)+len(a.Ingredients))
		next = append(next, list...)
		return append(next, a.Ingredients...)
	}
	return list
}
