package types

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest represents the request body for obtaining a token
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

type DeleteAccountRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
}

// RecipeIngredientRequest is one {id, amount} pair of a recipe payload.
type RecipeIngredientRequest struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"gte=1"`
}

// RecipeRequest is the body of recipe create and update. Image is a base64
// payload, optionally as a data URI; it may be omitted on update.
type RecipeRequest struct {
	Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []uint                    `json:"tags" validate:"dive,required"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name" validate:"required,max=200"`
	Text        string                    `json:"text" validate:"required"`
	CookingTime int                       `json:"cooking_time" validate:"gte=1,lte=1440"`
}
