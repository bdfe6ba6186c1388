package game

import "errors"

var (
	ErrWrongPhase         = errors.New("wrong_phase")
	ErrUnknownKind        = errors.New("unknown_ingredient_kind")
	ErrIngredientNotFound = errors.New("ingredient_not_found")
	ErrUnknownPlayer      = errors.New("unknown_player")
	ErrEmptyBuilder       = errors.New("empty_builder")
	ErrPizzaNotFound      = errors.New("pizza_not_found")
	ErrOvenOn             = errors.New("oven_on")
	ErrOvenFull           = errors.New("oven_full")
)
