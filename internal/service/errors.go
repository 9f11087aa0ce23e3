package service

import "errors"

var (
	ErrNameRequired  = errors.New("name is required")
	ErrDateRequired  = errors.New("date is required")
	ErrInvalidColor  = errors.New("color must be #RRGGBB")
	ErrNoWidgetEvent = errors.New("no event to show in the widget")
)
