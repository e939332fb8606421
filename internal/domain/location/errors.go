package location

import (
	"errors"
	"fmt"
)

var (
	ErrLocationNotFound = errors.New("location not found")

	// ErrExternalService covers any failure of the place search provider
	ErrExternalService = errors.New("place search service error")

	// ErrNoResults is returned when the provider answered but matched nothing
	ErrNoResults = fmt.Errorf("%w: no results", ErrExternalService)

	ErrStore = errors.New("location store error")
)
