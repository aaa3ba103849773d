// Package validate wraps a shared go-playground/validator instance.
//
// Presets and settings carry `validate` struct tags; callers use Struct to
// check them and Var for single values.
package validate

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validatorInst
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}
