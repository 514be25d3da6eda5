package utils

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate returns the process-wide validator. Struct tags on the input
// models are checked before any network call goes out.
func Validate() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}
