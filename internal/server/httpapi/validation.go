package httpapi

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerValidations installs custom rules on gin's binding validator.
// "credential" enforces the platform's length policy for usernames and
// passwords: strictly longer than 7 characters.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("credential", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) > 7
		})
	}
}
