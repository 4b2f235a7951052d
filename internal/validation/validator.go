package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

func New() *validator.Validate {
	v := validator.New()
	// Количество хранится строкой, числовой формат не навязывается,
	// но пустое или пробельное значение в коллекцию не попадает.
	_ = v.RegisterValidation("quantity", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}
