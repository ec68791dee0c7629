package web

import "github.com/go-playground/validator/v10"

// GetErrorMsg translates a validator field error into a human readable
// message to be appended to the field name.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return " must be greater or equal " + fe.Param()
	case "max":
		return " must be less or equal " + fe.Param()
	case "transactiontype":
		return " is not supported"
	}

	return " is invalid"
}
