package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/dandori-work/fcfs-booking/internal/store/model"
)

func cancelReasonValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return model.ValidCancelReason(val)
}
