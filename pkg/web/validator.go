package web

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/go-playground/validator/v10"
)

const (
	pinLength        = 4
	cardNumberLength = 16
)

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// ValidPin accepts exactly four ASCII digits.
var ValidPin validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return isDigits(s, pinLength)
	}

	return false
}

// ValidCardNumber accepts sixteen digits, whitespace ignored.
var ValidCardNumber validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return isDigits(strings.Join(strings.Fields(s), ""), cardNumberLength)
	}

	return false
}

// ValidMoney accepts positive amounts with at most two decimal places.
var ValidMoney validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := moneypkg.Parse(s)
		return err == nil
	}

	return false
}

// RegisterValidators adds the pin, cardnumber and money tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("pin", ValidPin); err != nil {
		return err
	}

	if err := v.RegisterValidation("cardnumber", ValidCardNumber); err != nil {
		return err
	}

	return v.RegisterValidation("money", ValidMoney)
}
