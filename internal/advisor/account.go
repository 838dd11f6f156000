package advisor

import (
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Account is the trader context the model plans around.
type Account struct {
	AccountSize         float64 `json:"accountSize" default:"50000" validate:"gt=0"`
	CashAvailable       float64 `json:"cashAvailable" default:"30000" validate:"gte=0"`
	Mode                string  `json:"mode" default:"cash_secured" validate:"oneof=cash_secured margin"`
	ExperienceLevel     string  `json:"experienceLevel" default:"intermediate" validate:"oneof=beginner intermediate advanced"`
	TargetMonthlyIncome float64 `json:"targetMonthlyIncome" default:"1000" validate:"gte=0"`
	MarketOutlook       string  `json:"marketOutlook" default:"neutral" validate:"oneof=bullish neutral bearish"`
	TargetDelta         float64 `json:"targetDelta" default:"0.18" validate:"gt=0,lt=1"`
	TargetDTE           int     `json:"targetDte" default:"35" validate:"gte=1,lte=730"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Prepare fills unset fields with their defaults and validates the result.
func (a *Account) Prepare() error {
	if err := defaults.Set(a); err != nil {
		return fmt.Errorf("account defaults: %w", err)
	}
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid account: %s", describe(err))
	}
	return nil
}

// DefaultAccount returns an Account holding only default values.
func DefaultAccount() Account {
	var a Account
	_ = defaults.Set(&a)
	return a
}

// describe flattens validator errors into "field rule" pairs.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func (a Account) modeLabel() string {
	if a.Mode == "margin" {
		return "Margin"
	}
	return "Cash-Secured"
}
