package user

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/upendo-connect/backend/internal/model/match"
)

// LocalID identifies the single on-device user.
const LocalID = "user_me"

// Profile is the onboarded user. Only one exists per process.
type Profile struct {
	ID           string         `json:"id"`
	Name         string         `json:"name" validate:"required,max=80"`
	Email        string         `json:"email" validate:"omitempty,email"`
	Phone        string         `json:"phone" validate:"required,min=9,max=16"`
	Age          int            `json:"age" validate:"required,gte=18,lte=99"`
	Gender       match.Gender   `json:"gender" validate:"required,gender"`
	InterestedIn []match.Gender `json:"interestedIn" validate:"required,min=1,dive,gender"`
	County       string         `json:"county" validate:"required,county"`
	Town         string         `json:"town" validate:"max=80"`
	Bio          string         `json:"bio" validate:"required,max=300"`
	IDPhoto      string         `json:"idPhoto" validate:"required"`
	IsVerified   bool           `json:"isVerified"`
	AvatarURL    string         `json:"avatarUrl"`
}

// Validator checks onboarding submissions.
type Validator struct {
	validate *validator.Validate
}

// profileRules are the custom tags used by Profile.
var profileRules = map[string]validator.Func{
	"gender": func(fl validator.FieldLevel) bool {
		_, ok := match.ParseGender(fl.Field().String())
		return ok
	},
	"county": func(fl validator.FieldLevel) bool {
		return match.IsCounty(fl.Field().String())
	},
}

// NewValidator registers the gender and county rules on top of the
// stock go-playground validator. It panics if a rule cannot be
// registered.
func NewValidator() *Validator {
	v := validator.New()
	if err := registerRules(v, profileRules); err != nil {
		panic(err)
	}
	return &Validator{validate: v}
}

func registerRules(v *validator.Validate, rules map[string]validator.Func) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q rule: %w", tag, err)
		}
	}
	return nil
}

// Validate returns a readable error listing every failed field.
func (v *Validator) Validate(p Profile) error {
	err := v.validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid profile: %s", strings.Join(fields, ", "))
}

// Complete finalises an onboarding draft: normalises labels, marks the
// ID verified and assigns an avatar for the user's gender.
func Complete(draft Profile) Profile {
	p := draft
	p.ID = LocalID
	p.Name = strings.TrimSpace(p.Name)
	p.Town = strings.TrimSpace(p.Town)
	p.Bio = strings.TrimSpace(p.Bio)
	if g, ok := match.ParseGender(string(p.Gender)); ok {
		p.Gender = g
	}
	interested := make([]match.Gender, 0, len(p.InterestedIn))
	for _, raw := range p.InterestedIn {
		if g, ok := match.ParseGender(string(raw)); ok {
			interested = append(interested, g)
		}
	}
	p.InterestedIn = interested
	p.IsVerified = true
	p.AvatarURL = avatarFor(p.Gender, rand.IntN(2) == 0)
	return p
}

func avatarFor(g match.Gender, coin bool) string {
	bucket := "women"
	switch g {
	case match.Male:
		bucket = "men"
	case match.Female:
		bucket = "women"
	default:
		if coin {
			bucket = "men"
		}
	}
	return fmt.Sprintf("https://randomuser.me/api/portraits/%s/50.jpg", bucket)
}
