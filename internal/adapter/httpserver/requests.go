package httpserver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "github.com/pscheid92/founderswall/internal/platform/errors"
)

type updateProfileRequest struct {
	DisplayName string `json:"display_name" form:"display_name" validate:"max=80"`
	Bio         string `json:"bio" form:"bio" validate:"max=500"`
	AvatarURL   string `json:"avatar_url" form:"avatar_url" validate:"omitempty,url,max=500"`
	WebsiteURL  string `json:"website_url" form:"website_url" validate:"omitempty,url,max=500"`
}

type createProductRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=120"`
	Tagline string `json:"tagline" form:"tagline" validate:"max=200"`
	URL     string `json:"url" form:"url" validate:"omitempty,url,max=500"`
}

type addPinRequest struct {
	Body string `json:"body" form:"body" validate:"required,max=1000"`
}

type submitLaunchRequest struct {
	ProductSlug string `json:"product_slug" form:"product_slug" validate:"required,max=200"`
}

type pledgeRequest struct {
	SupportTypes []string `json:"support_types" validate:"max=10,dive,required"`
}

type createStoryRequest struct {
	Title string `json:"title" form:"title" validate:"required,max=200"`
	Body  string `json:"body" form:"body" validate:"required,max=20000"`
}

type reactRequest struct {
	Emoji string `json:"emoji" form:"emoji" validate:"required"`
}

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindAndValidate decodes the request body into dst and checks its struct tags.
func (s *Server) bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	return s.validateStruct(dst)
}

func (s *Server) validateStruct(dst any) error {
	err := s.validate.Struct(dst)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.ValidationError("invalid request")
	}

	first := fieldErrs[0]
	return apperrors.ValidationError(describeFieldError(first)).WithField("field", first.Field())
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s long", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "uuid":
		return fmt.Sprintf("%s must be a UUID", fe.Field())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
