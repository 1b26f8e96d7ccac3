package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// fieldErrors maps a request field to a readable message.
type fieldErrors map[string]any

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	v.RegisterAlias("page_limit", "min=1,max=100")
	return v
}

// validateStruct runs struct tag validation and returns nil when s is valid.
func validateStruct(s any) fieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fieldErrors{"request": err.Error()}
	}
	out := make(fieldErrors, len(ves))
	for _, fe := range ves {
		out[fieldPath(fe)] = fieldMessage(fe)
	}
	return out
}

// fieldPath drops the struct name: "items[0].compliance_type" instead of
// "updateComplianceRequest.items[0].compliance_type".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	isString := fe.Kind() == reflect.String
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "page_limit":
		return name + " must be between 1 and 100"
	case "min":
		switch {
		case isString:
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		case isList:
			return fmt.Sprintf("%s must contain at least %s item(s)", name, fe.Param())
		default:
			return fmt.Sprintf("%s must be greater than or equal to %s", name, fe.Param())
		}
	case "max":
		switch {
		case isString:
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		case isList:
			return fmt.Sprintf("%s must contain at most %s items", name, fe.Param())
		default:
			return fmt.Sprintf("%s must be less than or equal to %s", name, fe.Param())
		}
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return name + " must be a valid email address"
	case "uuid", "uuid4":
		return name + " must be a valid UUID"
	case "e164":
		return name + " must be a phone number in international format"
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
	}
}

func writeValidation(c *fiber.Ctx, fields fieldErrors) error {
	return writeError(c, fiber.StatusBadRequest, CodeValidation, "validation failed", fields)
}

// normalizer is implemented by request bodies that trim their fields before validation.
type normalizer interface {
	normalize()
}

// parseBody decodes the JSON body and validates it. It writes the error
// response itself and reports whether the handler should continue.
func parseBody(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, writeError(c, fiber.StatusBadRequest, CodeBadRequest, "request body must be valid JSON", nil)
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if fields := validateStruct(dst); fields != nil {
		return false, writeValidation(c, fields)
	}
	return true, nil
}

const defaultPageLimit = 20

// pageQuery is the limit/offset pair shared by list endpoints.
type pageQuery struct {
	Limit  int `query:"limit" validate:"page_limit"`
	Offset int `query:"offset" validate:"min=0"`
}

// queryInt reads an optional integer query parameter into errs.
func queryInt(c *fiber.Ctx, key string, def int, errs fieldErrors) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[key] = key + " must be an integer"
		return def
	}
	return n
}

// queryBool reads an optional boolean query parameter; absent means nil.
func queryBool(c *fiber.Ctx, key string, errs fieldErrors) *bool {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		errs[key] = key + " must be true or false"
		return nil
	}
	return &b
}

// queryList splits a comma separated query parameter.
func queryList(c *fiber.Ctx, key string) []string {
	var out []string
	for _, v := range strings.Split(c.Query(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parsePage reads and validates limit/offset. Type errors and range errors
// are reported together.
func parsePage(c *fiber.Ctx, defLimit int, errs fieldErrors) pageQuery {
	p := pageQuery{
		Limit:  queryInt(c, "limit", defLimit, errs),
		Offset: queryInt(c, "offset", 0, errs),
	}
	for k, v := range validateStruct(p) {
		if _, seen := errs[k]; !seen {
			errs[k] = v
		}
	}
	return p
}
