package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Project-Sylos/Canopy/internal/types"
)

// AddCategoryRequest represents the request to add a category.
// A missing or empty parent creates a new root.
type AddCategoryRequest struct {
	Name   string `json:"name" validate:"required,max=255"`
	Parent []int  `json:"parent" validate:"nodeid"`
}

// ParentID returns the requested parent, nil for a root
func (r AddCategoryRequest) ParentID() *types.NodeID {
	if len(r.Parent) != 2 {
		return nil
	}
	id := types.NodeID{r.Parent[0], r.Parent[1]}
	return &id
}

// RenameCategoryRequest represents the request to rename a category
type RenameCategoryRequest struct {
	ID   []int  `json:"id" validate:"required,len=2"`
	Name string `json:"name" validate:"required,max=255"`
}

// NodeID returns the identity of the node to rename
func (r RenameCategoryRequest) NodeID() types.NodeID {
	return types.NodeID{r.ID[0], r.ID[1]}
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("nodeid", validateOptionalNodeID)
}

// validateOptionalNodeID accepts an absent identity or a [tree_id, lft] pair
func validateOptionalNodeID(fl validator.FieldLevel) bool {
	l := fl.Field().Len()
	return l == 0 || l == 2
}

// Decode parses body as a JSON object into dst and validates it
func Decode(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return decodeError(err)
	}
	return Validate(dst)
}

// decodeError rewrites encoding/json failures into messages that name the
// offending field instead of Go types
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return errors.New("invalid JSON payload: expected an object")
		}
		return fmt.Errorf("%s must be %s", typeErr.Field, jsonKind(typeErr.Type))
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("invalid JSON payload at offset %d", syntaxErr.Offset)
	}
	return errors.New("invalid JSON payload")
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "a list"
	default:
		return "an object"
	}
}

// Validate checks dst against its validate tags and reports the first
// failing field in a readable form
func Validate(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "len", "nodeid":
		return fmt.Errorf("%s must be a [tree_id, lft] pair", fe.Field())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}
