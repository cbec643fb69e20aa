package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const (
	msgRequired     = "This field is required."
	msgBlank        = "This field may not be blank."
	msgNull         = "This field may not be null."
	msgNotString    = "Not a valid string."
	msgInvalidBool  = "Must be a valid boolean."
	msgInvalidValue = "Invalid value."
)

var (
	trueValues  = []string{"y", "Y", "yes", "Yes", "YES", "true", "True", "TRUE", "on", "On", "ON", "1"}
	falseValues = []string{"n", "N", "no", "No", "NO", "false", "False", "FALSE", "off", "Off", "OFF", "0"}
	nullValues  = []string{"", "null", "Null", "NULL"}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// requestError is a body that could not be read as a JSON object at all.
type requestError struct {
	detail   string
	nonField string
}

func (e *requestError) Error() string {
	if e.nonField != "" {
		return e.nonField
	}
	return e.detail
}

func (e *requestError) body() any {
	if e.nonField != "" {
		return map[string][]string{"non_field_errors": {e.nonField}}
	}
	return map[string]string{"detail": e.detail}
}

// form is a decoded JSON object body. Field accessors record type problems
// so that Validate can report them together with rule violations.
type form struct {
	raw  map[string]json.RawMessage
	errs *common.ValidationError
}

func readForm(w http.ResponseWriter, r *http.Request) (*form, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &requestError{detail: "Request body too large."}
		}
		return nil, &requestError{detail: "Could not read request body."}
	}

	f := &form{raw: map[string]json.RawMessage{}, errs: common.NewValidationError()}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return f, nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &requestError{detail: "JSON parse error - " + err.Error()}
	}
	if _, ok := v.(map[string]any); !ok {
		return nil, &requestError{nonField: fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", jsonKind(v))}
	}

	if err := json.Unmarshal(body, &f.raw); err != nil {
		return nil, &requestError{detail: "JSON parse error - " + err.Error()}
	}
	return f, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "list"
	case string:
		return "str"
	case float64:
		return "number"
	case bool:
		return "bool"
	default:
		return "null"
	}
}

// String returns the named field as a string. Missing fields yield "".
// Numbers are accepted and rendered as text; booleans, lists and objects
// are not.
func (f *form) String(name string) string {
	raw, ok := f.raw[name]
	if !ok {
		return ""
	}
	if string(raw) == "null" {
		f.errs.Add(name, msgNull)
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if text, ok := numberText(n); ok {
			return text
		}
	}
	f.errs.Add(name, msgNotString)
	return ""
}

// numberText renders a JSON number as text: integers verbatim, anything
// with a fraction or exponent as the shortest float text carrying a decimal
// point or exponent ("1.0", "2.5", "1e+16", "1.5e-05").
func numberText(n json.Number) (string, bool) {
	lit := n.String()
	if !strings.ContainsAny(lit, ".eE") {
		if strings.TrimLeft(lit, "-0") == "" {
			return "0", true
		}
		return lit, true
	}

	v, err := n.Float64()
	if math.IsInf(v, 0) {
		return lo.Ternary(v > 0, "inf", "-inf"), true
	}
	if err != nil {
		return "", false
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil {
		return "", false
	}
	if exp < -4 || exp >= 16 {
		return sci, true
	}
	text := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text, true
}

// Validate runs the struct tags of dto and returns every problem found so
// far as a *common.ValidationError, or nil.
func (f *form) Validate(dto any) error {
	err := validate.Struct(dto)

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			name := fe.Field()
			if len(f.errs.Fields[name]) > 0 {
				continue
			}
			_, present := f.raw[name]
			f.errs.Add(name, fieldMessage(fe, present))
		}
	} else if err != nil {
		return err
	}

	return f.errs.OrNil()
}

func fieldMessage(fe validator.FieldError, present bool) string {
	switch fe.Tag() {
	case "required":
		if !present {
			return msgRequired
		}
		return msgBlank
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return msgInvalidValue
	}
}

// parseOptionalBool reads a tri-state query flag. Null-ish values mean the
// filter is absent.
func parseOptionalBool(field, raw string) (*bool, error) {
	switch {
	case lo.Contains(nullValues, raw):
		return nil, nil
	case lo.Contains(trueValues, raw):
		return lo.ToPtr(true), nil
	case lo.Contains(falseValues, raw):
		return lo.ToPtr(false), nil
	}
	return nil, common.FieldError(field, msgInvalidBool)
}
