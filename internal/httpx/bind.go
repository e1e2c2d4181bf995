package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/agromarket/internal/domain"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 20

// bindAndValidate decodes a JSON body into out and runs struct validation.
// On failure it writes a 400 response and returns the error for the handler to short-circuit.
func bindAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_request_body",
			Message: err.Error(),
		})
		return err
	}

	if err := v.Struct(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "validation_failed",
			Fields: validationErrorsToMap(err),
		})
		return err
	}

	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = fmt.Sprintf("failed on %q", fe.Tag())
		}
		return out
	}

	out["error"] = err.Error()
	return out
}

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// pageRequest reads page and size query parameters; missing values fall back to defaults.
func pageRequest(r *http.Request) (domain.PageRequest, error) {
	page, err := intQuery(r, "page", 0)
	if err != nil {
		return domain.PageRequest{}, err
	}

	size, err := intQuery(r, "size", domain.DefaultPageSize)
	if err != nil {
		return domain.PageRequest{}, err
	}

	return domain.PageRequest{Number: page, Size: size}.Normalize(), nil
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: query parameter %s is not a number", domain.ErrValidation, name)
	}

	return n, nil
}
