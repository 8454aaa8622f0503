package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/barcode-server/internal/apperr"
)

const maxRequestBodyBytes = 4 << 20 // 4 MB

// pathParam binds the chi URL parameter name into dest. Parameters arrive
// escaped and are decoded by the binder.
func pathParam(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return apperr.InvalidParameterErr.
			WithMsg(fmt.Sprintf("invalid path parameter %q", name)).
			WrapParent(err)
	}
	return nil
}

// queryParam binds the form-style query parameter name into dest. Optional
// parameters must be bound into a pointer.
func queryParam(r *http.Request, name string, required bool, dest any) error {
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dest); err != nil {
		return apperr.InvalidParameterErr.
			WithMsg(fmt.Sprintf("invalid query parameter %q", name)).
			WrapParent(err)
	}
	return nil
}

func decodeBody(r *http.Request, dest any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes)).Decode(dest); err != nil {
		return apperr.InvalidRequestBodyErr.WrapParent(err)
	}
	return nil
}
