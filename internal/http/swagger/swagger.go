package swagger

import (
	"context"
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"

	apicontract "github.com/tuanvumaihuynh/barcode-server/api-contract"
)

const (
	// swaggerURL is the URL path where the Swagger UI will be served
	swaggerURL = "/docs"

	// swaggerSpecURL is the URL path where the OpenAPI specification will be served
	swaggerSpecURL = "/docs/openapi.yml"
)

// Docs serves Swagger UI for the embedded API contract.
type Docs struct {
	page []byte
	spec []byte
}

// New validates the embedded contract and renders the UI page for it.
func New(ctx context.Context) (*Docs, error) {
	doc, err := apicontract.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("apicontract load: %w", err)
	}

	title := doc.Info.Title
	if doc.Info.Version != "" {
		title = fmt.Sprintf("%s %s", title, doc.Info.Version)
	}

	return &Docs{
		page: []byte(getTemplate(title, swaggerSpecURL)),
		spec: apicontract.GetSpecBytes(),
	}, nil
}

// Register mounts the UI and the raw contract on r.
func (d *Docs) Register(r chi.Router) {
	r.Get(swaggerURL, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(d.page)
	})

	r.Get(swaggerSpecURL, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(d.spec)
	})
}

func getTemplate(title, specPath string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>%s</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '%s',
      dom_id: '#swagger-ui',
      deepLinking: true,
      tryItOutEnabled: true,
      displayRequestDuration: true,
    });
  };
</script>
</body>
</html>
`, html.EscapeString(title), specPath)
}
