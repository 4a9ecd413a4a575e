// Package docs serves the hand-maintained OpenAPI description of the API.
package docs

import _ "embed"

//go:embed openapi.json
var OpenAPISpec []byte
