package docs

import "github.com/swaggo/swag"

// ReadDoc renders the registered OpenAPI document.
func ReadDoc() (string, error) {
	return swag.ReadDoc(SwaggerInfo.InstanceName())
}
