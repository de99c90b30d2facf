// Package docs publica la especificación OpenAPI de la API (generada desde las
// anotaciones swag de los handlers) para la UI de Swagger en /docs.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var swaggerJSON string

// SwaggerInfo metadatos de la especificación.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Title:            "COAB Portal API",
	Description:      "Portal de clientes y panel de administración del comité de agua potable.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  swaggerJSON,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
