package handler

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	serviceName    = "CRT Backend"
	serviceVersion = "1.0.0"
	statusOK       = "OK"

	contentTypeHTML = "text/html; charset=utf-8"
)

//go:embed openapi.json
var openAPIDocument []byte

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>CRT Backend - Swagger UI</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({url: "/openapi.json", dom_id: "#swagger-ui", persistAuthorization: true});
  </script>
</body>
</html>`

const redocPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>CRT Backend - ReDoc</title>
</head>
<body>
  <redoc spec-url="/openapi.json"></redoc>
  <script src="https://cdn.jsdelivr.net/npm/redoc@2/bundles/redoc.standalone.js"></script>
</body>
</html>`

func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  statusOK,
		Service: serviceName,
		Version: serviceVersion,
	})
}

func OpenAPI(c echo.Context) error {
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, openAPIDocument)
}

func SwaggerUI(c echo.Context) error {
	return c.Blob(http.StatusOK, contentTypeHTML, []byte(swaggerUIPage))
}

func ReDoc(c echo.Context) error {
	return c.Blob(http.StatusOK, contentTypeHTML, []byte(redocPage))
}
