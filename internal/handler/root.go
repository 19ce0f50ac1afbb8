package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// landingHTML is the static welcome page served at the site root.
// It points visitors at the API documentation; everything else in
// the service is JSON.
const landingHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Restaurante mexicano</title>
</head>
<body>
	<h1 style="color: green; display: inline-block;">Restaurante</h1>
	<h1 style="color: red; display: inline-block;">mexicano</h1>
	<p>Book a table at any of our branches.</p>
	<div>
		<a href="/v1/restaurants">Browse restaurants</a>
	</div>
</body>
</html>
`

// Root serves the HTML landing page.
func Root(c echo.Context) error {
	return c.HTML(http.StatusOK, landingHTML)
}
