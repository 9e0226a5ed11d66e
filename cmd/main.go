// cmd/main.go
package main

import (
	"lead-crm-api/app"
)

// @title           Lead-CRM API
// @version         1.0
// @description     Lead management backend with token-based authentication.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
