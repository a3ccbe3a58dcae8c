// Package docs registers the swagger specification for the ISP admin API.
// Code generated by swag. Regenerate with: swag init -g cmd/ispadmin/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/v1/clients": {
            "get": {"tags": ["clients"], "summary": "List clients", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["clients"], "summary": "Register client", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/plans": {
            "get": {"tags": ["plans"], "summary": "List plans", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["plans"], "summary": "Create plan", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/users": {
            "get": {"tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["users"], "summary": "Create user", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/storage/status": {
            "get": {"tags": ["storage"], "summary": "Storage connectivity status", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/storage/reconnect": {
            "post": {"tags": ["storage"], "summary": "Force a reconnection attempt", "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ISP Admin API",
	Description:      "Client registration and administrative back-office for an internet service provider.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
