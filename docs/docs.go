// Package docs registers the Swagger spec served at /swagger/*any
// (cmd/server/main.go's @title/@tag.name header comments, router.go).
// Hand-maintained in place of a `swag init` run, in the shape that
// command generates, since no toolchain run produces it here. The
// template carries the info block, security definitions and tags; its
// paths object is empty, so the operations described by the swaggo doc
// comments on internal/httpapi's handlers are not listed.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{.Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {},
    "securityDefinitions": {
        "AdminAuth": {
            "type": "apiKey",
            "name": "x-api-key",
            "in": "header"
        },
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type \"Bearer\" followed by a space and the end-user JWT."
        }
    },
    "tags": [
        {"name": "accounts", "description": "Tenant account registration and configuration"},
        {"name": "users", "description": "Users owned by an account"},
        {"name": "calendars", "description": "Per-user event containers"},
        {"name": "events", "description": "Recurring and single calendar events"},
        {"name": "schedules", "description": "Weekly availability templates"},
        {"name": "services", "description": "Bookable resources composed of users' availability"}
    ]
}`

// SwaggerInfo holds exported Swagger metadata, filled in from
// cmd/server/main.go's doc-comment header at the same values.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Scheduler Module API",
	Description:      "Multi-tenant calendar-and-booking backend: recurrence expansion, availability, booking slots, and reminder webhooks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
