// Package docs registers the OpenAPI document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/pong": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            }
        },
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/model.User"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login user",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Revokes the bearer token if one is presented. Always succeeds.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/notas": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notas"],
                "summary": "List the caller's notas",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Note"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notas"],
                "summary": "Create a nota",
                "parameters": [
                    {"description": "Nota data, image as base64", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.NoteInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Note"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/notas/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notas"],
                "summary": "Get a nota",
                "parameters": [
                    {"type": "integer", "description": "Nota ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Note"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notas"],
                "summary": "Update a nota",
                "parameters": [
                    {"type": "integer", "description": "Nota ID", "name": "id", "in": "path", "required": true},
                    {"description": "Nota data, image as base64", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.NoteInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Note"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["notas"],
                "summary": "Delete a nota",
                "parameters": [
                    {"type": "integer", "description": "Nota ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "messages": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "handler.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "handler.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "model.Note": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "description": {"type": "string"},
                "expiration_date": {"type": "string"},
                "id": {"type": "integer"},
                "image_path": {"type": "string"},
                "labels": {"type": "string"},
                "title": {"type": "string"},
                "updated_at": {"type": "string"},
                "user_id": {"type": "integer"}
            }
        },
        "model.User": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "service.NoteInput": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "description": {"type": "string"},
                "expiration_date": {"type": "string"},
                "image": {"type": "string"},
                "labels": {"type": "string"},
                "title": {"type": "string", "maxLength": 255}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Notas API",
	Description:      "Multi-tenant notes API with bearer token authentication and base64 image uploads.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
