// Package docs holds the OpenAPI document served under /swagger. It follows
// the swag annotations on the handlers in internal/adminapi; update both
// together.
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
        "/assistant/chat": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["assistant"],
                "summary": "Ask the plant assistant",
                "parameters": [
                    {"description": "question", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/adminapi.chatPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/adminapi.chatReply"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}}
                }
            }
        },
        "/contact": {
            "get": {
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "List contact messages, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ContactMessage"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Submit the contact form",
                "parameters": [
                    {"description": "message", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/adminapi.contactPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.ContactMessage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/adminapi.ValidationResponse"}}
                }
            }
        },
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List orders with plants expanded",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/adminapi.OrderView"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Place an order",
                "parameters": [
                    {"type": "string", "description": "replay protection key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "cart", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/adminapi.orderPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}}
                }
            }
        },
        "/orders/test": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Check that order routes are mounted",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}}
                }
            }
        },
        "/orders/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Order book summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/report.OrderSummary"}}
                }
            }
        },
        "/orders/export.xlsx": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["reports"],
                "summary": "Export orders as a spreadsheet",
                "parameters": [
                    {"type": "string", "description": "start date", "name": "from", "in": "query"},
                    {"type": "string", "description": "end date", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}}
                }
            }
        },
        "/contact/export.csv": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["reports"],
                "summary": "Export contact messages as CSV",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        },
        "/system/metrics/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Time series points of a metric",
                "parameters": [
                    {"type": "string", "description": "metric name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "duration or date", "name": "since", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/metrics.Point"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get an order with plants expanded",
                "parameters": [
                    {"type": "string", "description": "order id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/adminapi.OrderView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}/status": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Overwrite an order status",
                "parameters": [
                    {"type": "string", "description": "order id", "name": "id", "in": "path", "required": true},
                    {"description": "status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/adminapi.statusPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}}
                }
            }
        },
        "/plants": {
            "get": {
                "produces": ["application/json"],
                "tags": ["plants"],
                "summary": "List the catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Plant"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["plants"],
                "summary": "Create a plant",
                "parameters": [
                    {"description": "plant", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/adminapi.plantPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Plant"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/adminapi.ValidationResponse"}}
                }
            }
        },
        "/plants/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["plants"],
                "summary": "Get a plant",
                "parameters": [
                    {"type": "string", "description": "plant id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Plant"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["plants"],
                "summary": "Delete a plant",
                "parameters": [
                    {"type": "string", "description": "plant id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["plants"],
                "summary": "Partially update a plant",
                "parameters": [
                    {"type": "string", "description": "plant id", "name": "id", "in": "path", "required": true},
                    {"description": "fields to change", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Plant"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/adminapi.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "adminapi.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "adminapi.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"},
                "value": {}
            }
        },
        "adminapi.ValidationResponse": {
            "type": "object",
            "properties": {
                "errors": {"type": "array", "items": {"$ref": "#/definitions/adminapi.FieldError"}}
            }
        },
        "adminapi.chatPayload": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "adminapi.chatReply": {
            "type": "object",
            "properties": {"reply": {"type": "string"}}
        },
        "adminapi.contactPayload": {
            "type": "object",
            "required": ["email", "message", "name"],
            "properties": {
                "email": {"type": "string"},
                "message": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "adminapi.orderPayload": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "object"}},
                "totalAmount": {"type": "number"},
                "user": {"$ref": "#/definitions/domain.Buyer"}
            }
        },
        "adminapi.statusPayload": {
            "type": "object",
            "properties": {"status": {"type": "string"}}
        },
        "adminapi.plantPayload": {
            "type": "object",
            "required": ["category", "description", "imageUrl", "name"],
            "properties": {
                "category": {"type": "string"},
                "description": {"type": "string"},
                "imageUrl": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "stockQuantity": {"type": "integer"}
            }
        },
        "adminapi.OrderView": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "orderNumber": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.Buyer"},
                "items": {"type": "array", "items": {"type": "object"}},
                "totalAmount": {"type": "number"},
                "status": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "domain.Buyer": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "domain.ContactMessage": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "message": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "domain.Order": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "createdAt": {"type": "string"},
                "items": {"type": "array", "items": {"type": "object"}},
                "orderNumber": {"type": "string"},
                "status": {"type": "string"},
                "totalAmount": {"type": "number"},
                "user": {"$ref": "#/definitions/domain.Buyer"}
            }
        },
        "metrics.Point": {
            "type": "object",
            "properties": {
                "timestamp": {"type": "integer"},
                "value": {"type": "number"}
            }
        },
        "report.OrderSummary": {
            "type": "object",
            "properties": {
                "orders": {"type": "integer"},
                "units": {"type": "integer"},
                "revenue": {"type": "string"},
                "meanOrderValue": {"type": "number"},
                "medianOrderValue": {"type": "number"},
                "maxOrderValue": {"type": "number"},
                "byStatus": {"type": "object", "additionalProperties": {"type": "integer"}},
                "flaggedTotals": {"type": "integer"}
            }
        },
        "domain.Plant": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "category": {"type": "string"},
                "createdAt": {"type": "string"},
                "description": {"type": "string"},
                "imageUrl": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "stockQuantity": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Plantee API",
	Description:      "Plant storefront backend: catalog, orders, contact and plant assistant.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
