// Package docs registers the OpenAPI document served under /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/api/v1/samples": {
            "get": {
                "description": "Current, min and max readings, the day's buckets, and the chart series starting at the oldest bucket.",
                "produces": ["application/json"],
                "tags": ["samples"],
                "summary": "Get samples",
                "responses": {
                    "200": {"description": "summary, samples, chart", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/v1/samples/reset-minmax": {
            "post": {
                "description": "Resets the running extrema and persists the buffer. Buckets are kept.",
                "produces": ["application/json"],
                "tags": ["samples"],
                "summary": "Reset min/max",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/v1/samples/clear": {
            "post": {
                "description": "Zeroes every bucket, resets extrema and persists the buffer.",
                "produces": ["application/json"],
                "tags": ["samples"],
                "summary": "Clear samples",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/v1/config": {
            "get": {
                "description": "The API key is never returned; has_api_key tells whether one is stored.",
                "produces": ["application/json"],
                "tags": ["config"],
                "summary": "Get config",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "put": {
                "description": "Partial update. The merged result is validated first; an invalid timezone or inverted relay thresholds reject the whole request.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["config"],
                "summary": "Update config",
                "parameters": [
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ConfigUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/v1/upload": {
            "post": {
                "description": "Publishes the current snapshot to the configured endpoint and returns the outcome.",
                "produces": ["application/json"],
                "tags": ["upload"],
                "summary": "Upload now",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.UploadStatus"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/v1/upload/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["upload"],
                "summary": "Last upload status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.UploadStatus"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/v1/logs": {
            "get": {
                "description": "Events oldest first. Times are RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD' (UTC); a date-only 'to' covers the whole day.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List device events",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range. Date-only treated as end of day.", "name": "to", "in": "query"},
                    {"enum": ["BUCKET_CHANGED", "SENSOR_RESET", "UPLOAD", "CONFIG_CHANGED", "RELAY_ON", "RELAY_OFF", "RESET"], "type": "string", "description": "Event type", "name": "type", "in": "query"},
                    {"type": "integer", "description": "Keep only the newest N events (1-1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, events", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handlers.ConfigUpdateRequest": {
            "type": "object",
            "properties": {
                "timezone_offset_hours": {"description": "Fixed UTC offset in hours, -12..12", "type": "integer", "example": 12},
                "relay_on_below_temp": {"description": "Heater relay switches on below this temperature", "type": "number", "example": 21},
                "relay_off_above_temp": {"description": "Heater relay switches off above this temperature", "type": "number", "example": 21.5},
                "cloud_endpoint_url": {"description": "Upload destination", "type": "string", "example": "https://example.com/readings"},
                "cloud_api_key": {"description": "Write-only upload API key", "type": "string", "example": "abcd1234"},
                "cloud_instance_id": {"description": "Raw JSON value sent as instanceId", "type": "string", "example": "1"}
            }
        },
        "models.UploadStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "status": {"type": "string", "enum": ["NOT_CONFIGURED", "DELIVERED", "FAILED"]},
                "attempts": {"type": "integer"},
                "message": {"type": "string"},
                "insecure": {"type": "boolean"},
                "attempted_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Temperature Monitor API",
	Description:      "Sampling history, device configuration and cloud upload control for a temperature monitor.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
