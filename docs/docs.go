// Package docs registers the OpenAPI description served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "DocuCortex OSS",
            "url": "https://github.com/custodia-labs/docucortex/issues"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/chat": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Answers from passages retrieved from the document. Harmful questions are rejected and unsafe answers are filtered.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Ask a question about a document",
                "parameters": [
                    {
                        "description": "Question",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/domain.ChatRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ChatResponse"}},
                    "400": {"description": "Invalid request or harmful question", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "413": {"description": "Request body too large", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/documents": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Extracts the text of a PDF or plain-text file and stores it under a new document ID",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Upload a document",
                "parameters": [
                    {
                        "type": "file",
                        "description": "PDF or plain-text file",
                        "name": "file",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.UploadResult"}},
                    "400": {"description": "Unsupported, malformed or empty file", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/documents/{id}/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns an LLM-generated summary of the whole document",
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Summarize a document",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Summary"}},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.ChatRequest": {
            "type": "object",
            "properties": {
                "documentId": {"type": "string", "example": "doc_a1b2c3d4"},
                "question": {"type": "string", "example": "What is the main conclusion?"}
            }
        },
        "domain.ChatResponse": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "documentId": {"type": "string"},
                "sources": {"type": "array", "items": {"$ref": "#/definitions/domain.Source"}}
            }
        },
        "domain.Source": {
            "type": "object",
            "properties": {
                "content": {"type": "string"}
            }
        },
        "domain.Summary": {
            "type": "object",
            "properties": {
                "documentId": {"type": "string", "example": "doc_a1b2c3d4"},
                "summary": {"type": "string"}
            }
        },
        "domain.UploadResult": {
            "type": "object",
            "properties": {
                "contentType": {"type": "string", "example": "application/pdf"},
                "documentId": {"type": "string", "example": "doc_a1b2c3d4"},
                "filename": {"type": "string", "example": "my_report.pdf"}
            }
        },
        "http.ErrorResponse": {
            "description": "API error response",
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "document not found"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "DocuCortex API",
	Description:      "Upload documents, then ask questions answered from their content.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
