package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gratitude API",
        "description": "Thank-you letters and password protected surveys. Every route is also served under /api.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Letters", "description": "Alias tolerant letter intake"},
        {"name": "Surveys", "description": "Password protected surveys and responses"},
        {"name": "Observability", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness check against the document store",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Document store unreachable"}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Metrics summary",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/letters": {
            "get": {
                "tags": ["Letters"],
                "summary": "List letters, newest first",
                "parameters": [
                    {"name": "countryId", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer", "minimum": 1, "maximum": 200},
                    {"name": "offset", "in": "query", "type": "integer", "minimum": 0}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LetterListEnvelope"}},
                    "400": {"description": "Invalid pagination", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["Letters"],
                "summary": "Submit a thank-you letter",
                "description": "Accepts name|sender, school|affiliation, letterContent|message and countryId|country.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LetterInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/LetterEnvelope"}},
                    "400": {"description": "Missing fields", "schema": {"$ref": "#/definitions/Envelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/surveys": {
            "get": {
                "tags": ["Surveys"],
                "summary": "List active surveys",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SurveyListEnvelope"}}}
            },
            "post": {
                "tags": ["Surveys"],
                "summary": "Create a password protected survey",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSurveyRequest"}}
                ],
                "responses": {
                    "200": {"description": "Created", "schema": {"$ref": "#/definitions/SurveyEnvelope"}},
                    "400": {"description": "Invalid survey", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/surveys/{id}": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "get": {
                "tags": ["Surveys"],
                "summary": "Get a survey",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SurveyEnvelope"}},
                    "400": {"description": "Malformed id", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "put": {
                "tags": ["Surveys"],
                "summary": "Update a survey after re-proving its password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSurveyRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/SurveyEnvelope"}},
                    "403": {"description": "Wrong password", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/surveys/{id}/verify": {
            "post": {
                "tags": ["Surveys"],
                "summary": "Verify a survey creation password",
                "description": "A wrong password is reported with success false and status 200.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifySurveyRequest"}}
                ],
                "responses": {
                    "200": {"description": "Outcome", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/surveys/{id}/responses": {
            "post": {
                "tags": ["Surveys"],
                "summary": "Submit answers to an active survey",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitResponseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Stored", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Invalid answers", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Missing or inactive survey", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/surveys/{id}/export": {
            "post": {
                "tags": ["Surveys"],
                "summary": "Download collected responses as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifySurveyRequest"}}
                ],
                "responses": {
                    "200": {"description": "CSV attachment", "schema": {"type": "file"}},
                    "403": {"description": "Wrong password", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/surveys/{id}/stats": {
            "get": {
                "tags": ["Surveys"],
                "summary": "Count responses collected by a survey",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "Envelope": {
            "type": "object",
            "required": ["success"],
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "message": {"type": "string"},
                "error": {"type": "string"},
                "code": {"type": "string"},
                "requiredFields": {"type": "array", "items": {"type": "string"}},
                "meta": {"type": "object"}
            }
        },
        "LetterInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "sender": {"type": "string"},
                "school": {"type": "string"},
                "affiliation": {"type": "string"},
                "grade": {"type": "string"},
                "letterContent": {"type": "string"},
                "message": {"type": "string"},
                "translatedContent": {"type": "string"},
                "countryId": {"type": "string"},
                "country": {"type": "string"}
            }
        },
        "Letter": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "sender": {"type": "string"},
                "school": {"type": "string"},
                "affiliation": {"type": "string"},
                "grade": {"type": "string"},
                "letterContent": {"type": "string"},
                "message": {"type": "string"},
                "originalContent": {"type": "string"},
                "translatedContent": {"type": "string"},
                "countryId": {"type": "string"},
                "country": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "LetterEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"$ref": "#/definitions/Letter"}
            }
        },
        "LetterListEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/Letter"}},
                "meta": {"type": "object"}
            }
        },
        "Question": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "prompt": {"type": "string"},
                "type": {"type": "string", "enum": ["text", "single_choice", "multi_choice", "rating"]},
                "options": {"type": "array", "items": {"type": "string"}},
                "required": {"type": "boolean"},
                "maxRating": {"type": "integer"}
            }
        },
        "Survey": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/Question"}},
                "isActive": {"type": "boolean"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "SurveyEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"$ref": "#/definitions/Survey"}
            }
        },
        "SurveyListEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/Survey"}},
                "meta": {"type": "object"}
            }
        },
        "CreateSurveyRequest": {
            "type": "object",
            "required": ["title", "questions"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/Question"}},
                "isActive": {"type": "boolean"},
                "creationSecret": {"type": "string"},
                "creationPassword": {"type": "string"}
            }
        },
        "UpdateSurveyRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {
                "password": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/Question"}},
                "isActive": {"type": "boolean"}
            }
        },
        "VerifySurveyRequest": {
            "type": "object",
            "properties": {"password": {"type": "string"}}
        },
        "SubmitResponseRequest": {
            "type": "object",
            "required": ["answers"],
            "properties": {
                "answers": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "questionId": {"type": "string"},
                            "value": {"type": "string"},
                            "values": {"type": "array", "items": {"type": "string"}},
                            "rating": {"type": "integer"}
                        }
                    }
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
