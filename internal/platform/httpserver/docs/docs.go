// Package docs registers the OpenAPI document served under /swagger/.
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
        "/v1/students": {
            "get": {
                "produces": ["application/json"],
                "tags": ["identities"],
                "summary": "List registered students",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentsResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["identities"],
                "summary": "Register the caller as a student",
                "parameters": [
                    {"$ref": "#/parameters/Caller"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/IdentityResponse"}},
                    "409": {"description": "already_registered", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/tas": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["identities"],
                "summary": "Register the caller into the lowest free TA slot",
                "parameters": [
                    {"$ref": "#/parameters/Caller"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterTARequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/IdentityResponse"}},
                    "403": {"description": "invalid_secret", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "already_registered or slots_full", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/identities/{address}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["identities"],
                "summary": "Report the role of any address",
                "parameters": [{"name": "address", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/IdentityResponse"}}}
            }
        },
        "/v1/roster": {
            "get": {
                "produces": ["application/json"],
                "tags": ["identities"],
                "summary": "Professor and TA slot occupants",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RosterResponse"}}}
            }
        },
        "/v1/presentations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["presentations"],
                "summary": "List presentation ids in creation order",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/PresentationIDsResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["presentations"],
                "summary": "Create a presentation for a registered student",
                "parameters": [
                    {"$ref": "#/parameters/Caller"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePresentationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/PresentationResponse"}},
                    "403": {"description": "unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "not_found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "422": {"description": "invalid_category", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/presentations/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["presentations"],
                "summary": "Presentation record with its current tally",
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PresentationResponse"}},
                    "404": {"description": "not_found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/presentations/{id}/votes/{voter}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Cast a professor, ta or student vote",
                "parameters": [
                    {"$ref": "#/parameters/Caller"},
                    {"$ref": "#/parameters/ID"},
                    {"name": "voter", "in": "path", "required": true, "type": "string", "enum": ["professor", "ta", "student"]},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PresentationResponse"}},
                    "409": {"description": "invalid_state or already_voted", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/presentations/{id}/finalize": {
            "post": {
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Tally the blocks and commit the outcome",
                "parameters": [{"$ref": "#/parameters/Caller"}, {"$ref": "#/parameters/ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PresentationResponse"}},
                    "409": {"description": "invalid_state", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/presentations/{id}/override": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Resolve a tie to PASS or FAIL",
                "parameters": [
                    {"$ref": "#/parameters/Caller"},
                    {"$ref": "#/parameters/ID"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PresentationResponse"}},
                    "409": {"description": "invalid_state", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "parameters": {
        "Caller": {"name": "X-Caller-Address", "in": "header", "required": true, "type": "string"},
        "ID": {"name": "id", "in": "path", "required": true, "type": "integer", "format": "int64"}
    },
    "definitions": {
        "ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "RegisterStudentRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}}
        },
        "RegisterTARequest": {
            "type": "object",
            "required": ["name", "secret_code"],
            "properties": {"name": {"type": "string"}, "secret_code": {"type": "string"}}
        },
        "IdentityResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "role": {"type": "string", "enum": ["NONE", "STUDENT", "TA", "PROF"]},
                "role_code": {"type": "integer"},
                "name": {"type": "string"},
                "registered": {"type": "boolean"},
                "ta_slot": {"type": "integer"}
            }
        },
        "RosterResponse": {
            "type": "object",
            "properties": {"professor": {"type": "string"}, "ta1": {"type": "string"}, "ta2": {"type": "string"}}
        },
        "StudentsResponse": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {"type": "object", "properties": {"address": {"type": "string"}, "name": {"type": "string"}}}
                }
            }
        },
        "CreatePresentationRequest": {
            "type": "object",
            "required": ["category", "student_address"],
            "properties": {"category": {"type": "string"}, "student_address": {"type": "string"}}
        },
        "PresentationIDsResponse": {
            "type": "object",
            "properties": {"ids": {"type": "array", "items": {"type": "integer", "format": "int64"}}}
        },
        "VoteRequest": {
            "type": "object",
            "required": ["pass"],
            "properties": {"pass": {"type": "boolean"}}
        },
        "PresentationResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "format": "int64"},
                "category": {"type": "string"},
                "student_name": {"type": "string"},
                "student_address": {"type": "string"},
                "created_at": {"type": "string"},
                "result": {"type": "string", "enum": ["IN_PROGRESS", "PASS", "FAIL", "TIE_PENDING_OVERRIDE"]},
                "result_code": {"type": "integer"},
                "professor_vote": {"type": "string"},
                "ta1_vote": {"type": "string"},
                "ta2_vote": {"type": "string"},
                "student_pass": {"type": "integer"},
                "student_fail": {"type": "integer"},
                "student_block": {"type": "string"},
                "tally": {
                    "type": "object",
                    "properties": {
                        "pass_blocks": {"type": "integer"},
                        "fail_blocks": {"type": "integer"},
                        "participating": {"type": "integer"}
                    }
                },
                "finalized_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Class Consensus API",
	Description:      "Presentation grading by professor, TA and student consensus.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
