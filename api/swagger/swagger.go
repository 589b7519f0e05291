package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MBU Registration Engine",
        "description": "Offerings, preferences, assignments, and costs for merit badge events",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Offerings",
            "description": "Badge classes offered at an event"
        },
        {
            "name": "Preferences",
            "description": "Ranked, non-binding interest"
        },
        {
            "name": "Assignments",
            "description": "Capacity-checked enrollment"
        },
        {
            "name": "Costs",
            "description": "Registration pricing"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Database unreachable"
                    }
                }
            }
        },
        "/events/{eventId}/offerings": {
            "get": {
                "tags": [
                    "Offerings"
                ],
                "summary": "List offerings of an event",
                "parameters": [
                    {
                        "name": "eventId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/offerings": {
            "post": {
                "tags": [
                    "Offerings"
                ],
                "summary": "Create offering",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateOfferingRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid shape or payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Badge already offered",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/offerings/validate-shape": {
            "post": {
                "tags": [
                    "Offerings"
                ],
                "summary": "Check a duration and period set",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ShapeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid shape",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/offerings/{offeringId}": {
            "get": {
                "tags": [
                    "Offerings"
                ],
                "summary": "Get offering",
                "parameters": [
                    {
                        "name": "offeringId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "patch": {
                "tags": [
                    "Offerings"
                ],
                "summary": "Patch offering; requirement changes reconcile assignments",
                "parameters": [
                    {
                        "name": "offeringId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateOfferingRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid shape",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "500": {
                        "description": "Reconciliation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/offerings/{offeringId}/requirements": {
            "put": {
                "tags": [
                    "Offerings"
                ],
                "summary": "Replace requirement list",
                "parameters": [
                    {
                        "name": "offeringId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RequirementsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "500": {
                        "description": "Reconciliation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/offerings/{offeringId}/assignees": {
            "get": {
                "tags": [
                    "Offerings"
                ],
                "summary": "Offering roster",
                "parameters": [
                    {
                        "name": "offeringId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/offerings/{offeringId}/occupancy": {
            "get": {
                "tags": [
                    "Offerings"
                ],
                "summary": "Per-period seat usage",
                "parameters": [
                    {
                        "name": "offeringId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/registrations/{registrationId}/preferences": {
            "get": {
                "tags": [
                    "Preferences"
                ],
                "summary": "List preferences",
                "parameters": [
                    {
                        "name": "registrationId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Preferences"
                ],
                "summary": "Append preference",
                "parameters": [
                    {
                        "name": "registrationId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PreferenceRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Already preferred",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Preferences"
                ],
                "summary": "Replace preference list",
                "parameters": [
                    {
                        "name": "registrationId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/PreferenceRequest"
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Row rejected",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/registrations/{registrationId}/preferences/{offeringId}": {
            "delete": {
                "tags": [
                    "Preferences"
                ],
                "summary": "Remove preference",
                "parameters": [
                    {
                        "name": "registrationId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "offeringId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Removed"
                    }
                }
            }
        },
        "/registrations/{registrationId}/assignments": {
            "get": {
                "tags": [
                    "Assignments"
                ],
                "summary": "List assignments",
                "parameters": [
                    {
                        "name": "registrationId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Append assignment",
                "parameters": [
                    {
                        "name": "registrationId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AssignmentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Capacity exceeded or already assigned",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Replace assignment set atomically",
                "parameters": [
                    {
                        "name": "registrationId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/AssignmentRequest"
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Row rejected",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/registrations/{registrationId}/assignments/{offeringId}": {
            "patch": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Move assignment to other periods",
                "parameters": [
                    {
                        "name": "registrationId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "offeringId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdatePeriodsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Capacity exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Remove assignment",
                "parameters": [
                    {
                        "name": "registrationId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "offeringId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Removed"
                    }
                }
            }
        },
        "/registrations/{registrationId}/assignments/{offeringId}/completions": {
            "patch": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Mark requirements",
                "parameters": [
                    {
                        "name": "registrationId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "offeringId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateCompletionsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Unknown requirement",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/registrations/{registrationId}/cost": {
            "get": {
                "tags": [
                    "Costs"
                ],
                "summary": "Projected and actual cost",
                "parameters": [
                    {
                        "name": "registrationId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "basis",
                        "in": "query",
                        "type": "string",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Registration or event missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "ShapeRequest": {
            "type": "object",
            "properties": {
                "duration": {
                    "type": "integer"
                },
                "periods": {
                    "type": "array",
                    "items": {
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 3
                    }
                }
            }
        },
        "CreateOfferingRequest": {
            "type": "object",
            "required": [
                "event_id",
                "badge_id",
                "duration"
            ],
            "properties": {
                "event_id": {
                    "type": "string"
                },
                "badge_id": {
                    "type": "string"
                },
                "duration": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 3
                },
                "periods": {
                    "type": "array",
                    "items": {
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 3
                    }
                },
                "price": {
                    "type": "string",
                    "example": "10.00"
                },
                "size_limit": {
                    "type": "integer",
                    "minimum": 0
                },
                "requirements": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "UpdateOfferingRequest": {
            "type": "object",
            "properties": {
                "duration": {
                    "type": "integer"
                },
                "periods": {
                    "type": "array",
                    "items": {
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 3
                    }
                },
                "price": {
                    "type": "string"
                },
                "size_limit": {
                    "type": "integer"
                },
                "requirements": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "RequirementsRequest": {
            "type": "object",
            "properties": {
                "requirements": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "PreferenceRequest": {
            "type": "object",
            "required": [
                "offering_id",
                "rank"
            ],
            "properties": {
                "offering_id": {
                    "type": "string"
                },
                "rank": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 6
                }
            }
        },
        "AssignmentRequest": {
            "type": "object",
            "required": [
                "offering_id"
            ],
            "properties": {
                "offering_id": {
                    "type": "string"
                },
                "periods": {
                    "type": "array",
                    "items": {
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 3
                    }
                }
            }
        },
        "UpdatePeriodsRequest": {
            "type": "object",
            "properties": {
                "periods": {
                    "type": "array",
                    "items": {
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 3
                    }
                }
            }
        },
        "UpdateCompletionsRequest": {
            "type": "object",
            "required": [
                "completions"
            ],
            "properties": {
                "completions": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "boolean"
                    }
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "retryable": {
                    "type": "boolean"
                },
                "details": {
                    "type": "object"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
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
