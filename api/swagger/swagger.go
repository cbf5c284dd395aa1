package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduTrack Term Engine API",
        "description": "Term evaluation, result approval and class progression",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Reports", "description": "Weighted term reports and exports"},
        {"name": "Weights", "description": "Per-term assignment/exam weights"},
        {"name": "Approvals", "description": "Result visibility gate per class and term"},
        {"name": "Promotions", "description": "Cohort moves between classes"},
        {"name": "ClassHistory", "description": "Student placement ledger"}
    ],
    "paths": {
        "/students/{id}/term-report": {
            "get": {
                "tags": ["Reports"],
                "summary": "Student term report",
                "description": "Non-staff callers receive an empty pending report until the class/term is approved.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string", "enum": ["FIRST", "SECOND", "THIRD", "FINAL"]},
                    {"name": "classId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TermReportEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Stored data violates an invariant", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/term-report/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a student term report",
                "produces": ["application/pdf", "text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/class-history": {
            "get": {
                "tags": ["ClassHistory"],
                "summary": "Student class history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Ledger conflicts with placement", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/class-history/repair": {
            "post": {
                "tags": ["ClassHistory"],
                "summary": "Reconcile class history with current placement",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Ledger conflicts with placement", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects/{id}/term-weights/{term}": {
            "put": {
                "tags": ["Weights"],
                "summary": "Set term weights for a subject",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetTermWeightRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid weights", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Weights"],
                "summary": "Remove a term weight override",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "No override", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/approvals/{term}": {
            "get": {
                "tags": ["Approvals"],
                "summary": "Approval state for a class and term",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Approvals"],
                "summary": "Approve or revoke results",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ToggleApprovalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/promotions": {
            "post": {
                "tags": ["Promotions"],
                "summary": "Promote students to another class",
                "description": "When the ledger transaction fails and fallback is enabled only placement moves; the response carries fallback=true.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PromoteStudentsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown class or student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Placement changed concurrently", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SetTermWeightRequest": {
            "type": "object",
            "required": ["assignment_weight", "exam_weight"],
            "properties": {
                "assignment_weight": {"type": "number", "minimum": 0, "maximum": 1},
                "exam_weight": {"type": "number", "minimum": 0, "maximum": 1}
            }
        },
        "ToggleApprovalRequest": {
            "type": "object",
            "required": ["is_approved"],
            "properties": {
                "is_approved": {"type": "boolean"},
                "notes": {"type": "string"}
            }
        },
        "PromoteStudentsRequest": {
            "type": "object",
            "required": ["student_ids", "from_class_id", "to_class_id", "academic_year"],
            "properties": {
                "student_ids": {"type": "array", "items": {"type": "string"}},
                "from_class_id": {"type": "string"},
                "to_class_id": {"type": "string"},
                "academic_year": {"type": "string", "example": "2024-2025"},
                "notes": {"type": "string"}
            }
        },
        "SubjectReport": {
            "type": "object",
            "properties": {
                "subject_id": {"type": "string"},
                "subject_code": {"type": "string"},
                "subject_name": {"type": "string"},
                "weights": {"type": "object"},
                "score": {"type": "object"},
                "grade": {"type": "string"},
                "scale_source": {"type": "string"}
            }
        },
        "TermReport": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "class_id": {"type": "string"},
                "term": {"type": "string"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SubjectReport"}},
                "overall_average": {"type": "number"},
                "overall_grade": {"type": "string"},
                "approval_state": {"type": "object"}
            }
        },
        "TermReportEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/TermReport"},
                "meta": {"type": "object"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
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
