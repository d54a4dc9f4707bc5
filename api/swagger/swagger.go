package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CampusHQ Timetable API",
        "description": "University timetable management with conflict detection",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Schedule grid, mutations and publication"},
        {"name": "Conflicts", "description": "Recorded conflict lifecycle"},
        {"name": "Courses", "description": "Course reference data"},
        {"name": "Rooms", "description": "Room reference data"},
        {"name": "Instructors", "description": "Instructor reference data"},
        {"name": "Exports", "description": "Timetable downloads"}
    ],
    "paths": {
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get a term's timetable",
                "parameters": [
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not published"}
                }
            },
            "put": {
                "tags": ["Timetable"],
                "summary": "Replace a term's timetable and reconcile conflicts",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/detect": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Run an on-demand conflict detection pass",
                "parameters": [
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/layout": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Render one day of the grid with lane-packed room columns",
                "parameters": [
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "day", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/move": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Move one entry to a new day/room/time",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveEntryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/reassign": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Change the instructor on an entry and its linked copies",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReassignEntryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/publish": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Toggle the per-term publish flag",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PublishRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/export/csv": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a term's timetable as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/timetable/export/pdf": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a term's timetable as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "PDF file"}
                }
            }
        },
        "/conflicts": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "List conflicts",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "kind", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/summary": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Active conflict counts by category",
                "parameters": [
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/auto-resolve": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Retire conflicts that no longer reproduce",
                "parameters": [
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/{id}": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Get conflict detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/{id}/status": {
            "patch": {
                "tags": ["Conflicts"],
                "summary": "Resolve or dismiss a conflict",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateConflictStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/import": {
            "post": {
                "tags": ["Courses"],
                "summary": "Bulk import courses from CSV",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "year", "in": "formData", "required": true, "type": "integer"},
                    {"name": "semester", "in": "formData", "required": true, "type": "integer"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List rooms",
                "parameters": [
                    {"name": "building", "in": "query", "type": "string"},
                    {"name": "roomType", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Rooms"],
                "summary": "Create room",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRoomRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/import": {
            "post": {
                "tags": ["Rooms"],
                "summary": "Bulk import rooms from CSV",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/{id}": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Get room detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Rooms"],
                "summary": "Update room",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRoomRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Rooms"],
                "summary": "Delete room",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/instructors": {
            "get": {
                "tags": ["Instructors"],
                "summary": "List instructors",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Instructors"],
                "summary": "Create instructor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateInstructorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/active": {
            "get": {
                "tags": ["Instructors"],
                "summary": "List active instructors",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/{id}": {
            "get": {
                "tags": ["Instructors"],
                "summary": "Get instructor detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Instructors"],
                "summary": "Update instructor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateInstructorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Instructors"],
                "summary": "Deactivate instructor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "EntryPayload": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "course_code": {"type": "string"},
                "occ_type": {"type": "string", "enum": ["LECTURE", "TUTORIAL"]},
                "occ_numbers": {"type": "array", "items": {"type": "integer"}},
                "day": {"type": "string"},
                "start_time": {"type": "string"},
                "duration": {"type": "integer"},
                "room_id": {"type": "string"},
                "instructor_id": {"type": "string"},
                "instructor_name": {"type": "string"}
            },
            "required": ["course_code", "occ_type", "occ_numbers", "day", "start_time", "duration", "room_id"]
        },
        "SaveTimetableRequest": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "semester": {"type": "integer"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/EntryPayload"}}
            },
            "required": ["year", "semester"]
        },
        "MoveEntryRequest": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "semester": {"type": "integer"},
                "entry_id": {"type": "string"},
                "day": {"type": "string"},
                "room_id": {"type": "string"},
                "start_time": {"type": "string"}
            },
            "required": ["year", "semester", "entry_id", "day", "room_id", "start_time"]
        },
        "ReassignEntryRequest": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "semester": {"type": "integer"},
                "entry_id": {"type": "string"},
                "instructor_id": {"type": "string"},
                "instructor_name": {"type": "string"}
            },
            "required": ["year", "semester", "entry_id"]
        },
        "PublishRequest": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "semester": {"type": "integer"},
                "published": {"type": "boolean"}
            },
            "required": ["year", "semester"]
        },
        "UpdateConflictStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["PENDING", "RESOLVED", "DISMISSED"]}
            },
            "required": ["status"]
        },
        "CreateCourseRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "name": {"type": "string"},
                "year": {"type": "integer"},
                "semester": {"type": "integer"},
                "course_type": {"type": "string"},
                "target_students": {"type": "integer"},
                "lecture_count": {"type": "integer"},
                "tutorial_count": {"type": "integer"},
                "eligible_years": {"type": "array", "items": {"type": "string"}},
                "instructors": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["code", "name", "year", "semester"]
        },
        "CreateRoomRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "building": {"type": "string"},
                "room_type": {"type": "string"},
                "capacity": {"type": "integer"}
            },
            "required": ["code"]
        },
        "CreateInstructorRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "status": {"type": "string", "enum": ["ACTIVE", "INACTIVE"]}
            },
            "required": ["name"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
