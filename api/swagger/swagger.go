package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Cholo Abroad CRM API",
        "description": "CRM backend for an overseas education consultancy",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Authentication", "description": "Operator sessions and accounts"},
        {"name": "Leads", "description": "Prospective applicant management"},
        {"name": "Enrollment", "description": "Lead to student conversion"},
        {"name": "Students", "description": "Enrolled student case files"},
        {"name": "Settings", "description": "Branding and managed lists"},
        {"name": "Dashboard", "description": "Aggregated overview"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by email and password",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Exchange refresh token",
                "responses": {
                    "200": {"description": "Tokens refreshed"},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Create counselor account (admin only)",
                "responses": {
                    "201": {"description": "Account created"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/leads": {
            "get": {
                "tags": ["Leads"],
                "summary": "List leads",
                "responses": {"200": {"description": "Lead page"}}
            },
            "post": {
                "tags": ["Leads"],
                "summary": "Capture lead",
                "responses": {
                    "201": {"description": "Lead created"},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/leads/{id}": {
            "get": {
                "tags": ["Leads"],
                "summary": "Get lead",
                "responses": {"200": {"description": "Lead"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Leads"],
                "summary": "Delete lead",
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/leads/{id}/status": {
            "patch": {
                "tags": ["Leads"],
                "summary": "Update contact status",
                "responses": {
                    "200": {"description": "Lead updated"},
                    "400": {"description": "Status not settable directly"}
                }
            }
        },
        "/leads/{id}/convert": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Convert lead to student",
                "responses": {
                    "201": {"description": "Student created, lead consumed"},
                    "400": {"description": "Email missing"},
                    "502": {"description": "Student created but lead deletion pending"}
                }
            }
        },
        "/conversions/retry": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Retry pending lead deletions (admin only)",
                "responses": {"200": {"description": "Resolution count"}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "responses": {"200": {"description": "Student page"}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get case file",
                "responses": {"200": {"description": "Case file"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update profile",
                "responses": {"200": {"description": "Student updated"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student and owned records (admin only)",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/students/{id}/timeline/toggle": {
            "patch": {
                "tags": ["Students"],
                "summary": "Toggle a pipeline stage",
                "responses": {
                    "200": {"description": "Status rederived"},
                    "400": {"description": "Unknown stage"}
                }
            }
        },
        "/students/{id}/transactions": {
            "post": {
                "tags": ["Students"],
                "summary": "Append ledger entry",
                "responses": {
                    "201": {"description": "Transaction recorded"},
                    "400": {"description": "Invalid amount or type"}
                }
            }
        },
        "/students/{id}/balance": {
            "get": {
                "tags": ["Students"],
                "summary": "Derived ledger balance",
                "responses": {"200": {"description": "Balance"}}
            }
        },
        "/students/{id}/applications": {
            "post": {
                "tags": ["Students"],
                "summary": "Add university application",
                "responses": {"201": {"description": "Application recorded"}}
            }
        },
        "/students/{id}/applications/{appId}/status": {
            "patch": {
                "tags": ["Students"],
                "summary": "Set application outcome",
                "responses": {"200": {"description": "Application updated"}}
            }
        },
        "/students/{id}/notes": {
            "post": {
                "tags": ["Students"],
                "summary": "Add note",
                "responses": {"201": {"description": "Note recorded"}}
            }
        },
        "/students/{id}/notes/{noteId}": {
            "delete": {
                "tags": ["Students"],
                "summary": "Delete note",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/students/export/csv": {
            "get": {
                "tags": ["Students"],
                "summary": "Export students as CSV",
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV document"}}
            }
        },
        "/students/{id}/export/pdf": {
            "get": {
                "tags": ["Students"],
                "summary": "Export case file as PDF",
                "produces": ["application/pdf"],
                "responses": {"200": {"description": "PDF document"}}
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Load branding and managed lists",
                "responses": {"200": {"description": "Settings bundle"}}
            }
        },
        "/settings/branding": {
            "put": {
                "tags": ["Settings"],
                "summary": "Replace branding (admin only)",
                "responses": {"200": {"description": "Branding updated"}}
            }
        },
        "/settings/lists/{key}": {
            "put": {
                "tags": ["Settings"],
                "summary": "Replace one managed list (admin only)",
                "responses": {
                    "200": {"description": "List replaced"},
                    "400": {"description": "Unknown list key"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Aggregated overview",
                "responses": {"200": {"description": "Overview"}}
            }
        },
        "/dashboard/system": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Runtime metrics snapshot",
                "responses": {"200": {"description": "Metrics"}}
            }
        }
    },
    "definitions": {
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
