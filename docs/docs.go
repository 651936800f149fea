package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "GardenLog API Documentation",
        "title": "GardenLog API",
        "version": "1.0"
    },
    "host": "localhost:8080",
    "basePath": "/api/v1",
    "schemes": ["http"],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "description": "Check if server is running",
                "responses": {
                    "200": {
                        "description": "Server is healthy"
                    }
                }
            }
        },
        "/api/v1/plants": {
            "get": {
                "tags": ["Plants"],
                "summary": "List Plants",
                "description": "List plants in summary shape, filterable by search text and cycle year",
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "query",
                        "name": "search",
                        "type": "string",
                        "description": "Case-insensitive substring match across name, variety and seed_source"
                    },
                    {
                        "in": "query",
                        "name": "year",
                        "type": "integer",
                        "description": "Only plants with at least one cycle in this year"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Plant summaries"
                    }
                }
            },
            "post": {
                "tags": ["Plants"],
                "summary": "Create Plant",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "plant",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "name": {
                                    "type": "string",
                                    "example": "Tomato"
                                },
                                "variety": {
                                    "type": "string",
                                    "example": "Cherry"
                                },
                                "seed_source": {
                                    "type": "string"
                                },
                                "notes": {
                                    "type": "string"
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Plant created"
                    },
                    "400": {
                        "description": "Validation failed"
                    }
                }
            }
        },
        "/api/v1/cycles": {
            "post": {
                "tags": ["Planting Cycles"],
                "summary": "Create Planting Cycle",
                "description": "One cycle per plant per year; a duplicate pair is rejected",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "cycle",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "plant": {
                                    "type": "integer",
                                    "example": 1
                                },
                                "year": {
                                    "type": "integer",
                                    "example": 2026
                                },
                                "status": {
                                    "type": "string",
                                    "enum": ["planning", "sowing", "germinating", "growing", "planted_out", "harvesting", "finished"],
                                    "example": "planning"
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Cycle created"
                    },
                    "409": {
                        "description": "Cycle for this plant and year already exists"
                    }
                }
            }
        },
        "/api/v1/tasks/{id}/toggle_complete": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Toggle Task Completion",
                "description": "Flips the completed flag and stamps or clears completed_at",
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "integer",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Updated task"
                    },
                    "404": {
                        "description": "Task not found"
                    }
                }
            }
        },
        "/api/v1/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard Stats",
                "description": "Counts, current cycles, upcoming and overdue tasks, recent harvest totals",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "Dashboard aggregate"
                    }
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "GardenLog API",
	Description:      "GardenLog API Documentation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
