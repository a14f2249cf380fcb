package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kunj2411/Lokmanya-ATS/internal/middleware"
	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
)

// Handlers groups every API handler mounted by Register.
type Handlers struct {
	Auth       *AuthHandler
	Students   *StudentHandler
	Attendance *AttendanceHandler
	Reports    *ReportHandler
}

// Register mounts the API routes on api. Everything except login requires a
// valid bearer token.
func Register(api *gin.RouterGroup, tokens middleware.TokenValidator, h Handlers) {
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	secured.GET("/auth/me", h.Auth.Me)
	secured.GET("/subjects", h.Attendance.Subjects)
	secured.GET("/departments", h.Students.Departments)

	students := secured.Group("/students", middleware.RequireRoles(models.RoleAdmin))
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/stats", h.Students.Stats)
	students.DELETE("/:id", h.Students.Delete)

	attendance := secured.Group("/attendance", middleware.RequireRoles(models.RoleFaculty))
	attendance.GET("/sessions", h.Attendance.LoadSession)
	attendance.PUT("/sessions", h.Attendance.SubmitSession)

	reports := secured.Group("/reports/attendance", middleware.RequireRoles(models.RoleAdmin))
	reports.GET("", h.Reports.Records)
	reports.GET("/pivot", h.Reports.Pivot)
	reports.GET("/percentages", h.Reports.Percentages)
	reports.GET("/percentages/export", h.Reports.ExportPercentages)
	reports.GET("/export", h.Reports.Export)
}
