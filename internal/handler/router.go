package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted under the API prefix.
type Handlers struct {
	Students    *StudentHandler
	Courses     *CourseHandler
	Instructors *InstructorHandler
	Enrollments *EnrollmentHandler
	Transcripts *TranscriptHandler
	Imports     *ImportHandler
	Exports     *ExportHandler
	ExportJobs  *ExportJobHandler
	Metrics     *MetricsHandler
}

// Register mounts every route on api.
func (h Handlers) Register(api gin.IRouter) {
	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/by-reg-no/:regNo", h.Students.GetByRegNo)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)
	students.GET("/:id/enrollments", h.Enrollments.ByStudent)
	students.GET("/:id/transcript", h.Transcripts.Get)

	courses := api.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.POST("", h.Courses.Create)
	courses.GET("/:code", h.Courses.Get)
	courses.PUT("/:code", h.Courses.Update)
	courses.DELETE("/:code", h.Courses.Delete)
	courses.PUT("/:code/instructor", h.Courses.AssignInstructor)
	courses.GET("/:code/enrollments", h.Enrollments.ByCourse)

	instructors := api.Group("/instructors")
	instructors.GET("", h.Instructors.List)
	instructors.POST("", h.Instructors.Create)
	instructors.GET("/:id", h.Instructors.Get)

	enrollments := api.Group("/enrollments")
	enrollments.GET("", h.Enrollments.List)
	enrollments.POST("", h.Enrollments.Enroll)
	enrollments.GET("/:studentId/:courseCode", h.Enrollments.Get)
	enrollments.DELETE("/:studentId/:courseCode", h.Enrollments.Withdraw)
	enrollments.PUT("/:studentId/:courseCode/grade", h.Enrollments.AssignGrade)
	enrollments.PUT("/:studentId/:courseCode/percentage", h.Enrollments.AssignPercentage)

	imports := api.Group("/imports")
	imports.GET("/inspect", h.Imports.Inspect)
	imports.POST("/:entity", h.Imports.Import)
	imports.POST("/:entity/validate", h.Imports.Validate)
	api.POST("/bootstrap", h.Imports.Bootstrap)

	exports := api.Group("/exports")
	exports.POST("/:entity", h.Exports.Create)
	exports.GET("/:entity", h.Exports.Stream)
	exports.DELETE("", h.Exports.Cleanup)
	api.GET("/downloads", h.Exports.Download)

	if h.ExportJobs != nil {
		exports.POST("/:entity/jobs", h.ExportJobs.Submit)
		api.GET("/export-jobs", h.ExportJobs.List)
		api.GET("/export-jobs/:id", h.ExportJobs.Get)
	}

	if h.Metrics != nil {
		api.GET("/system/metrics", h.Metrics.Snapshot)
	}
}
