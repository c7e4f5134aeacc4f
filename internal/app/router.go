package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/courses", middleware.TryAuthMiddleware(cfg), c.course.ListCourses)
	}

	// Authenticated routes
	auth := router.Group("/api")
	auth.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		auth.GET("/profile", c.auth.GetProfile)

		// Courses and content
		auth.GET("/courses/:id", c.course.GetCourse)
		auth.GET("/courses/:id/enrollments", c.enrollment.ListByCourse)

		// Enrollment lifecycle
		auth.POST("/enrollments/self", c.enrollment.SelfEnroll)
		auth.GET("/enrollments", c.enrollment.ListMine)

		// Progress and grading
		auth.GET("/progress/course/:courseId", c.progress.GetCourseProgress)
		auth.GET("/progress/test/:testId", c.progress.GetTestProgress)
		auth.POST("/progress/test/:testId", c.progress.SubmitTest)
		auth.POST("/progress/item/:itemId/complete", c.progress.MarkItemCompleted)
		auth.POST("/progress/video/:itemId", c.progress.VideoHeartbeat)

		// Completions
		auth.POST("/completions/check-course/:courseId", c.completion.CheckCourse)
		auth.GET("/completions", c.completion.ListMine)

		// Learning plans (read side)
		auth.GET("/learning-plans", c.plan.ListPlans)
		auth.GET("/learning-plans/:id", c.plan.GetPlan)
		auth.GET("/learning-plans/:id/courses", c.plan.ListPlanCourses)

		// Question reads follow course access, not role: an enrolled learner
		// may fetch a question (correct answers are never serialized).
		auth.GET("/questions/:id", c.question.GetQuestion)

		auth.GET("/groups/:id", c.group.GetGroup)
	}

	// Instructor routes: authoring and cohort management. Fine-grained
	// creator/assignment checks happen in the controllers.
	instructor := router.Group("/api")
	instructor.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		middleware.RoleMiddleware(model.RoleInstructor),
	)
	{
		instructor.POST("/courses", c.course.CreateCourse)
		instructor.PUT("/courses/:id", c.course.UpdateCourse)
		instructor.DELETE("/courses/:id", c.course.DeleteCourse)
		instructor.POST("/courses/:id/publish", c.course.PublishCourse)
		instructor.POST("/courses/:id/archive", c.course.ArchiveCourse)
		instructor.POST("/courses/:id/items", c.course.AddContentItem)
		instructor.PUT("/courses/:id/items/:itemId", c.course.UpdateContentItem)
		instructor.DELETE("/courses/:id/items/:itemId", c.course.DeleteContentItem)
		instructor.POST("/courses/:id/instructors/:userId", c.course.AssignInstructor)
		instructor.DELETE("/courses/:id/instructors/:userId", c.course.UnassignInstructor)

		instructor.POST("/enrollments/:id/approve", c.enrollment.Approve)
		instructor.POST("/enrollments/:id/reject", c.enrollment.Reject)

		instructor.POST("/learning-plans", c.plan.CreatePlan)
		instructor.PUT("/learning-plans/:id", c.plan.UpdatePlan)
		instructor.DELETE("/learning-plans/:id", c.plan.DeletePlan)
		instructor.POST("/learning-plans/:id/courses", c.plan.AddPlanCourse)
		instructor.PUT("/learning-plans/:id/courses/:courseId", c.plan.UpdatePlanCourse)
		instructor.DELETE("/learning-plans/:id/courses/:courseId", c.plan.RemovePlanCourse)

		instructor.GET("/tests/:id", c.question.GetTest)
		instructor.PUT("/tests/:id", c.question.UpdateTest)
		instructor.POST("/tests/:id/questions", c.question.AddQuestion)
		instructor.PUT("/questions/:id", c.question.UpdateQuestion)
		instructor.DELETE("/questions/:id", c.question.DeleteQuestion)

		instructor.POST("/groups", c.group.CreateGroup)
		instructor.DELETE("/groups/:id", c.group.DeleteGroup)
		instructor.POST("/groups/:id/members/:userId", c.group.AddMember)
		instructor.DELETE("/groups/:id/members/:userId", c.group.RemoveMember)
		instructor.POST("/groups/:id/courses/:courseId", c.group.GrantCourseAccess)
		instructor.POST("/groups/:id/learning-plans/:planId", c.group.GrantPlanAccess)

		instructor.GET("/analytics/video/:id", c.analytics.VideoAnalytics)
		instructor.GET("/analytics/course/:id", c.analytics.CourseAnalytics)
		instructor.GET("/analytics/test/:id", c.analytics.TestAnalytics)
		instructor.GET("/analytics/learning-plan/:id", c.analytics.PlanAnalytics)
		instructor.POST("/analytics/export", c.analytics.Export)
	}

	// User analytics: learners may read their own, so no role gate here.
	analyticsUser := router.Group("/api")
	analyticsUser.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		analyticsUser.GET("/analytics/user/:id", c.analytics.UserAnalytics)
	}

	// Admin routes
	admin := router.Group("/api")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/users", c.user.ListUsers)
		admin.GET("/users/:id", c.user.GetUser)
		admin.PUT("/users/:id/roles", c.user.UpdateRoles)
	}
}
