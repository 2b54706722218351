package routes

import (
	"log"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/controllers"
	"learnspace/backend/hub"
	"learnspace/backend/middleware"
	"learnspace/backend/repositories"
	"learnspace/backend/security"
	"learnspace/backend/services"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func SetupRoutes(
	app *fiber.App,
	db *gorm.DB,
	cfg *config.Config,
	logger *log.Logger,
	store cache.Store,
	protector *security.LoginProtector,
	h *hub.Hub,
) {
	// Repositories
	users := repositories.NewUserRepository(db, store, cfg)
	courses := repositories.NewCourseRepository(db, store, cfg)
	quizzes := repositories.NewQuizRepository(db, store, cfg)
	enrollments := repositories.NewEnrollmentRepository(db, store, cfg)
	conversations := repositories.NewConversationRepository(db, store, cfg)
	notifications := repositories.NewNotificationRepository(db)
	certificates := repositories.NewCertificateRepository(db, store, cfg)
	payments := repositories.NewPaymentRepository(db)
	achievements := repositories.NewAchievementRepository(db, store, cfg)

	// Services
	chatService := services.NewChatService(conversations, users, logger)
	notificationService := services.NewNotificationService(notifications, users, enrollments, logger)
	enrollmentService := services.NewEnrollmentService(enrollments, courses, logger)
	certificateService := services.NewCertificateService(certificates, enrollments, courses, logger)
	paymentService := services.NewPaymentService(payments, courses, enrollmentService, cfg.MidtransServerKey, logger)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminOnly := middleware.RoleMiddleware(users, "admin")
	instructorOrAdmin := middleware.RoleMiddleware(users, "instructor", "admin")

	// Auth routes
	authController := controllers.NewAuthController(users, protector, cfg)
	app.Post("/api/auth/register", middleware.RegisterRateLimiter(), authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Get("/api/user/profile", authMiddleware, authController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, authController.UpdateProfile)

	// Courses routes
	coursesController := controllers.NewCoursesController(courses, users)
	app.Get("/api/courses", coursesController.ListCourses)
	app.Get("/api/courses/:id", coursesController.GetCourse)

	// Authoring routes carry their middleware per route: a prefix-wide
	// group would also shadow the public and learner endpoints that
	// share the /api/courses prefix.
	app.Post("/api/courses", authMiddleware, instructorOrAdmin, coursesController.CreateCourse)
	app.Put("/api/courses/:id", authMiddleware, instructorOrAdmin, coursesController.UpdateCourse)
	app.Post("/api/courses/:id/chapters", authMiddleware, instructorOrAdmin, coursesController.AddChapter)
	app.Put("/api/courses/:id/chapters/:chapterId", authMiddleware, instructorOrAdmin, coursesController.UpdateChapter)
	app.Post("/api/courses/:id/chapters/:chapterId/lessons", authMiddleware, instructorOrAdmin, coursesController.AddLesson)
	app.Put("/api/courses/:id/lessons/:lessonId", authMiddleware, instructorOrAdmin, coursesController.UpdateLesson)

	// Quizzes routes
	quizzesController := controllers.NewQuizzesController(quizzes, courses, users)
	app.Get("/api/courses/:id/quizzes", authMiddleware, quizzesController.ListByCourse)
	quizRoutes := app.Group("/api/quizzes", authMiddleware)
	quizRoutes.Get("/:id", quizzesController.GetQuiz)
	quizRoutes.Post("/:id/attempts", quizzesController.SubmitAttempt)
	quizRoutes.Get("/:id/attempts", quizzesController.ListAttempts)
	quizRoutes.Post("/", instructorOrAdmin, quizzesController.CreateQuiz)
	quizRoutes.Post("/:id/questions", instructorOrAdmin, quizzesController.AddQuestion)

	// Enrollment routes
	enrollmentsController := controllers.NewEnrollmentsController(enrollmentService, certificateService)
	app.Post("/api/courses/:id/enroll", authMiddleware, enrollmentsController.Enroll)
	app.Get("/api/enrollments", authMiddleware, enrollmentsController.ListMine)
	app.Post("/api/courses/:id/progress", authMiddleware, enrollmentsController.UpdateProgress)

	// Chat REST routes
	chatController := controllers.NewChatController(chatService)
	chatRoutes := app.Group("/api/chat", authMiddleware)
	chatRoutes.Post("/conversations", chatController.StartConversation)
	chatRoutes.Get("/conversations", chatController.ListConversations)
	chatRoutes.Get("/conversations/:id/messages", chatController.History)

	// Notification routes
	notificationsController := controllers.NewNotificationsController(notificationService, h)
	notificationRoutes := app.Group("/api/notifications", authMiddleware)
	notificationRoutes.Get("/", notificationsController.ListMine)
	notificationRoutes.Get("/unread-count", notificationsController.UnreadCount)
	notificationRoutes.Post("/", instructorOrAdmin, notificationsController.Create)
	notificationRoutes.Put("/:id/read", notificationsController.MarkRead)
	notificationRoutes.Put("/read-all", notificationsController.MarkAllRead)

	// Achievement routes
	achievementsController := controllers.NewAchievementsController(achievements, notificationService, h)
	app.Get("/api/achievements", authMiddleware, achievementsController.ListAll)
	app.Get("/api/achievements/mine", authMiddleware, achievementsController.ListMine)
	app.Post("/api/achievements/award", authMiddleware, adminOnly, achievementsController.Award)

	// Certificate routes
	certificatesController := controllers.NewCertificatesController(certificateService)
	app.Get("/api/certificates", authMiddleware, certificatesController.ListMine)
	app.Post("/api/courses/:id/certificate", authMiddleware, certificatesController.Issue)
	app.Get("/api/certificates/verify/:code", certificatesController.Verify)

	// Payment routes
	paymentsController := controllers.NewPaymentsController(paymentService)
	app.Post("/api/courses/:id/checkout", authMiddleware, paymentsController.Checkout)
	app.Post("/api/payments/notify", paymentsController.Notify)
	app.Get("/api/payments", authMiddleware, paymentsController.ListMine)

	// Admin routes
	adminController := controllers.NewAdminController(users, courses, enrollments, payments)
	admin := app.Group("/api/admin", authMiddleware, adminOnly)
	admin.Get("/dashboard", adminController.Dashboard)
	admin.Put("/users/:id/ban", adminController.BanUser)
	admin.Put("/users/:id/unban", adminController.UnbanUser)

	// Websocket routes. Browsers cannot set headers on the upgrade
	// request, so the token travels as a query parameter.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, err := utils.ParseUserID(c.Query("token"), cfg)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		c.Locals("userID", userID)
		return c.Next()
	})

	chatHandler := hub.NewChatHandler(h, chatService, logger)
	notificationHandler := hub.NewNotificationHandler(h, notificationService, logger)
	app.Get("/ws/chat", websocket.New(chatHandler.Handle))
	app.Get("/ws/notifications", websocket.New(notificationHandler.Handle))
}
