package main

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"roomcal/cmd/internal/domain/sqlite"
	"roomcal/cmd/internal/domain/sqlite/repository"
	"roomcal/cmd/internal/routes"
	"roomcal/cmd/internal/service"
	"roomcal/cmd/internal/utils"
	"roomcal/cmd/internal/utils/validators"
)

func main() {
	validate := validator.New()
	registerValidators(validate)

	if err := godotenv.Load(); err != nil {
		log.Warnf("no .env file loaded: %v", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	utils.SetJWTSecret(secret)

	// Init SQLite
	db, err := sqlite.Init(getenv("DB_PATH", "./database.db"))
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	eventRepo := repository.NewEventRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	prefsRepo := repository.NewPreferencesRepository(db)

	// Getting services
	reminderService := service.NewReminderService(reminderRepo, prefsRepo, userRepo, validate)
	bookingService := service.NewBookingService(bookingRepo, roomRepo, userRepo, reminderService, validate)
	eventService := service.NewEventService(eventRepo, participationRepo, userRepo, roomRepo, bookingService, reminderService, validate)
	roomService := service.NewRoomService(roomRepo, userRepo, validate)
	userService := service.NewUserService(userRepo, reminderService, validate)

	// Getting routes
	bookingRoutes := routes.NewBookingDefault(bookingService)
	eventRoutes := routes.NewEventDefault(eventService)
	reminderRoutes := routes.NewReminderDefault(reminderService)
	roomRoutes := routes.NewRoomDefault(roomService)
	userRoutes := routes.NewUserDefault(userService)

	e := echo.New()
	e.Use(middleware.CORS())

	// Rooms
	e.GET("/api/rooms", roomRoutes.GetRooms)
	e.POST("/api/rooms", roomRoutes.CreateRoom)
	e.GET("/api/rooms/available", bookingRoutes.GetAvailableRooms)
	e.GET("/api/rooms/:id", roomRoutes.GetRoom)

	// Bookings
	e.GET("/api/bookings", bookingRoutes.GetBookings)
	e.POST("/api/bookings", bookingRoutes.CreateBooking)
	e.DELETE("/api/bookings", bookingRoutes.DeleteBooking)

	// Events and participation
	e.GET("/api/events", eventRoutes.GetEvents)
	e.POST("/api/events", eventRoutes.CreateEvent)
	e.GET("/api/events/:id", eventRoutes.GetEvent)
	e.PUT("/api/events/:id", eventRoutes.UpdateEvent)
	e.DELETE("/api/events/:id", eventRoutes.DeleteEvent)
	e.POST("/api/events/:id/attend", eventRoutes.AttendEvent)
	e.DELETE("/api/events/:id/attend", eventRoutes.UnattendEvent)

	// Reminders
	e.GET("/api/reminders", reminderRoutes.GetReminders)
	e.POST("/api/reminders/read-all", reminderRoutes.MarkAllRead)
	e.POST("/api/reminders/:id/read", reminderRoutes.MarkRead)
	e.GET("/api/reminders/preferences", reminderRoutes.GetPreferences)
	e.PUT("/api/reminders/preferences", reminderRoutes.UpdatePreferences)

	// Users
	e.GET("/api/users", userRoutes.GetUsers)
	e.GET("/api/users/:id", userRoutes.GetUser)
	e.POST("/api/users", userRoutes.CreateUser)
	e.DELETE("/api/users/:id", userRoutes.DeleteUser)

	err = e.Start(":" + getenv("PORT", "6060"))
	if err != nil {
		e.Logger.Fatal(err)
	}
}

func registerValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("iso8601", validators.IsIso8601)
	_ = validate.RegisterValidation("dateonly", validators.IsDateOnly)
	_ = validate.RegisterValidation("clock", validators.IsClock)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
