package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authV1 "county-task-api/cmd/auth/v1"
	contactV1 "county-task-api/cmd/contact/v1"
	countyV1 "county-task-api/cmd/county/v1"
	notificationV1 "county-task-api/cmd/notification/v1"
	taskV1 "county-task-api/cmd/task/v1"
	userV1 "county-task-api/cmd/user/v1"
	"county-task-api/configs"
	"county-task-api/pkg/hook"
	"county-task-api/pkg/mailer"
	"county-task-api/pkg/middleware"
	"county-task-api/pkg/response"
	"county-task-api/reminder"
	"county-task-api/server"

	gcs "cloud.google.com/go/storage"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload" // for development
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	s "county-task-api/pkg/storage"
)

var (
	cfg          *configs.Config
	indexMessage string = "Application is running properly"
)

func init() {
	cfg = configs.Load()
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(cfg.Logger.Formatter)
	logger.SetReportCaller(true)
	logger.AddHook(hook.NewStdoutLoggerHook(logrus.New(), cfg.Logger.Formatter))

	// set mariadb read only object
	dbReadOnly, err := sql.Open(cfg.MariadbReadOnly.Driver, cfg.MariadbReadOnly.DSN)
	if err != nil {
		logger.Fatal(err)
	}
	if err := dbReadOnly.Ping(); err != nil {
		logger.Fatal(err)
	}
	dbReadOnly.SetConnMaxLifetime(time.Minute * 3)
	dbReadOnly.SetMaxOpenConns(cfg.MariadbReadOnly.MaxOpenConnections)
	dbReadOnly.SetMaxIdleConns(cfg.MariadbReadOnly.MaxIdleConnections)

	// set mariadb read write object
	dbReadWrite, err := sql.Open(cfg.MariadbReadWrite.Driver, cfg.MariadbReadWrite.DSN)
	if err != nil {
		logger.Fatal(err)
	}
	if err := dbReadWrite.Ping(); err != nil {
		logger.Fatal(err)
	}
	dbReadWrite.SetConnMaxLifetime(time.Minute * 3)
	dbReadWrite.SetMaxOpenConns(cfg.MariadbReadWrite.MaxOpenConnections)
	dbReadWrite.SetMaxIdleConns(cfg.MariadbReadWrite.MaxIdleConnections)

	router := mux.NewRouter()
	router.HandleFunc("/", index)

	// set google cloud storage
	credentials, _ := os.ReadFile(cfg.GCPStorage.CredentialFile)
	gcsclient, _ := gcs.NewClient(context.Background(), option.WithCredentialsJSON(credentials))
	storage := s.NewGCSAdapter(gcsclient, cfg.GCPStorage.AccessID, string(cfg.GCPStorage.PrivateKey))

	// set validator
	validator := validator.New()

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)

	userRepository := userV1.NewUserRepository(logger, dbReadOnly, dbReadWrite, "user")
	countyRepository := countyV1.NewCountyRepository(logger, dbReadOnly, dbReadWrite, "county")
	taskRepository := taskV1.NewTaskRepository(logger, dbReadOnly, dbReadWrite, "task", "task_reminder")
	notificationRepository := notificationV1.NewNotificationRepository(logger, dbReadOnly, dbReadWrite, "notification")
	contactRepository := contactV1.NewContactRepository(logger, dbReadOnly, dbReadWrite, "contact_entry")

	jwtAuthMiddleware := middleware.NewJWTAuth(logger, cfg.JWT.Secret, userRepository)

	authUsecase := authV1.NewAuthUsecase(logger, cfg.Application.Timezone, cfg.JWT.Secret, cfg.JWT.ExpiresIn, userRepository, countyRepository)
	authV1.NewAuthHTTPHandler(logger, router, jwtAuthMiddleware, validator, authUsecase)

	userUsecase := userV1.NewUserUsecase(logger, userRepository)
	userV1.NewUserHTTPHandler(logger, router, jwtAuthMiddleware, userUsecase)

	countyUsecase := countyV1.NewCountyUsecase(logger, cfg.Application.Timezone, countyRepository, taskRepository, notificationRepository, contactRepository, userRepository, storage, cfg.GCPStorage.Bucket)
	countyV1.NewCountyHTTPHandler(logger, router, jwtAuthMiddleware, validator, countyUsecase)

	taskUsecase := taskV1.NewTaskUsecase(logger, cfg.Application.Timezone, taskRepository, countyRepository, userRepository, notificationRepository, smtpMailer, storage, cfg.GCPStorage.Bucket, cfg.Reminder.FallbackEmail)
	taskV1.NewTaskHTTPHandler(logger, router, jwtAuthMiddleware, validator, taskUsecase)

	notificationUsecase := notificationV1.NewNotificationUsecase(logger, cfg.Application.Timezone, notificationRepository, taskRepository, countyRepository)
	notificationV1.NewNotificationHTTPHandler(logger, router, jwtAuthMiddleware, notificationUsecase)

	contactUsecase := contactV1.NewContactUsecase(logger, contactRepository, countyRepository)
	contactV1.NewContactHTTPHandler(logger, router, jwtAuthMiddleware, validator, contactUsecase)

	reminderEngine := reminder.NewEngine(logger, taskRepository, countyRepository, smtpMailer, cfg.Reminder.Interval, cfg.Reminder.Lookahead, cfg.Reminder.DedupWindow, cfg.Reminder.FallbackEmail)
	reminderEngine.Start()

	// set cors
	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Application.AllowedOrigins,
		AllowedMethods:   []string{http.MethodPost, http.MethodGet, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)
	handler = middleware.NewRecovery(logger, true).Handler(handler)

	// initiate server
	srv := server.NewServer(logger, handler, cfg.Application.Port)
	srv.Start()

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	<-sigterm

	reminderEngine.Stop()
	srv.Close()
	dbReadOnly.Close()
	dbReadWrite.Close()
}

func index(w http.ResponseWriter, r *http.Request) {
	resp := response.NewSuccessResponse(nil, response.StatOK, indexMessage)
	response.JSON(w, resp)
}
