// Command seed bootstraps a fresh database with the initial administrator
// account. Registration requires an admin caller, so a new deployment runs
// this once before the API can accept users.
package main

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	userV1 "county-task-api/cmd/user/v1"
	"county-task-api/configs"
	"county-task-api/entity"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/joho/godotenv/autoload" // for development
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the user repository the seeder needs.
type UserStore interface {
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (exists bool, err error)
	Save(ctx context.Context, user entity.User) (id int64, err error)
}

func main() {
	cfg := configs.Load()

	logger := logrus.New()
	logger.SetFormatter(cfg.Logger.Formatter)

	db, err := sql.Open(cfg.MariadbReadWrite.Driver, cfg.MariadbReadWrite.DSN)
	if err != nil {
		logger.Fatal(err)
	}
	if err := db.Ping(); err != nil {
		logger.Fatal(err)
	}
	defer db.Close()

	users := userV1.NewUserRepository(logger, db, db, "user")

	username := getEnv("SEED_ADMIN_USERNAME", "admin")
	email := getEnv("SEED_ADMIN_EMAIL", "admin@civisight.org")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		logger.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	created, err := seedAdmin(context.Background(), users, cfg.Application.Timezone, username, email, password)
	if err != nil {
		logger.Fatal(err)
	}
	if !created {
		logger.Infof("admin account %s already exists, nothing to seed", email)
		return
	}
	logger.Infof("created admin account %s", email)
}

func seedAdmin(ctx context.Context, users UserStore, location *time.Location, username string, email string, password string) (created bool, err error) {
	email = strings.ToLower(email)

	exists, err := users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	if _, err := users.Save(ctx, entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
		CreatedAt:    time.Now().In(location),
	}); err != nil {
		return false, err
	}
	return true, nil
}

func getEnv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
