// Seeds a development database with the bootstrap superadmin plus a few
// demo accounts and tasks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/internal/app"
	"github.com/taskhive/taskhive/internal/platform/db"
)

type seedUser struct {
	name   string
	email  string
	role   string
	status string
}

var seedUsers = []seedUser{
	{"Root Admin", "superadmin@taskhive.local", "superadmin", "enabled"},
	{"Alice Admin", "alice@taskhive.local", "admin", "enabled"},
	{"Bob Builder", "bob@taskhive.local", "user", "enabled"},
	{"Carol Closed", "carol@taskhive.local", "user", "disabled"},
}

func main() {
	ctx := context.Background()
	logger := slog.Default()

	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash password", slog.Any("error", err))
		os.Exit(1)
	}

	for _, u := range seedUsers {
		_, err := pool.Exec(ctx, `
			INSERT INTO users (name, email, password_hash, role, status)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO NOTHING`,
			u.name, u.email, string(hash), u.role, u.status)
		if err != nil {
			logger.Error("seed user", slog.String("email", u.email), slog.Any("error", err))
			os.Exit(1)
		}
	}

	for i := 1; i <= 12; i++ {
		title := fmt.Sprintf("Demo task %d", i)
		_, err := pool.Exec(ctx, `
			INSERT INTO tasks (title, description, due_date, completed, user_id, user_role)
			SELECT $1, $2, $3, $4, id, role FROM users WHERE email = $5
			ON CONFLICT DO NOTHING`,
			title, "Seeded demo task", time.Now().AddDate(0, 0, i), i%3 == 0, "bob@taskhive.local")
		if err != nil {
			logger.Error("seed task", slog.String("title", title), slog.Any("error", err))
			os.Exit(1)
		}
	}

	logger.Info("seed complete", slog.Int("users", len(seedUsers)))
}
