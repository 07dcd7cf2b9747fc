package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-account/pkg/account"
	accountapi "github.com/tendant/simple-account/pkg/account/api"
	"github.com/tendant/simple-account/pkg/config"
	"github.com/tendant/simple-account/pkg/hasher"
	"github.com/tendant/simple-account/pkg/notice"
	"github.com/tendant/simple-account/pkg/role"
	"github.com/tendant/simple-account/pkg/session"
	"github.com/tendant/simple-account/pkg/token"
)

type Config struct {
	AppConfig          app.AppConfig
	DatabaseConfig     config.DatabaseConfig
	EmailConfig        config.EmailConfig
	SessionConfig      config.SessionConfig
	HasherConfig       config.HasherConfig
	ServerConfig       config.ServerConfig
	RegistrationConfig config.RegistrationConfig
}

func main() {
	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultWithoutRoutes()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseConfig.DSN())
	if err != nil {
		slog.Error("Failed creating dbpool", "db", cfg.DatabaseConfig.Database,
			"host", cfg.DatabaseConfig.Host, "port", cfg.DatabaseConfig.Port,
			"user", cfg.DatabaseConfig.User, "err", err)
		os.Exit(-1)
	}

	notificationManager, err := notice.NewNotificationManager(cfg.EmailConfig.ToSMTPConfig())
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(-1)
	}

	binder := session.NewCookieBinder(
		cfg.SessionConfig.JwtSecret,
		session.WithCookieName(cfg.SessionConfig.CookieName),
		session.WithExpiry(cfg.SessionConfig.TokenExpiry),
		session.WithCookieHttpOnly(cfg.SessionConfig.CookieHttpOnly),
		session.WithCookieSecure(cfg.SessionConfig.CookieSecure),
	)

	accountService := account.NewAccountService(
		account.NewPostgresAccountRepository(pool),
		role.NewRoleService(role.NewPostgresRoleRepository(pool)),
		hasher.NewPBKDF2Hasher(cfg.HasherConfig.Pepper, hasher.WithIterations(cfg.HasherConfig.Iterations)),
		token.NewRandomGenerator(),
		binder,
		account.WithNotificationManager(notificationManager),
		account.WithRegistrationPolicy(cfg.RegistrationConfig),
		account.WithBaseURL(cfg.ServerConfig.BaseURL),
	)

	tokenAuth := jwtauth.New("HS256", []byte(cfg.SessionConfig.JwtSecret), nil)
	handle := accountapi.NewHandle(accountService)
	server.R.Mount("/", accountapi.Routes(handle, binder, tokenAuth, cfg.SessionConfig.CookieName))

	server.Run()
}
