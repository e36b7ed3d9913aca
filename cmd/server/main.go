// Command server runs the account and admin HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/authflow/internal/db/migrations"
	accountmod "github.com/dmitrymomot/authflow/modules/account"
	"github.com/dmitrymomot/authflow/modules/admin"
	"github.com/dmitrymomot/authflow/pkg/activity"
	"github.com/dmitrymomot/authflow/pkg/clientip"
	"github.com/dmitrymomot/authflow/pkg/config"
	"github.com/dmitrymomot/authflow/pkg/cookie"
	"github.com/dmitrymomot/authflow/pkg/email"
	"github.com/dmitrymomot/authflow/pkg/environment"
	"github.com/dmitrymomot/authflow/pkg/httpserver"
	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/ledger"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/pg"
	"github.com/dmitrymomot/authflow/pkg/ratelimiter"
	redisconn "github.com/dmitrymomot/authflow/pkg/redis"
	"github.com/dmitrymomot/authflow/pkg/requestid"
	"github.com/dmitrymomot/authflow/pkg/session"
	"github.com/dmitrymomot/authflow/pkg/token"
	"github.com/dmitrymomot/authflow/svc/account"
)

type appConfig struct {
	Env           string        `env:"APP_ENV" envDefault:"development"`
	ServiceName   string        `env:"SERVICE_NAME" envDefault:"authflow"`
	HealthTimeout time.Duration `env:"HEALTHCHECK_TIMEOUT" envDefault:"3s"`
	RunMigrations bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
}

type configs struct {
	app     appConfig
	log     logger.Config
	pg      pg.Config
	redis   redisconn.Config
	session session.Config
	token   token.Config
	email   email.Config
	cookie  cookie.Config
	http    httpserver.Config
	google  identity.GoogleConfig
	account account.Config
	limit   ratelimiter.Config
}

func loadConfigs() (configs, error) {
	var c configs
	err := errors.Join(
		config.Load(&c.app),
		config.Load(&c.log),
		config.Load(&c.pg),
		config.Load(&c.redis),
		config.Load(&c.session),
		config.Load(&c.token),
		config.Load(&c.email),
		config.Load(&c.cookie),
		config.Load(&c.http),
		config.Load(&c.google),
		config.Load(&c.account),
		config.Load(&c.limit),
	)
	return c, err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfigs()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(
		logger.WithConfig(cfg.log),
		logger.WithEnvironment(environment.Parse(cfg.app.Env), cfg.app.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)

	pool, err := pg.Connect(ctx, cfg.pg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.app.RunMigrations {
		if err := pg.Migrate(ctx, pool, cfg.pg, migrations.FS, ".", log); err != nil {
			return err
		}
	}

	rdb, err := redisconn.Connect(ctx, cfg.redis)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	sessions := session.NewFromConfig(cfg.session,
		session.NewRedisStore(rdb, session.WithKeyPrefix(cfg.redis.KeyPrefix+"session:")),
		session.WithLogger(log),
	)

	codec, err := token.NewFromConfig(cfg.token)
	if err != nil {
		return err
	}

	mailer, err := newMailer(cfg.email, log)
	if err != nil {
		return err
	}
	composer, err := email.NewComposer(cfg.email)
	if err != nil {
		return err
	}

	opts := []account.Option{account.WithConfig(cfg.account), account.WithLogger(log)}
	if cfg.google.ClientID != "" {
		verifier, err := identity.NewGoogleVerifier(ctx, cfg.google)
		if err != nil {
			return err
		}
		opts = append(opts, account.WithGoogleVerifier(verifier))
	}

	svc, err := account.New(account.Deps{
		Identities: identity.NewService(
			identity.NewPostgresStorage(pool, identity.WithQueryTimeout(cfg.pg.QueryTimeout)),
			identity.WithLogger(log),
		),
		Sessions: sessions,
		Tokens:   codec,
		Ledger: ledger.New(
			ledger.NewPostgresStore(pool, ledger.WithQueryTimeout(cfg.pg.QueryTimeout)),
			ledger.WithLogger(log),
		),
		Activity: activity.New(
			activity.NewPostgresStore(pool, activity.WithQueryTimeout(cfg.pg.QueryTimeout)),
			activity.WithLogger(log),
		),
		Mailer:   mailer,
		Messages: composer,
	}, opts...)
	if err != nil {
		return err
	}

	limiter, err := ratelimiter.NewBucket(
		ratelimiter.NewRedisStore(rdb, ratelimiter.WithKeyPrefix(cfg.redis.KeyPrefix+"ratelimit:")),
		cfg.limit,
	)
	if err != nil {
		return err
	}

	cookies := cookie.NewFromConfig(cfg.cookie)

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware, middleware.Recoverer)
	r.Get("/health", httpserver.HealthHandler(log, cfg.app.HealthTimeout, map[string]httpserver.Check{
		"postgres": pg.Healthcheck(pool),
		"redis":    redisconn.Healthcheck(rdb),
	}))
	r.Mount("/users", accountmod.New(svc, sessions, cookies,
		accountmod.WithLogger(log),
		accountmod.WithRateLimiter(limiter),
	).Handle())
	r.Mount("/admin", admin.New(svc, sessions, cookies,
		admin.WithLogger(log),
		admin.WithRateLimiter(limiter),
	).Handle())

	return httpserver.New(cfg.http, httpserver.WithLogger(log)).Run(ctx, r)
}

// newMailer sends through Postmark when both tokens are configured and
// writes messages to disk otherwise.
func newMailer(cfg email.Config, log *slog.Logger) (email.EmailSender, error) {
	if cfg.UsePostmark() {
		return email.NewPostmarkClient(cfg, email.WithPostmarkHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	}
	log.Warn("postmark is not configured, emails are written to disk", slog.String("dir", cfg.DevOutputDir))
	return email.NewDevSender(cfg.DevOutputDir, email.WithDevLogger(log)), nil
}
