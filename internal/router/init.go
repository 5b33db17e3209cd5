package router

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/crm-accounts/internal/application"
	"github.com/oksasatya/crm-accounts/internal/container"
	pginfra "github.com/oksasatya/crm-accounts/internal/infrastructure/postgres"
	redisinfra "github.com/oksasatya/crm-accounts/internal/infrastructure/redis"
	"github.com/oksasatya/crm-accounts/internal/infrastructure/search"
	"github.com/oksasatya/crm-accounts/internal/infrastructure/storage"
	handlers "github.com/oksasatya/crm-accounts/internal/interface/http"
	"github.com/oksasatya/crm-accounts/internal/interface/middleware"
	"github.com/oksasatya/crm-accounts/internal/router/modules"
	"github.com/oksasatya/crm-accounts/pkg/helpers"
)

type AccountModuleDeps struct {
	Auth           *application.AuthService
	Accounts       *application.AccountService
	AuthHandler    *handlers.AuthHandler
	AccountHandler *handlers.AccountHandler
	RequireAuth    gin.HandlerFunc
}

func buildAccountDeps() AccountModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo := pginfra.NewAccountRepository(container.GetPGPool())
	hasher := helpers.BcryptHasher{}

	auth := application.NewAuthService(
		repo,
		hasher,
		container.GetJWT(),
		redisinfra.NewSessionStore(container.GetRedis()),
		logger,
		cfg.SessionTTL,
	)

	accounts := application.NewAccountService(repo, hasher, auth, logger)
	accounts.PageSize = cfg.PageSize
	// optional integrations are assigned only when configured to keep the
	// interfaces nil otherwise
	if es := container.GetES(); es != nil {
		accounts.Indexer = search.NewAccountIndexer(es, cfg.ESAccountsIndex)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		accounts.Events = pub
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		accounts.Avatars = storage.NewAvatarStorage(gcs, cfg.GCSBucket)
	}

	cookies := helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure)
	return AccountModuleDeps{
		Auth:           auth,
		Accounts:       accounts,
		AuthHandler:    handlers.NewAuthHandler(auth, accounts, cookies, logger),
		AccountHandler: handlers.NewAccountHandler(accounts, logger),
		RequireAuth:    middleware.Auth(auth),
	}
}

// InitModules builds the account services from the container and registers
// their modules. Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	deps := buildAccountDeps()
	r.Add(modules.NewAuthModule(deps.AuthHandler, deps.RequireAuth))
	r.Add(modules.NewAccountModule(deps.AccountHandler, deps.RequireAuth))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
