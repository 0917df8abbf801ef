package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookdenapp/bookden-server/internal/auth"
	"github.com/bookdenapp/bookden-server/internal/config"
	"github.com/bookdenapp/bookden-server/internal/dto"
	"github.com/bookdenapp/bookden-server/internal/logger"
	"github.com/bookdenapp/bookden-server/internal/service"
)

// ProvideEnricher provides the view enricher that resolves user names.
func ProvideEnricher(i do.Injector) (*dto.Enricher, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return dto.NewEnricher(storeHandle.Store), nil
}

// ProvideGuard provides the ownership guard.
func ProvideGuard(i do.Injector) (*service.Guard, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewGuard(storeHandle.Store), nil
}

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvideRatingService provides the rating aggregation service.
func ProvideRatingService(i do.Injector) (*service.RatingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewRatingService(storeHandle.Store), nil
}

// ProvideBookService provides the catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	ratings := do.MustInvoke[*service.RatingService](i)
	guard := do.MustInvoke[*service.Guard](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(
		storeHandle.Store,
		ratings,
		guard,
		enricher,
		cfg.Catalog,
		log.Logger,
	), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	guard := do.MustInvoke[*service.Guard](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, guard, enricher, log.Logger), nil
}

// ProvideProfileService provides the user profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	ratings := do.MustInvoke[*service.RatingService](i)

	return service.NewProfileService(storeHandle.Store, ratings), nil
}
