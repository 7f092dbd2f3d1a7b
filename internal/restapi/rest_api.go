package restapi

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"bustime.org/internal/app"
	"bustime.org/internal/appconf"
	"bustime.org/internal/webui"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: newRateLimiter(app.Config.RateLimit, time.Second),
	}
}

// Handler returns the full middleware chain around the router: request
// logging, security headers, compression, then rate limiting.
func (api *RestAPI) Handler() http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(api.sendNotFound)
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowedResponse)
	api.SetRoutes(router)
	if api.Config.Env != appconf.Production {
		webui.SetWebUIRoutes(router, &webui.WebUI{Application: api.Application})
	}

	var h http.Handler = router
	if api.rateLimiter != nil {
		h = api.rateLimiter.Handler(h)
	}
	h = CompressionMiddleware(h)
	h = securityHeaders(h)
	return NewRequestLoggingMiddleware(api.Logger)(h)
}

// Shutdown releases background resources.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}
