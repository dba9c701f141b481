package handler

import (
	"courtpay/config"
	"courtpay/di"
	"courtpay/shared/logger"
	"courtpay/shared/timezone"
	"courtpay/transport/http/response"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	service     http.Handler
	serviceErr  error
	serviceOnce sync.Once
)

func initService() {
	cfg := config.Get()

	logger.InitLogger(cfg.Server.Env)

	logger.SetLogLevel(cfg)

	timezone.Init(cfg.App.Timezone)

	service, serviceErr = di.InitializeService()
	if serviceErr != nil {
		log.Error().Err(serviceErr).Msg("Failed to initialize service")
	}
}

// Handler serves the API from a serverless function, building the service once per instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	serviceOnce.Do(initService)

	if serviceErr != nil {
		response.WithUnhealthy(w)

		return
	}

	service.ServeHTTP(w, r)
}
