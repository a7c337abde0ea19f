package api

import "github.com/listenupapp/continue-watching/internal/service"

// Services groups the business logic used by the API server.
type Services struct {
	ContinueWatching *service.ContinueWatchingService
}
