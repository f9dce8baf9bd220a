package services

import (
	"agrocommunity_backend/internal/auth"
	"agrocommunity_backend/internal/email"
	"agrocommunity_backend/internal/imageprocessor"
	"agrocommunity_backend/internal/metrics"
	"agrocommunity_backend/internal/repositories"
	"agrocommunity_backend/internal/storage"
)

// ServiceContainer holds every service the handlers depend on.
type ServiceContainer struct {
	Auth       AuthService
	User       UserService
	Post       PostService
	Message    MessageService
	Dispatcher *Dispatcher
}

type ContainerDeps struct {
	Repos    *repositories.Repositories
	Tokens   *auth.TokenService
	Mailer   email.Sender
	Storage  storage.Storage
	Images   *imageprocessor.Processor
	Presence PresenceLookup
	Metrics  *metrics.Metrics
}

func NewServiceContainer(deps ContainerDeps) *ServiceContainer {
	dispatcher := NewDispatcher(deps.Presence, deps.Metrics)

	return &ServiceContainer{
		Auth:       NewAuthService(deps.Repos.Users, deps.Tokens, deps.Mailer, deps.Metrics),
		User:       NewUserService(deps.Repos.Users, deps.Repos.Posts, dispatcher),
		Post:       NewPostService(deps.Repos.Posts, deps.Repos.Users, deps.Storage, deps.Images, dispatcher),
		Message:    NewMessageService(deps.Repos.Conversations, deps.Repos.Users, dispatcher),
		Dispatcher: dispatcher,
	}
}
