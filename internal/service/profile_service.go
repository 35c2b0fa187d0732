package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kavyapath/kavyapath-web/internal/apiclient"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/session"
	pkglogger "github.com/kavyapath/kavyapath-web/pkg/logger"
)

// MsgProfileFailed is shown when either profile call fails
const MsgProfileFailed = "An error occurred while fetching your profile data"

// ProfileAPI is the part of the remote client used by the profile page
type ProfileAPI interface {
	Profile(ctx context.Context, cred apiclient.Credential) (domain.Profile, error)
	UserStories(ctx context.Context, cred apiclient.Credential) ([]domain.UserStory, error)
}

// ProfileService business logic for the profile page
type ProfileService interface {
	// Page loads the profile and then the user's stories
	Page(ctx context.Context, sess *session.Session) (*domain.ProfilePage, error)
}

type profileService struct {
	api ProfileAPI
	log zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(api ProfileAPI) ProfileService {
	return &profileService{api: api, log: pkglogger.WithComponent("profile")}
}

// Page returns a ValidationError carrying MsgProfileFailed on any failure
func (s *profileService) Page(ctx context.Context, sess *session.Session) (*domain.ProfilePage, error) {
	p, err := s.api.Profile(ctx, sess)
	if err != nil {
		s.log.Error().Err(err).Msg("profile fetch failed")
		return nil, &ValidationError{Message: MsgProfileFailed}
	}
	stories, err := s.api.UserStories(ctx, sess)
	if err != nil {
		s.log.Error().Err(err).Msg("user stories fetch failed")
		return nil, &ValidationError{Message: MsgProfileFailed}
	}
	return &domain.ProfilePage{Profile: p, Stories: stories}, nil
}
