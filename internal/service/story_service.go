package service

import (
	"context"
	"encoding/xml"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kavyapath/kavyapath-web/internal/apiclient"
	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/session"
	pkglogger "github.com/kavyapath/kavyapath-web/pkg/logger"
)

// MetaFallbackTitle is the page title when the share metadata is unavailable
const MetaFallbackTitle = "Chapter Not Found - Kavyapath"

// StoryAPI is the part of the remote client used by the reading pages
type StoryAPI interface {
	Home(ctx context.Context, cred apiclient.Credential) (apiclient.Result[[]domain.StorySummary], error)
	Story(ctx context.Context, cred apiclient.Credential, slug string) (apiclient.Result[domain.StoryPage], error)
	StoryMetadata(ctx context.Context, slug string) (apiclient.Result[domain.StoryMetadata], error)
}

// PageMeta is the head metadata of a reading page
type PageMeta struct {
	Title       string
	Description string
	Image       string
	URL         string
	Keywords    string
}

// StoryView is everything the reading page renders
type StoryView struct {
	Page domain.StoryPage
	Meta PageMeta
}

// StoryService business logic for the public reading pages
type StoryService interface {
	// Home lists published stories grouped by chapter
	Home(ctx context.Context, sess *session.Session) ([]domain.HomeChapter, error)
	// Story loads a story with its neighbours and share metadata.
	// Returns common.ErrNotFound when the API has no such story.
	Story(ctx context.Context, sess *session.Session, slug string) (*StoryView, error)
	// Meta builds the head metadata of a story page
	Meta(ctx context.Context, slug string) PageMeta
	// Sitemap renders sitemap.xml
	Sitemap(ctx context.Context) ([]byte, error)
}

type storyService struct {
	api     StoryAPI
	baseURL string
	now     func() time.Time
	log     zerolog.Logger
}

// NewStoryService creates a new StoryService. baseURL is the public site URL
// used in sitemap and share links.
func NewStoryService(api StoryAPI, baseURL string) StoryService {
	return &storyService{
		api:     api,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		log:     pkglogger.WithComponent("story"),
	}
}

func (s *storyService) Home(ctx context.Context, sess *session.Session) ([]domain.HomeChapter, error) {
	res, err := s.api.Home(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !res.IsOk() {
		s.log.Warn().Str("message", res.Message()).Msg("home listing rejected")
		return nil, nil
	}
	return domain.GroupByChapter(res.Data()), nil
}

func (s *storyService) Story(ctx context.Context, sess *session.Session, slug string) (*StoryView, error) {
	res, err := s.api.Story(ctx, sess, slug)
	if err != nil {
		return nil, err
	}
	page, ok := res.Unwrap()
	if !ok {
		return nil, common.ErrNotFound
	}
	return &StoryView{Page: page, Meta: s.Meta(ctx, slug)}, nil
}

func (s *storyService) Meta(ctx context.Context, slug string) PageMeta {
	url := s.baseURL + "/story/" + slug
	res, err := s.api.StoryMetadata(ctx, slug)
	if err != nil {
		s.log.Warn().Err(err).Str("slug", slug).Msg("story metadata unavailable")
		return PageMeta{Title: MetaFallbackTitle, URL: url}
	}
	md, ok := res.Unwrap()
	if !ok {
		return PageMeta{Title: MetaFallbackTitle, URL: url}
	}
	return PageMeta{
		Title:       md.Title + " - Kavyapath",
		Description: md.Excerpt,
		Image:       md.Thumbnail,
		URL:         url,
		Keywords:    strings.Join(md.Tags, ", "),
	}
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap lists the static pages and every published story. A failing
// story listing still yields the static part.
func (s *storyService) Sitemap(ctx context.Context) ([]byte, error) {
	today := s.now().UTC().Format(time.RFC3339)
	set := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: s.baseURL, LastMod: today, ChangeFreq: "daily", Priority: "1.0"},
			{Loc: s.baseURL + "/about", LastMod: today, ChangeFreq: "monthly", Priority: "0.8"},
			{Loc: s.baseURL + "/contact", LastMod: today, ChangeFreq: "monthly", Priority: "0.8"},
		},
	}

	res, err := s.api.Home(ctx, apiclient.Anonymous)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Msg("sitemap story listing failed")
	case res.IsOk():
		for _, st := range res.Data() {
			mod := today
			if !st.UpdatedAt.IsZero() {
				mod = st.UpdatedAt.UTC().Format(time.RFC3339)
			}
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        s.baseURL + "/story/" + st.Slug,
				LastMod:    mod,
				ChangeFreq: "weekly",
				Priority:   "0.7",
			})
		}
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
