// Package chapter holds the chapter list shown by the authoring page selector.
package chapter

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kavyapath/kavyapath-web/internal/apiclient"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	pkglogger "github.com/kavyapath/kavyapath-web/pkg/logger"
)

const (
	MsgEmptyName = "Chapter name cannot be empty"
	MsgCreated   = "Chapter has been added successfully"
)

// API is the part of the remote client the directory needs
type API interface {
	Chapters(ctx context.Context) (apiclient.Result[[]domain.Chapter], error)
	CreateChapter(ctx context.Context, cred apiclient.Credential, title string) (apiclient.Result[domain.Chapter], error)
}

// Directory caches the chapter list for one page load; build one per request
type Directory struct {
	api    API
	log    zerolog.Logger
	once   sync.Once
	mu     sync.RWMutex
	items  []domain.Chapter
	loaded bool
}

// NewDirectory returns an empty directory
func NewDirectory(api API) *Directory {
	return &Directory{api: api, log: pkglogger.WithComponent("chapter")}
}

// Load fetches the list once. Failures leave the list empty and are only
// logged; the selector then simply has no options.
func (d *Directory) Load(ctx context.Context) {
	d.once.Do(func() {
		res, err := d.api.Chapters(ctx)
		if err != nil {
			d.log.Debug().Err(err).Msg("chapter fetch failed")
			return
		}
		chapters, ok := res.Unwrap()
		if !ok {
			d.log.Debug().Str("message", res.Message()).Msg("chapter fetch rejected")
			return
		}
		d.mu.Lock()
		d.items = append(d.items, chapters...)
		d.loaded = true
		d.mu.Unlock()
	})
}

// Loaded reports whether the fetch succeeded
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Add appends a chapter without refetching
func (d *Directory) Add(ch domain.Chapter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, ch)
}

// List returns a copy of the chapters in server order
func (d *Directory) List() []domain.Chapter {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Chapter, len(d.items))
	copy(out, d.items)
	return out
}

// Has reports whether id is one of the listed chapters
func (d *Directory) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, ch := range d.items {
		if ch.ID == id {
			return true
		}
	}
	return false
}

// Create adds a chapter on the server and, when accepted, to the list.
// The returned notice is what the user sees; err is non-nil only for
// transport failures.
func (d *Directory) Create(ctx context.Context, cred apiclient.Credential, title string) (domain.Notice, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Notice{Kind: "error", Message: MsgEmptyName}, nil
	}
	res, err := d.api.CreateChapter(ctx, cred, title)
	if err != nil {
		d.log.Error().Err(err).Msg("chapter create failed")
		return domain.Notice{}, err
	}
	ch, ok := res.Unwrap()
	if !ok {
		return domain.Notice{Kind: "error", Message: res.Message()}, nil
	}
	d.Add(ch)
	return domain.Notice{Kind: "success", Message: MsgCreated}, nil
}
