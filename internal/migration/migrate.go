package migration

import (
	"gorm.io/gorm"

	"github.com/kavyapath/kavyapath-web/internal/domain"
)

// Run creates or updates the tables owned by this server. Stories, chapters
// and users live in the remote API; only the analysis cache is local.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Analysis{})
}
