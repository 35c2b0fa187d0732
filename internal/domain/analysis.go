package domain

import "time"

// Analysis is a cached assistant answer keyed by the hash of its inputs
type Analysis struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Hash      string    `gorm:"column:hash;size:64;uniqueIndex" json:"hash"`
	PoemTitle string    `gorm:"column:poem_title;size:255" json:"poem_title"`
	Query     string    `gorm:"column:query;type:text" json:"query"`
	Response  string    `gorm:"column:response;type:text" json:"response"`
	Model     string    `gorm:"column:model;size:64" json:"model"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

// TableName returns the table name
func (Analysis) TableName() string {
	return "kp_analysis"
}
