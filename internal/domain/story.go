package domain

import "time"

// Author is the embedded author of a story
type Author struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

// Story is a single poem as returned for the reading view
type Story struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Excerpt    string    `json:"excerpt,omitempty"`
	Category   string    `json:"category,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Author     Author    `json:"author"`
	Thumbnail  string    `json:"thumbnail,omitempty"`
	Views      int       `json:"views"`
	Likes      int       `json:"likes"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// StoryPage is a story with its neighbours inside the chapter
type StoryPage struct {
	Story        Story
	NextSlug     string
	PreviousSlug string
}

// StoryMetadata feeds the OpenGraph / twitter tags of the reading view
type StoryMetadata struct {
	Title     string   `json:"title"`
	Slug      string   `json:"slug"`
	Excerpt   string   `json:"excerpt"`
	Thumbnail string   `json:"thumbnail"`
	Tags      []string `json:"tags,omitempty"`
}

// StorySummary is a row of the /story/home listing
type StorySummary struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Chapter   Chapter   `json:"chapter"`
	UpdatedAt time.Time `json:"updatedAt"`
}
