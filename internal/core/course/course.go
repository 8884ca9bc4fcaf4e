// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

// Package course implements the course catalog domain.
package course

import "time"

// Course represents a published learning course.
type Course struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description"`
	Price          float64    `json:"price"`
	EstimatedPrice *float64   `json:"estimated_price,omitempty"`
	Tags           []string   `json:"tags"`
	Level          string     `json:"level"`
	DemoURL        *string    `json:"demo_url,omitempty"`
	ThumbnailID    *string    `json:"thumbnail_id,omitempty"`
	ThumbnailURL   *string    `json:"thumbnail_url,omitempty"`
	Benefits       []string   `json:"benefits"`
	Prerequisites  []string   `json:"prerequisites"`
	Rating         float64    `json:"rating"`
	Purchased      int        `json:"purchased"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"-"` // soft-delete tracker
}

// Filter holds the parameters for a paginated course search.
type Filter struct {
	Query string // ILIKE search against name and tags
	Level string
}

// Global field names for validation
const (
	FieldName           = "name"
	FieldDescription    = "description"
	FieldPrice          = "price"
	FieldEstimatedPrice = "estimated_price"
	FieldLevel          = "level"
	FieldDemoURL        = "demo_url"
	FieldThumbnail      = "thumbnail"
)
