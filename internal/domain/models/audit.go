package models

import "time"

// Audit carries the ownership and lifecycle columns shared by every record.
// Records are deactivated rather than deleted.
type Audit struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedByID  uint      `gorm:"index" json:"created_by"`
	ModifiedByID uint      `json:"modified_by"`
	CreatedAt    time.Time `json:"created_on"`
	UpdatedAt    time.Time `json:"modified_on"`
}

// Stamp records the acting farm as creator (first save only) and modifier.
func (a *Audit) Stamp(actor uint) {
	if a.CreatedByID == 0 {
		a.CreatedByID = actor
	}
	a.ModifiedByID = actor
	a.IsActive = true
}

// Page selects one page of a list. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// DefaultPageSize matches the list size used across every listing.
const DefaultPageSize = 25

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 || p.Size > 200 {
		p.Size = DefaultPageSize
	}
	return p
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}

// List is a page of records plus the total count across all pages.
type List[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"page_size"`
}

// NewList wraps items fetched for page p.
func NewList[T any](items []T, total int64, p Page) List[T] {
	p = p.Normalize()
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, Total: total, Page: p.Number, Size: p.Size}
}
