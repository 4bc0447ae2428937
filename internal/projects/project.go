// Package projects owns the project record: who may edit it, the stored
// content document, and whether the public share link resolves.
package projects

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
)

// Project is one personalised page. Data holds the content document as JSON
// exactly as the last commit wrote it.
type Project struct {
	ID               string          `json:"id"`
	OwnerEmail       string          `json:"ownerEmail"`
	TemplateType     string          `json:"templateType"`
	TemplateCodeHash string          `json:"-"`
	Slug             string          `json:"slug"`
	IsPublished      bool            `json:"isPublished"`
	Data             json.RawMessage `json:"data,omitempty"`
	EditableUntil    *time.Time      `json:"editableUntil,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Editable reports whether content saves are still accepted at now.
func (p *Project) Editable(now time.Time) bool {
	return p.EditableUntil == nil || now.Before(*p.EditableUntil)
}

// Summary is the part of a project that is safe to hand to its owner.
type Summary struct {
	ID            string     `json:"id"`
	TemplateType  string     `json:"templateType"`
	Slug          string     `json:"slug"`
	IsPublished   bool       `json:"isPublished"`
	EditableUntil *time.Time `json:"editableUntil,omitempty"`
	ShareLink     string     `json:"shareLink"`
}

var (
	ErrNotFound  = fmt.Errorf("project %w", apperr.ErrNotFound)
	ErrSlugTaken = fmt.Errorf("slug %w", apperr.ErrConflict)
	// ErrLocked is returned by saves after the editing window closed.
	ErrLocked = fmt.Errorf("%w: project is no longer editable", apperr.ErrAuth)
)

func clone(p *Project) *Project {
	if p == nil {
		return nil
	}
	c := *p
	c.Data = append(json.RawMessage(nil), p.Data...)
	if p.EditableUntil != nil {
		t := *p.EditableUntil
		c.EditableUntil = &t
	}
	return &c
}
