package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
	"github.com/lovestory/lovestory/backend/go-services/internal/content"
	"github.com/lovestory/lovestory/backend/go-services/pkg/logger"
	"github.com/lovestory/lovestory/backend/go-services/pkg/metrics"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// Service implements project lookup, the content Persister and publishing.
type Service struct {
	repo Repository
	now  func() time.Time
	cost int
}

// NewService returns a Service over repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now, cost: bcrypt.DefaultCost}
}

// NewCreate describes a project to create.
type NewCreate struct {
	OwnerEmail    string
	TemplateType  string
	TemplateCode  string
	Slug          string
	Seed          json.RawMessage
	EditableUntil *time.Time
}

// Create stores a new project. The template code is kept only as a bcrypt
// hash and the seed is merged over the defaults before it is stored, so the
// record always holds a complete document.
func (s *Service) Create(ctx context.Context, in NewCreate) (*Project, error) {
	email := NormalizeEmail(in.OwnerEmail)
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	switch {
	case email == "":
		return nil, fmt.Errorf("%w: owner email is required", apperr.ErrValidation)
	case in.TemplateType == "":
		return nil, fmt.Errorf("%w: template type is required", apperr.ErrValidation)
	case in.TemplateCode == "":
		return nil, fmt.Errorf("%w: template code is required", apperr.ErrValidation)
	case !slugPattern.MatchString(slug):
		return nil, fmt.Errorf("%w: slug must be 2-63 lowercase letters, digits or dashes", apperr.ErrValidation)
	}

	doc, err := content.MergeDefaults(in.Seed)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.TemplateCode), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash template code: %w", err)
	}

	now := s.now().UTC()
	p := &Project{
		ID:               uuid.NewString(),
		OwnerEmail:       email,
		TemplateType:     in.TemplateType,
		TemplateCodeHash: string(hash),
		Slug:             slug,
		Data:             data,
		EditableUntil:    in.EditableUntil,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.Infof("projects: created %s (%s/%s) for %s", p.ID, p.TemplateType, p.Slug, p.OwnerEmail)
	return p, nil
}

// Resolve finds the owner's project for template whose code matches. It
// never writes. An owner without a project for the template gets
// ErrNotFound; a wrong code gets ErrInvalidCredential.
func (s *Service) Resolve(ctx context.Context, email, template, code string) (*Project, error) {
	list, err := s.repo.FindByOwner(ctx, NormalizeEmail(email), template)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	for _, p := range list {
		if bcrypt.CompareHashAndPassword([]byte(p.TemplateCodeHash), []byte(code)) == nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("template code: %w", apperr.ErrInvalidCredential)
}

// ResolveByID restores a project for an existing session. The project must
// still belong to owner.
func (s *Service) ResolveByID(ctx context.Context, id, owner string) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerEmail != NormalizeEmail(owner) {
		return nil, ErrNotFound
	}
	return p, nil
}

// SaveContent overwrites the stored document with doc. It never changes the
// publish flag and is refused once the editing window has closed.
func (s *Service) SaveContent(ctx context.Context, id string, doc content.Document) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	if !p.Editable(now) {
		return ErrLocked
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return s.repo.UpdateData(ctx, id, data, now)
}

// Publish makes the share link resolve. The stored document is not touched,
// so drafts that were never saved stay private.
func (s *Service) Publish(ctx context.Context, id string) error {
	err := s.repo.SetPublished(ctx, id, true, s.now().UTC())
	if err != nil {
		metrics.ProjectPublishes.WithLabelValues("failed").Inc()
		return err
	}
	metrics.ProjectPublishes.WithLabelValues("ok").Inc()
	logger.Infof("projects: published %s", id)
	return nil
}

// Published returns the public project for template/slug. Absent and
// unpublished projects both yield ErrNotFound.
func (s *Service) Published(ctx context.Context, template, slug string) (*Project, error) {
	p, err := s.repo.FindPublishedBySlug(ctx, strings.ToLower(slug), template)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Warnf("projects: public lookup %s/%s: %v", template, slug, err)
		}
		return nil, err
	}
	return p, nil
}

// Document returns the project's stored content merged over the defaults.
func Document(p *Project) content.Document {
	doc, err := content.MergeDefaults(p.Data)
	if err != nil {
		logger.Warnf("projects: stored document for %s unusable: %v", p.ID, err)
	}
	return doc
}

// ShareLink is the public URL of a project page.
func ShareLink(baseURL string, p *Project) string {
	return strings.TrimRight(baseURL, "/") + "/v/" + p.TemplateType + "/" + p.Slug
}

// SummaryOf builds the owner-facing view of p.
func SummaryOf(baseURL string, p *Project) Summary {
	return Summary{
		ID:            p.ID,
		TemplateType:  p.TemplateType,
		Slug:          p.Slug,
		IsPublished:   p.IsPublished,
		EditableUntil: p.EditableUntil,
		ShareLink:     ShareLink(baseURL, p),
	}
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
