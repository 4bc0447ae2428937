package projects

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
	"github.com/lovestory/lovestory/backend/go-services/internal/content"
)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.cost = bcrypt.MinCost
	return svc, repo
}

func createProject(t *testing.T, svc *Service, slug string) *Project {
	t.Helper()
	p, err := svc.Create(context.Background(), NewCreate{
		OwnerEmail:   " Peter@Example.com ",
		TemplateType: "spiderman",
		TemplateCode: "web-123",
		Slug:         slug,
		Seed:         json.RawMessage(`{"letterTitle":"For MJ"}`),
	})
	require.NoError(t, err)
	return p
}

func TestCreateStoresCompleteDocument(t *testing.T) {
	svc, repo := newTestService()
	p := createProject(t, svc, "peter-mj")

	require.NotEmpty(t, p.ID)
	require.Equal(t, "peter@example.com", p.OwnerEmail)
	require.NotEqual(t, "web-123", p.TemplateCodeHash)
	require.False(t, p.IsPublished)

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	doc := Document(stored)
	require.Equal(t, "For MJ", doc.LetterTitle)
	require.Equal(t, content.Defaults().Memories, doc.Memories)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, NewCreate{OwnerEmail: "a@b.c", TemplateType: "spiderman", TemplateCode: "x", Slug: "Not A Slug!"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(ctx, NewCreate{OwnerEmail: "a@b.c", TemplateType: "spiderman", TemplateCode: "x", Slug: "ok", Seed: json.RawMessage(`[1,2]`)})
	require.ErrorIs(t, err, apperr.ErrValidation)

	createProject(t, svc, "dup")
	_, err = svc.Create(ctx, NewCreate{OwnerEmail: "other@b.c", TemplateType: "spiderman", TemplateCode: "y", Slug: "dup"})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestResolve(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := createProject(t, svc, "peter-mj")

	got, err := svc.Resolve(ctx, "PETER@example.com", "spiderman", "web-123")
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)

	_, err = svc.Resolve(ctx, "peter@example.com", "spiderman", "wrong")
	require.ErrorIs(t, err, apperr.ErrInvalidCredential)

	_, err = svc.Resolve(ctx, "nobody@example.com", "spiderman", "web-123")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Resolve(ctx, "peter@example.com", "batman", "web-123")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.ResolveByID(ctx, p.ID, "someone@else.com")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	got, err = svc.ResolveByID(ctx, p.ID, "peter@example.com")
	require.NoError(t, err)
	require.Equal(t, "peter-mj", got.Slug)
}

func TestSaveAndPublishAreIndependent(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	p := createProject(t, svc, "peter-mj")

	doc := content.Defaults()
	doc.LetterText = "saved but private"
	require.NoError(t, svc.SaveContent(ctx, p.ID, doc))

	stored, _ := repo.GetByID(ctx, p.ID)
	require.False(t, stored.IsPublished)
	_, err := svc.Published(ctx, "spiderman", "peter-mj")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, svc.Publish(ctx, p.ID))
	stored, _ = repo.GetByID(ctx, p.ID)
	require.True(t, stored.IsPublished)
	require.Equal(t, "saved but private", Document(stored).LetterText)

	pub, err := svc.Published(ctx, "spiderman", "PETER-MJ")
	require.NoError(t, err)
	require.Equal(t, p.ID, pub.ID)

	doc.LetterText = "edited after publish"
	require.NoError(t, svc.SaveContent(ctx, p.ID, doc))
	stored, _ = repo.GetByID(ctx, p.ID)
	require.True(t, stored.IsPublished)
	require.Equal(t, "edited after publish", Document(stored).LetterText)
}

func TestSaveRefusedAfterEditableUntil(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	deadline := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	p, err := svc.Create(ctx, NewCreate{OwnerEmail: "a@b.c", TemplateType: "spiderman", TemplateCode: "c", Slug: "valentine", EditableUntil: &deadline})
	require.NoError(t, err)

	svc.now = func() time.Time { return deadline.Add(-time.Hour) }
	require.NoError(t, svc.SaveContent(ctx, p.ID, content.Defaults()))

	svc.now = func() time.Time { return deadline.Add(time.Second) }
	err = svc.SaveContent(ctx, p.ID, content.Defaults())
	require.ErrorIs(t, err, apperr.ErrAuth)

	// publishing is not bound to the editing window
	require.NoError(t, svc.Publish(ctx, p.ID))
}

func TestMissingProject(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	require.ErrorIs(t, svc.SaveContent(ctx, "nope", content.Defaults()), apperr.ErrNotFound)
	require.ErrorIs(t, svc.Publish(ctx, "nope"), apperr.ErrNotFound)
}

func TestShareLink(t *testing.T) {
	p := &Project{ID: "1", TemplateType: "spiderman", Slug: "peter-mj", IsPublished: true}
	require.Equal(t, "https://love.example/v/spiderman/peter-mj", ShareLink("https://love.example/", p))
	s := SummaryOf("https://love.example", p)
	require.Equal(t, "https://love.example/v/spiderman/peter-mj", s.ShareLink)
	require.True(t, s.IsPublished)
}
