package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fieldpress-server/internal/content/domain"
	schemadomain "fieldpress-server/internal/schema/domain"
	schemausecases "fieldpress-server/internal/schema/usecases"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
)

// StateScope restricts listing to a lifecycle state.
type StateScope string

const (
	StatePublished StateScope = "published"
	StateOnlyDraft StateScope = "only_draft"
	StateWithDraft StateScope = "with_draft"
)

type Pagination struct {
	Page  int
	Limit int
}

type LimitOffset struct {
	Limit  int
	Offset int
}

// ListQuery carries everything a list request can ask for. Pagination wins
// over limit/offset when both are present; CountOnly short-circuits to a
// cardinality.
type ListQuery struct {
	State       StateScope
	Locale      string
	Filter      map[string]any
	Sort        string
	Pagination  *Pagination
	LimitOffset *LimitOffset
	CountOnly   bool
}

type ListResult struct {
	Entries []domain.Entry
	Total   int64
	// Dropped lists filter/sort keys ignored by the fail-open policy.
	Dropped []string
}

type SingleQuery struct {
	State  StateScope
	Locale string
	// Identifier is a numeric id or a public UUID.
	Identifier string
}

type CreateOptions struct {
	Locale             string
	Status             domain.Status
	TranslationGroupID string
}

type EntryRepository interface {
	Create(ctx context.Context, schema schemadomain.Schema, entry domain.Entry, payload map[string]any) (domain.Entry, error)
	Replace(ctx context.Context, schema schemadomain.Schema, entryID int64, payload map[string]any) error
	Patch(ctx context.Context, schema schemadomain.Schema, entryID int64, payload map[string]any) error
	SetStatus(ctx context.Context, entryID int64, status domain.Status) error
	SoftDelete(ctx context.Context, entryID int64) error
	HardDelete(ctx context.Context, entryID int64) error
	Restore(ctx context.Context, schema schemadomain.Schema, identifier string) error
	List(ctx context.Context, schema schemadomain.Schema, q ListQuery) (ListResult, error)
	Count(ctx context.Context, schema schemadomain.Schema, q ListQuery) (int64, error)
	FindOne(ctx context.Context, schema schemadomain.Schema, q SingleQuery) (domain.Entry, error)
}

type EntryService interface {
	ListEntries(ctx context.Context, projectSlug, collectionSlug string, q ListQuery) (ListResult, error)
	CountEntries(ctx context.Context, projectSlug, collectionSlug string, q ListQuery) (int64, error)
	GetEntry(ctx context.Context, projectSlug, collectionSlug string, q SingleQuery) (domain.Entry, error)
	CreateEntry(ctx context.Context, projectSlug, collectionSlug string, payload map[string]any, opts CreateOptions) (domain.Entry, error)
	ReplaceEntry(ctx context.Context, projectSlug, collectionSlug, identifier string, payload map[string]any) (domain.Entry, error)
	PatchEntry(ctx context.Context, projectSlug, collectionSlug, identifier string, payload map[string]any) (domain.Entry, error)
	SetEntryStatus(ctx context.Context, projectSlug, collectionSlug, identifier string, status domain.Status) error
	DeleteEntry(ctx context.Context, projectSlug, collectionSlug, identifier string, hard bool) error
	RestoreEntry(ctx context.Context, projectSlug, collectionSlug, identifier string) error
}

func NewEntryService(registry schemausecases.SchemaRegistry, repository EntryRepository) *SimpleEntryService {
	return &SimpleEntryService{
		registry:   registry,
		repository: repository,
	}
}

var _ EntryService = &SimpleEntryService{}

type SimpleEntryService struct {
	registry   schemausecases.SchemaRegistry
	repository EntryRepository
}

func (s *SimpleEntryService) schemaFor(ctx context.Context, projectSlug, collectionSlug string) (schemadomain.Schema, error) {
	project, err := s.registry.ProjectBySlug(ctx, projectSlug)
	if err != nil {
		return schemadomain.Schema{}, err
	}

	schema, err := s.registry.CollectionSchema(ctx, project.ID, collectionSlug)
	if err != nil {
		return schemadomain.Schema{}, err
	}

	return schema, nil
}

func (s *SimpleEntryService) ListEntries(ctx context.Context, projectSlug, collectionSlug string, q ListQuery) (ListResult, error) {
	schema, err := s.schemaFor(ctx, projectSlug, collectionSlug)
	if err != nil {
		return ListResult{}, err
	}

	// Singleton collections hold one entry; filters and size controls do
	// not apply.
	if schema.Collection.Singleton {
		entry, err := s.repository.FindOne(ctx, schema, SingleQuery{State: q.State, Locale: q.Locale})
		if errors.Is(err, ErrEntryNotFound) {
			return ListResult{}, nil
		}
		if err != nil {
			return ListResult{}, fmt.Errorf("finding singleton entry: %w", err)
		}
		return ListResult{Entries: []domain.Entry{entry}, Total: 1}, nil
	}

	result, err := s.repository.List(ctx, schema, q)
	if err != nil {
		slog.Error("listing entries", slog.String("error", err.Error()))
		return ListResult{}, fmt.Errorf("listing entries: %w", err)
	}

	if len(result.Dropped) > 0 {
		slog.Warn("ignoring unknown filter/sort fields",
			slog.String("collection", collectionSlug),
			slog.Any("fields", result.Dropped))
	}

	return result, nil
}

func (s *SimpleEntryService) CountEntries(ctx context.Context, projectSlug, collectionSlug string, q ListQuery) (int64, error) {
	schema, err := s.schemaFor(ctx, projectSlug, collectionSlug)
	if err != nil {
		return 0, err
	}

	count, err := s.repository.Count(ctx, schema, q)
	if err != nil {
		slog.Error("counting entries", slog.String("error", err.Error()))
		return 0, fmt.Errorf("counting entries: %w", err)
	}

	return count, nil
}

func (s *SimpleEntryService) GetEntry(ctx context.Context, projectSlug, collectionSlug string, q SingleQuery) (domain.Entry, error) {
	schema, err := s.schemaFor(ctx, projectSlug, collectionSlug)
	if err != nil {
		return domain.Entry{}, err
	}

	entry, err := s.repository.FindOne(ctx, schema, q)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return domain.Entry{}, ErrEntryNotFound
		}
		slog.Error("getting entry", slog.String("error", err.Error()))
		return domain.Entry{}, fmt.Errorf("getting entry: %w", err)
	}

	return entry, nil
}

func (s *SimpleEntryService) CreateEntry(ctx context.Context, projectSlug, collectionSlug string, payload map[string]any, opts CreateOptions) (domain.Entry, error) {
	schema, err := s.schemaFor(ctx, projectSlug, collectionSlug)
	if err != nil {
		return domain.Entry{}, err
	}

	builder := domain.NewEntryBuilder().
		WithProject(schema.Collection.ProjectID).
		WithCollection(schema.Collection.ID)

	if opts.Locale != "" {
		builder = builder.WithLocale(opts.Locale)
	}
	if opts.Status != "" {
		builder = builder.WithStatus(opts.Status)
	}
	if opts.TranslationGroupID != "" {
		builder = builder.WithTranslationGroup(opts.TranslationGroupID)
	}

	entry, err := builder.Build()
	if err != nil {
		return domain.Entry{}, fmt.Errorf("building entry: %w", err)
	}

	created, err := s.repository.Create(ctx, schema, entry, payload)
	if err != nil {
		slog.Error("creating entry", slog.String("error", err.Error()))
		return domain.Entry{}, fmt.Errorf("creating entry: %w", err)
	}

	slog.Info("entry created",
		slog.String("uuid", created.UUID),
		slog.String("collection", collectionSlug))

	return created, nil
}

func (s *SimpleEntryService) ReplaceEntry(ctx context.Context, projectSlug, collectionSlug, identifier string, payload map[string]any) (domain.Entry, error) {
	return s.rewrite(ctx, projectSlug, collectionSlug, identifier, payload, s.repository.Replace)
}

func (s *SimpleEntryService) PatchEntry(ctx context.Context, projectSlug, collectionSlug, identifier string, payload map[string]any) (domain.Entry, error) {
	return s.rewrite(ctx, projectSlug, collectionSlug, identifier, payload, s.repository.Patch)
}

type rewriteFn func(ctx context.Context, schema schemadomain.Schema, entryID int64, payload map[string]any) error

func (s *SimpleEntryService) rewrite(ctx context.Context, projectSlug, collectionSlug, identifier string, payload map[string]any, fn rewriteFn) (domain.Entry, error) {
	schema, err := s.schemaFor(ctx, projectSlug, collectionSlug)
	if err != nil {
		return domain.Entry{}, err
	}

	entry, err := s.repository.FindOne(ctx, schema, SingleQuery{State: StateWithDraft, Identifier: identifier})
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return domain.Entry{}, ErrEntryNotFound
		}
		return domain.Entry{}, fmt.Errorf("getting entry: %w", err)
	}

	if err := fn(ctx, schema, entry.ID, payload); err != nil {
		slog.Error("rewriting entry values", slog.String("error", err.Error()))
		return domain.Entry{}, fmt.Errorf("rewriting entry values: %w", err)
	}

	updated, err := s.repository.FindOne(ctx, schema, SingleQuery{State: StateWithDraft, Identifier: identifier})
	if err != nil {
		return domain.Entry{}, fmt.Errorf("reloading entry: %w", err)
	}

	return updated, nil
}

func (s *SimpleEntryService) SetEntryStatus(ctx context.Context, projectSlug, collectionSlug, identifier string, status domain.Status) error {
	schema, err := s.schemaFor(ctx, projectSlug, collectionSlug)
	if err != nil {
		return err
	}

	entry, err := s.repository.FindOne(ctx, schema, SingleQuery{State: StateWithDraft, Identifier: identifier})
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("getting entry: %w", err)
	}

	if err := s.repository.SetStatus(ctx, entry.ID, status); err != nil {
		slog.Error("setting entry status", slog.String("error", err.Error()))
		return fmt.Errorf("setting entry status: %w", err)
	}

	return nil
}

func (s *SimpleEntryService) DeleteEntry(ctx context.Context, projectSlug, collectionSlug, identifier string, hard bool) error {
	schema, err := s.schemaFor(ctx, projectSlug, collectionSlug)
	if err != nil {
		return err
	}

	entry, err := s.repository.FindOne(ctx, schema, SingleQuery{State: StateWithDraft, Identifier: identifier})
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("getting entry: %w", err)
	}

	if hard {
		err = s.repository.HardDelete(ctx, entry.ID)
	} else {
		err = s.repository.SoftDelete(ctx, entry.ID)
	}
	if err != nil {
		slog.Error("deleting entry", slog.String("error", err.Error()))
		return fmt.Errorf("deleting entry: %w", err)
	}

	slog.Info("entry deleted",
		slog.String("uuid", entry.UUID),
		slog.Bool("hard", hard))

	return nil
}

func (s *SimpleEntryService) RestoreEntry(ctx context.Context, projectSlug, collectionSlug, identifier string) error {
	schema, err := s.schemaFor(ctx, projectSlug, collectionSlug)
	if err != nil {
		return err
	}

	if err := s.repository.Restore(ctx, schema, identifier); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return ErrEntryNotFound
		}
		slog.Error("restoring entry", slog.String("error", err.Error()))
		return fmt.Errorf("restoring entry: %w", err)
	}

	slog.Info("entry restored",
		slog.String("identifier", identifier),
		slog.String("collection", collectionSlug))

	return nil
}
