package product

import (
	"context"
	"fmt"
	"time"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
	"datacatalog/internal/core/tx"
	"datacatalog/internal/domain"
	"datacatalog/internal/domain/audit"
	"datacatalog/pkg/logger"
)

const entityName = "Product"

// Service runs product reads through the visibility scope and product
// writes through the permission policy, with the data change and its audit
// entry committed in one transaction.
type Service struct {
	repo     Repository
	tags     TagRepository
	cache    TagCache
	recorder *audit.Recorder
	txm      tx.Manager
	hooks    *domain.HookRegistry[*Product]
	now      func() time.Time
}

// ServiceConfig wires the service.
type ServiceConfig struct {
	Repo      Repository
	Tags      TagRepository
	TagCache  TagCache // optional
	Recorder  *audit.Recorder
	TxManager tx.Manager
}

// NewService creates the product service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		repo:     cfg.Repo,
		tags:     cfg.Tags,
		cache:    cfg.TagCache,
		recorder: cfg.Recorder,
		txm:      cfg.TxManager,
		hooks:    domain.NewHookRegistry[*Product](),
		now:      func() time.Time { return time.Now().UTC() },
	}
	if s.cache != nil {
		s.hooks.OnAfterWrite(func(ctx context.Context, _ *Product) error {
			s.cache.Invalidate(ctx)
			return nil
		})
	}
	return s
}

// Hooks exposes the after-commit hook registry.
func (s *Service) Hooks() *domain.HookRegistry[*Product] {
	return s.hooks
}

// List returns one page of products the actor may see.
func (s *Service) List(ctx context.Context, actor *security.Actor, f ListFilter) (domain.ListResult[Product], error) {
	f.Normalize()
	if err := f.Validate(); err != nil {
		return domain.ListResult[Product]{}, err
	}

	q, err := BuildQuery(f, security.VisibilityScope(actor, f.Visibility))
	if err != nil {
		return domain.ListResult[Product]{}, apperror.NewInternal(err)
	}
	if q.MatchesNothing() {
		return domain.NewListResult[Product](nil, 0, f.Pagination), nil
	}

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return domain.ListResult[Product]{}, fmt.Errorf("list products: %w", err)
	}
	return domain.NewListResult(items, total, f.Pagination), nil
}

// Get returns a single product. Products outside the actor's scope are
// reported as not found.
func (s *Service) Get(ctx context.Context, actor *security.Actor, productID id.ID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, s.normalizeGetErr(err, productID)
	}
	if !security.CanSee(actor, p.Visibility) {
		return nil, apperror.NewNotFound(entityName, productID.String())
	}
	return p, nil
}

// ListTags returns every tag, served from the cache when one is configured.
func (s *Service) ListTags(ctx context.Context) ([]Tag, error) {
	var gen int64
	if s.cache != nil {
		tags, g, ok := s.cache.Get(ctx)
		if ok {
			return tags, nil
		}
		gen = g
	}
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, gen, tags)
	}
	return tags, nil
}

// Create validates input, stores the product with its tags and records a
// CREATE entry.
func (s *Service) Create(ctx context.Context, actor *security.Actor, in Input) (*Product, error) {
	if err := security.RequireActor(actor); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	p := &Product{
		ID:          id.New(),
		CreatedByID: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	in.apply(p)

	var created *Product
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		tags, err := s.tags.Upsert(ctx, in.TagSet())
		if err != nil {
			return fmt.Errorf("upsert tags: %w", err)
		}
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if err := s.repo.LinkTags(ctx, p.ID, tagIDs(tags)); err != nil {
			return fmt.Errorf("link tags: %w", err)
		}

		productID := p.ID
		if _, err := s.recorder.Record(ctx, audit.Record{
			Entity:    audit.EntityProduct,
			EntityID:  p.ID.String(),
			Action:    audit.ActionCreate,
			UserID:    actor.ID,
			ProductID: &productID,
			Diff:      map[string]any{"created": true},
		}); err != nil {
			return err
		}

		created, err = s.repo.GetByID(ctx, p.ID)
		return err
	})
	if err != nil {
		logger.Error(ctx, "create product failed", "actor_id", actor.ID, "error", err)
		return nil, err
	}

	s.runAfter(ctx, domain.AfterCreate, created)
	logger.Info(ctx, "product created", "product_id", created.ID, "actor_id", actor.ID)
	return created, nil
}

// Update replaces every field and the tag set of an existing product and
// records an UPDATE entry with before and after snapshots.
func (s *Service) Update(ctx context.Context, actor *security.Actor, productID id.ID, in Input) (*Product, error) {
	if err := security.RequireActor(actor); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var updated *Product
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.loadForWrite(ctx, actor, productID)
		if err != nil {
			return err
		}
		if !security.CanEdit(actor.Role, current.CreatedByID, actor.ID) {
			return apperror.NewForbidden("you cannot edit this product").
				WithDetail("id", productID.String())
		}

		before := current.Clone()
		next := current.Clone()
		in.apply(next)
		next.UpdatedAt = s.now()

		if err := s.repo.Update(ctx, next); err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		desired, err := s.tags.Upsert(ctx, in.TagSet())
		if err != nil {
			return fmt.Errorf("upsert tags: %w", err)
		}
		add, remove := DiffTags(current.Tags, desired)
		if len(remove) > 0 {
			if err := s.repo.UnlinkTags(ctx, productID, remove); err != nil {
				return fmt.Errorf("unlink tags: %w", err)
			}
		}
		if len(add) > 0 {
			if err := s.repo.LinkTags(ctx, productID, add); err != nil {
				return fmt.Errorf("link tags: %w", err)
			}
		}

		updated, err = s.repo.GetByID(ctx, productID)
		if err != nil {
			return err
		}

		_, err = s.recorder.Record(ctx, audit.Record{
			Entity:    audit.EntityProduct,
			EntityID:  productID.String(),
			Action:    audit.ActionUpdate,
			UserID:    actor.ID,
			ProductID: &productID,
			Diff:      map[string]any{"before": before, "after": updated},
		})
		return err
	})
	if err != nil {
		logger.Warn(ctx, "update product failed", "product_id", productID, "actor_id", actor.ID, "error", err)
		return nil, err
	}

	s.runAfter(ctx, domain.AfterUpdate, updated)
	logger.Info(ctx, "product updated", "product_id", productID, "actor_id", actor.ID)
	return updated, nil
}

// Delete removes a product and records a DELETE entry holding the final snapshot.
func (s *Service) Delete(ctx context.Context, actor *security.Actor, productID id.ID) error {
	if err := security.RequireActor(actor); err != nil {
		return err
	}

	var deleted *Product
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.loadForWrite(ctx, actor, productID)
		if err != nil {
			return err
		}
		if !security.CanDelete(actor.Role, current.CreatedByID, actor.ID) {
			return apperror.NewForbidden("only administrators can delete products").
				WithDetail("id", productID.String())
		}

		if err := s.repo.Delete(ctx, productID); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}

		// The row is gone, so the entry carries no product reference.
		_, err = s.recorder.Record(ctx, audit.Record{
			Entity:   audit.EntityProduct,
			EntityID: productID.String(),
			Action:   audit.ActionDelete,
			UserID:   actor.ID,
			Diff:     map[string]any{"deleted": current},
		})
		deleted = current
		return err
	})
	if err != nil {
		logger.Warn(ctx, "delete product failed", "product_id", productID, "actor_id", actor.ID, "error", err)
		return err
	}

	s.runAfter(ctx, domain.AfterDelete, deleted)
	logger.Info(ctx, "product deleted", "product_id", productID, "actor_id", actor.ID)
	return nil
}

// loadForWrite fetches the product a mutation targets. A product the actor
// can neither see nor owns is reported as not found.
func (s *Service) loadForWrite(ctx context.Context, actor *security.Actor, productID id.ID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, s.normalizeGetErr(err, productID)
	}
	if !security.CanSee(actor, p.Visibility) && p.CreatedByID != actor.ID {
		return nil, apperror.NewNotFound(entityName, productID.String())
	}
	return p, nil
}

func (s *Service) normalizeGetErr(err error, productID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(entityName, productID.String())
	}
	return fmt.Errorf("get product %s: %w", productID, err)
}

func (s *Service) runAfter(ctx context.Context, event domain.HookEvent, p *Product) {
	if err := s.hooks.Run(ctx, event, p); err != nil {
		logger.Warn(ctx, "product hook failed", "event", event, "product_id", p.ID, "error", err)
	}
}

func tagIDs(tags []Tag) []id.ID {
	ids := make([]id.ID, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}
