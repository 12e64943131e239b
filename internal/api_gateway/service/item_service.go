package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	ledger "github.com/inventory-sales-ledger/internal/ledger/service"
)

// ItemServiceImpl implements the ItemService interface
type ItemServiceImpl struct {
	itemRepo item.Repository
	saleRepo sale.Repository
	ledger   ledger.LedgerService
	cache    ItemCache
	logger   *slog.Logger
}

// NewItemService creates a new item service. cache may be nil.
func NewItemService(
	logger *slog.Logger,
	itemRepo item.Repository,
	saleRepo sale.Repository,
	ledgerService ledger.LedgerService,
	cache ItemCache,
) ItemService {
	return &ItemServiceImpl{
		itemRepo: itemRepo,
		saleRepo: saleRepo,
		ledger:   ledgerService,
		cache:    cache,
		logger:   logger,
	}
}

func (s *ItemServiceImpl) RegisterItem(ctx context.Context, input RegisterItemInput) (*item.Item, error) {
	it, err := item.NewItem(input.Name, input.Price, input.Quantity, input.Location, input.Category, input.AcquiredOn)
	if err != nil {
		return nil, err
	}

	// the unique index still decides when two registrations race
	existing, err := s.itemRepo.GetByName(ctx, it.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, item.ErrDuplicateName{Name: it.Name}
	}

	if err := s.itemRepo.Create(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info("Item registered", "item_id", it.ID, "name", it.Name, "quantity", it.QuantityOnHand)
	return it, nil
}

func (s *ItemServiceImpl) GetItem(ctx context.Context, id int64) (*item.Item, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("Item cache read failed", "item_id", id, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	it, err := s.ledger.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, it); err != nil {
			s.logger.Warn("Item cache write failed", "item_id", id, "error", err)
		}
	}
	return it, nil
}

func (s *ItemServiceImpl) ListItems(ctx context.Context, filter item.ListFilter, skip, limit int) ([]*item.Item, int, error) {
	items, err := s.itemRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	item.SortBySize(items)

	total := len(items)
	if skip >= total {
		return []*item.Item{}, total, nil
	}
	end := min(skip+limit, total)
	return items[skip:end], total, nil
}

// EditItem applies an administrative edit. Sales already recorded keep their prices.
func (s *ItemServiceImpl) EditItem(ctx context.Context, id int64, edit item.Edit) (*item.Item, error) {
	it, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := it.Apply(edit); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Update(ctx, it); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	s.logger.Info("Item edited", "item_id", id, "version", it.Version)
	return it, nil
}

// DeleteItem refuses items with recorded sales. The foreign key on sale entries
// covers a sale committed between the count and the delete.
func (s *ItemServiceImpl) DeleteItem(ctx context.Context, id int64) error {
	sold, err := s.saleRepo.CountByItem(ctx, id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if sold > 0 {
		return fmt.Errorf("delete item %d: %w", id, item.ErrItemHasSales{ItemID: id})
	}

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	s.invalidate(ctx, id)

	s.logger.Info("Item deleted", "item_id", id)
	return nil
}

func (s *ItemServiceImpl) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("Item cache invalidation failed", "item_id", id, "error", err)
	}
}
