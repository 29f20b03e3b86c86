package persistence

import (
	"strings"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// applyPagination applies page/size and ordering from the filter.
// orderColumns whitelists sortable columns; anything else falls back to
// the default ordering so callers cannot inject SQL through OrderBy.
func applyPagination(query *gorm.DB, filter shared.Filter, defaultOrder string, orderColumns ...string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	order := defaultOrder
	if filter.OrderBy != "" {
		for _, col := range orderColumns {
			if filter.OrderBy == col {
				dir := "ASC"
				if strings.ToLower(filter.OrderDir) == "desc" {
					dir = "DESC"
				}
				order = col + " " + dir
				break
			}
		}
	}
	if order != "" {
		query = query.Order(order)
	}
	return query
}

// applySearch adds an ILIKE match over the given columns
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + search + "%"
	var sb strings.Builder
	args := make([]interface{}, 0, len(columns))
	for i, col := range columns {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		sb.WriteString(col + " ILIKE ?")
		args = append(args, pattern)
	}
	return query.Where(sb.String(), args...)
}

// findPage counts the filtered rows, then fetches one page into dest and
// wraps the result.
func findPage[T any](query *gorm.DB, filter shared.Filter, defaultOrder string, orderColumns ...string) (*shared.Paginated[T], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []T
	page := applyPagination(query.Session(&gorm.Session{}), filter, defaultOrder, orderColumns...)
	if err := page.Find(&items).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// saveWithLock updates an aggregate guarded by its version column. The
// domain has already incremented the version, so the row must still hold
// version-1 or someone else got there first.
func saveWithLock(query *gorm.DB, entity interface{}, id uuid.UUID, version int) error {
	result := query.
		Model(entity).
		Where("id = ? AND version = ?", id, version-1).
		Select("*").
		Updates(entity)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
