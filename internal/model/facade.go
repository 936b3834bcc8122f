package model

import (
	"context"
	"fmt"

	"InspectAPI/internal/db"
	"InspectAPI/internal/logger"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// GetList — полный конвейер: BUILD -> FETCH -> ENRICH -> REORDER -> COUNT.
// pred — доверенный фрагмент предиката, собранный только бэкенд-кодом.
// При выключенной пагинации возвращается весь набор строк и нулевые
// TotalCount/TotalPages. Запросы страницы и счётчика идут отдельными
// стейтментами без транзакции: конкурентная запись между ними может дать
// TotalCount, не совпадающий с Items, — это осознанное поведение слоя.
func GetList(
	ctx context.Context,
	d *FieldDescriptor,
	pred squirrel.Sqlizer,
	paging *PagingRequest,
	filterDeleted bool,
) (*PagedResult, error) {

	sb, applied, residual, err := d.buildSelect(pred, paging, filterDeleted)
	if err != nil {
		return nil, err
	}
	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	logger.Debug("sql_select", map[string]any{
		"model": d.Name,
		"sql":   sqlStr,
		"args":  args,
	})

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", d.Name, err)
	}
	items, err := scanRecords(rows)
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", d.Name, err)
	}

	if err := d.enrich(ctx, items); err != nil {
		return nil, err
	}
	applyResidualSorts(items, applied, residual)

	result := &PagedResult{Items: items}
	if paging.Enabled() {
		count, err := d.count(ctx, pred, paging, filterDeleted)
		if err != nil {
			return nil, err
		}
		size, _ := paging.limitOffset()
		result.TotalCount = count
		result.TotalPages = totalPages(count, size)
	}
	return result, nil
}

// Get выбирает одну строку по первичному ключу через полный
// join/enrich-конвейер. Отсутствующая строка — это пустой Record, не
// ошибка: вызывающий код проверяет значимые поля сам.
func Get(ctx context.Context, d *FieldDescriptor, id any, filterDeleted bool) (Record, error) {
	pred := squirrel.Eq{d.Table + "." + d.PrimaryKey: id}
	sb, _, _, err := d.buildSelect(pred, nil, filterDeleted)
	if err != nil {
		return nil, err
	}
	sqlStr, args, err := sb.Limit(1).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", d.Name, err)
	}
	items, err := scanRecords(rows)
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", d.Name, err)
	}
	if len(items) == 0 {
		return Record{}, nil
	}
	if err := d.enrich(ctx, items[:1]); err != nil {
		return nil, err
	}
	return items[0], nil
}

// ItemExists — быстрая проверка наличия строки; join/enrich-конвейер
// намеренно не трогаем.
func ItemExists(ctx context.Context, d *FieldDescriptor, id any, filterDeleted bool) (bool, error) {
	sb := squirrel.Select("COUNT(*)").
		From(d.Table).
		PlaceholderFormat(squirrel.Dollar).
		Where(squirrel.Eq{d.Table + "." + d.PrimaryKey: id})
	if filterDeleted {
		sb = sb.Where(squirrel.Eq{d.Table + "." + deletedColumn: false})
	}
	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return false, err
	}
	var count int
	if err := db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("exists %s: %w", d.Name, err)
	}
	return count > 0, nil
}

// Delete — только soft delete: флаг и отметка времени, физического
// удаления на этом слое нет.
func Delete(ctx context.Context, d *FieldDescriptor, id any) error {
	sqlStr, args, err := squirrel.Update(d.Table).
		PlaceholderFormat(squirrel.Dollar).
		Set(deletedColumn, true).
		Set(modifiedColumn, squirrel.Expr("now()")).
		Where(squirrel.Eq{d.PrimaryKey: id}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := db.Pool.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("delete %s: %w", d.Name, err)
	}
	return nil
}

// Insert создаёт строку из whitelist-колонок; первичный ключ — uuid, если
// вызывающий код его не задал. Возвращает созданную строку.
func Insert(ctx context.Context, d *FieldDescriptor, values map[string]any) (Record, error) {
	cols, vals := d.writeColumns(values)
	if _, ok := values[d.PrimaryKey]; !ok {
		cols = append(cols, d.PrimaryKey)
		vals = append(vals, uuid.NewString())
	}
	cols = append(cols, deletedColumn, modifiedColumn)
	vals = append(vals, false, squirrel.Expr("now()"))

	sqlStr, args, err := squirrel.Insert(d.Table).
		PlaceholderFormat(squirrel.Dollar).
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, err
	}
	return d.returningOne(ctx, sqlStr, args)
}

// Update пишет whitelist-колонки и штампует modified_at.
func Update(ctx context.Context, d *FieldDescriptor, id any, values map[string]any) (Record, error) {
	cols, vals := d.writeColumns(values)
	ub := squirrel.Update(d.Table).PlaceholderFormat(squirrel.Dollar)
	for i, c := range cols {
		ub = ub.Set(c, vals[i])
	}
	ub = ub.Set(modifiedColumn, squirrel.Expr("now()"))

	sqlStr, args, err := ub.
		Where(squirrel.Eq{d.PrimaryKey: id}).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, err
	}
	return d.returningOne(ctx, sqlStr, args)
}

func (d *FieldDescriptor) count(
	ctx context.Context,
	pred squirrel.Sqlizer,
	paging *PagingRequest,
	filterDeleted bool,
) (int, error) {
	cb, err := d.buildCount(pred, paging, filterDeleted)
	if err != nil {
		return 0, err
	}
	sqlStr, args, err := cb.ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", d.Name, err)
	}
	return count, nil
}

// writeColumns отбирает из значений только базовые whitelist-колонки,
// кроме первичного ключа и служебных. Остальные ключи молча выпадают.
func (d *FieldDescriptor) writeColumns(values map[string]any) ([]string, []any) {
	cols := make([]string, 0, len(values))
	vals := make([]any, 0, len(values))
	for _, f := range d.Fields {
		if f == deletedColumn || f == modifiedColumn {
			continue
		}
		if v, ok := values[f]; ok {
			cols = append(cols, f)
			vals = append(vals, v)
		}
	}
	return cols, vals
}

func (d *FieldDescriptor) returningOne(ctx context.Context, sqlStr string, args []any) (Record, error) {
	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", d.Name, err)
	}
	items, err := scanRecords(rows)
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", d.Name, err)
	}
	if len(items) == 0 {
		return Record{}, nil
	}
	return items[0], nil
}
