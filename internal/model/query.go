package model

import (
	"fmt"
	"strings"

	"InspectAPI/internal/logger"

	"github.com/Masterminds/squirrel"
)

// Служебные колонки, которые несёт каждая таблица слоя.
const (
	deletedColumn  = "deleted"
	modifiedColumn = "modified_at"
)

// buildSelect собирает SELECT для модели: базовые колонки, LEFT JOIN-ы для
// join-resolved extended-полей, предикат, soft-delete фильтр, поиск,
// сортировку и пагинацию. Помимо запроса возвращает две части списка
// сортировок: applied — ушедшие в ORDER BY, residual — callback-поля,
// которые в SQL не выразить и которые досортирует память (шаг REORDER).
// Обе части сохраняют относительный приоритет записей запроса.
func (d *FieldDescriptor) buildSelect(
	pred squirrel.Sqlizer,
	paging *PagingRequest,
	filterDeleted bool,
) (sb squirrel.SelectBuilder, applied, residual []Sort, err error) {

	sb = squirrel.Select(d.Table + ".*").
		From(d.Table).
		PlaceholderFormat(squirrel.Dollar)

	sb = d.applyJoins(sb, true)

	where, err := d.whereClause(pred, paging, filterDeleted)
	if err != nil {
		return sb, nil, nil, err
	}
	if where != nil {
		sb = sb.Where(where)
	}

	for _, s := range paging.sorts() {
		expr, memOnly, ok := d.orderExpr(s)
		if !ok {
			logger.Debug("sort_field_dropped", map[string]any{
				"model": d.Name,
				"field": s.Field,
			})
			continue
		}
		if memOnly {
			residual = append(residual, s)
			continue
		}
		applied = append(applied, s)
		sb = sb.OrderBy(expr)
	}

	if paging.Enabled() {
		limit, offset := paging.limitOffset()
		sb = sb.Limit(limit)
		if offset > 0 {
			sb = sb.Offset(offset)
		}
	}

	return sb, applied, residual, nil
}

// buildCount собирает COUNT-запрос с тем же набором JOIN-ов и предикатов,
// но без ORDER BY/LIMIT/OFFSET.
func (d *FieldDescriptor) buildCount(
	pred squirrel.Sqlizer,
	paging *PagingRequest,
	filterDeleted bool,
) (squirrel.SelectBuilder, error) {

	sb := squirrel.Select("COUNT(*)").
		From(d.Table).
		PlaceholderFormat(squirrel.Dollar)

	sb = d.applyJoins(sb, false)

	where, err := d.whereClause(pred, paging, filterDeleted)
	if err != nil {
		return sb, err
	}
	if where != nil {
		sb = sb.Where(where)
	}
	return sb, nil
}

// applyJoins добавляет LEFT JOIN для каждого join-resolved extended-поля.
// Callback-поля в SQL не участвуют вовсе. JOIN идёт по FromField базовой
// таблицы к первичному ключу связанной, алиас — по позиции дескриптора.
func (d *FieldDescriptor) applyJoins(sb squirrel.SelectBuilder, project bool) squirrel.SelectBuilder {
	for i, ef := range d.ExtendedFields {
		if !ef.JoinResolved() {
			continue
		}
		alias := joinAlias(i)
		sb = sb.LeftJoin(fmt.Sprintf(
			"%s AS %s ON %s.%s = %s.%s",
			ef.Ref.Table, alias, d.Table, ef.FromField, alias, ef.Ref.PrimaryKey,
		))
		if project {
			sb = sb.Column(fmt.Sprintf("%s.%s AS %s", alias, ef.refColumn(), ef.Name))
		}
	}
	return sb
}

// whereClause соединяет по AND: доверенный предикат вызывающего кода,
// soft-delete фильтр и условия поиска. Все части опциональны.
func (d *FieldDescriptor) whereClause(
	pred squirrel.Sqlizer,
	paging *PagingRequest,
	filterDeleted bool,
) (squirrel.Sqlizer, error) {

	var conds []squirrel.Sqlizer
	if pred != nil {
		conds = append(conds, pred)
	}
	if filterDeleted {
		conds = append(conds, squirrel.Eq{d.Table + "." + deletedColumn: false})
	}
	if paging != nil && paging.SearchText != "" {
		if cond := d.searchCondition(paging.SearchText, paging.SearchFields); cond != nil {
			conds = append(conds, cond)
		}
	}
	if len(conds) == 0 {
		return nil, nil
	}
	if len(conds) == 1 {
		return conds[0], nil
	}
	return squirrel.And(conds), nil
}

// orderExpr превращает одну запись сортировки в ORDER BY-выражение.
// memOnly=true означает callback-поле: в SQL его нет, сортируем в памяти.
// Невалидные и не входящие в whitelist поля молча отбрасываются (ok=false).
func (d *FieldDescriptor) orderExpr(s Sort) (expr string, memOnly, ok bool) {
	if s.Field == "" || !identRe.MatchString(s.Field) {
		return "", false, false
	}
	var col string
	switch {
	case d.hasField(s.Field):
		col = d.Table + "." + s.Field
	default:
		ef, idx := d.extendedByName(s.Field)
		if ef == nil {
			return "", false, false
		}
		if !ef.JoinResolved() {
			return "", true, true
		}
		col = joinAlias(idx) + "." + ef.refColumn()
	}

	dir := "ASC"
	if !s.Ascending {
		dir = "DESC"
	}
	return col + " " + dir + " " + nullsClause(s), false, true
}

// nullsClause отражает флаг NullsFirst на SQL с учётом направления:
// для DESC размещение NULL-ов зеркалится.
func nullsClause(s Sort) string {
	first := s.NullsFirst
	if !s.Ascending {
		first = !first
	}
	if first {
		return "NULLS FIRST"
	}
	return "NULLS LAST"
}

// searchCondition строит текстовый фильтр: строка подходит, если ЛЮБОЕ из
// полей содержит ЛЮБОЕ из слов (регистронезависимо). Поля проверяются по
// whitelist и на допустимые символы; непрошедшие молча выпадают.
// Join-resolved extended-поле ищется по колонке своего алиаса.
func (d *FieldDescriptor) searchCondition(text string, fields []string) squirrel.Sqlizer {
	words := strings.Fields(text)
	if len(words) == 0 || len(fields) == 0 {
		return nil
	}

	var perField []squirrel.Sqlizer
	for _, f := range fields {
		col, ok := d.searchColumn(f)
		if !ok {
			logger.Debug("search_field_dropped", map[string]any{
				"model": d.Name,
				"field": f,
			})
			continue
		}
		wordConds := make(squirrel.Or, 0, len(words))
		for _, w := range words {
			wordConds = append(wordConds, squirrel.ILike{col: "%" + w + "%"})
		}
		perField = append(perField, wordConds)
	}
	if len(perField) == 0 {
		return nil
	}
	if len(perField) == 1 {
		return perField[0]
	}
	return squirrel.Or(perField)
}

func (d *FieldDescriptor) searchColumn(name string) (string, bool) {
	if !identRe.MatchString(name) {
		return "", false
	}
	if d.hasField(name) {
		return d.Table + "." + name, true
	}
	if ef, idx := d.extendedByName(name); ef != nil && ef.JoinResolved() {
		return joinAlias(idx) + "." + ef.refColumn(), true
	}
	return "", false
}
