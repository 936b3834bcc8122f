package model

import (
	"context"
	"sync"

	"InspectAPI/internal/logger"
)

// Дескриптор не ограничивает рекурсию: callback вправе дернуть GetList по
// своей же модели. Глубину считаем через контекст и на пределе гасим
// callback-поля в nil вместо дальнейшего погружения.
const maxEnrichDepth = 3

type enrichDepthKey struct{}

func enrichDepth(ctx context.Context) int {
	if d, ok := ctx.Value(enrichDepthKey{}).(int); ok {
		return d
	}
	return 0
}

func withEnrichDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, enrichDepthKey{}, depth)
}

// enrich гарантирует, что каждое объявленное extended-поле присутствует на
// каждой строке. Join-поля уже пришли из проекции — для них только
// добиваем отсутствующий ключ. Callback-поля считаются строго после
// выборки, по строкам параллельно, внутри строки — в порядке объявления
// (позднее поле может читать результат раннего). Ошибка одного callback-а
// деградирует поле в nil и никогда не роняет строку.
func (d *FieldDescriptor) enrich(ctx context.Context, items []Record) error {
	if len(items) == 0 || len(d.ExtendedFields) == 0 {
		return nil
	}

	depth := enrichDepth(ctx)
	callbackCtx := withEnrichDepth(ctx, depth+1)

	var wg sync.WaitGroup
	for _, row := range items {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(row Record) {
			defer wg.Done()
			d.enrichRow(callbackCtx, row, depth)
		}(row)
	}
	wg.Wait()

	return ctx.Err()
}

func (d *FieldDescriptor) enrichRow(ctx context.Context, row Record, depth int) {
	for _, ef := range d.ExtendedFields {
		if ef.JoinResolved() {
			if _, ok := row[ef.Name]; !ok {
				row[ef.Name] = nil
			}
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if depth >= maxEnrichDepth {
			logger.Warn("enrich_depth_exceeded", map[string]any{
				"model": d.Name,
				"field": ef.Name,
				"depth": depth,
			})
			row[ef.Name] = nil
			continue
		}
		val, err := ef.Callback(ctx, row)
		if err != nil {
			logger.Warn("enrich_callback_failed", map[string]any{
				"model": d.Name,
				"field": ef.Name,
				"error": err.Error(),
			})
			row[ef.Name] = nil
			continue
		}
		row[ef.Name] = val
	}
}
