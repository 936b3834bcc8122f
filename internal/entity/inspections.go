package entity

import (
	"context"
	"encoding/json"
	"fmt"

	"InspectAPI/internal/model"

	"github.com/Masterminds/squirrel"
)

var Inspections = &model.FieldDescriptor{
	Name:                "inspections",
	Table:               "inspections",
	PrimaryKey:          "id",
	PrimaryDisplayField: "title",
	Fields: []string{
		"id", "title", "status", "scheduled_at", "building_id",
		"inspector_id", "checklist", "deleted", "modified_at",
	},
	ExtendedFields: []*model.ExtendedField{
		{Name: "x_building_name", FromField: "building_id", Ref: Buildings},
		{Name: "x_inspector_name", FromField: "inspector_id", Ref: Inspectors},
		{Name: "x_checklist", Callback: decodeChecklist},
		{Name: "x_finding_count", Callback: inspectionFindingCount},
	},
}

// decodeChecklist разворачивает текстовую JSON-колонку checklist в
// структуру ответа.
func decodeChecklist(_ context.Context, row model.Record) (any, error) {
	raw, ok := toString(row["checklist"])
	if !ok || raw == "" {
		return nil, nil
	}
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("checklist decode: %w", err)
	}
	return decoded, nil
}

// inspectionFindingCount считает замечания инспекции через этот же слой
// доступа: страница в одну строку даёт TotalCount без выборки всего набора.
// Дескриптор замечаний берём из реестра, а не по прямой ссылке, чтобы не
// завязывать инициализацию пакетов в цикл.
func inspectionFindingCount(ctx context.Context, row model.Record) (any, error) {
	id, ok := row["id"]
	if !ok || id == nil {
		return nil, fmt.Errorf("inspection row has no id")
	}
	findings, ok := model.Registry["findings"]
	if !ok {
		return nil, fmt.Errorf("findings model not registered")
	}
	size, index := 1.0, 0.0
	res, err := model.GetList(ctx, findings,
		squirrel.Eq{"findings.inspection_id": id},
		&model.PagingRequest{PageSize: &size, PageIndex: &index},
		true,
	)
	if err != nil {
		return nil, err
	}
	return res.TotalCount, nil
}
