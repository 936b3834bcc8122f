package entity

import (
	"context"
	"fmt"

	"InspectAPI/internal/model"

	"github.com/Masterminds/squirrel"
)

var Findings = &model.FieldDescriptor{
	Name:                "findings",
	Table:               "findings",
	PrimaryKey:          "id",
	PrimaryDisplayField: "title",
	Fields: []string{
		"id", "title", "description", "severity", "inspection_id",
		"room", "deleted", "modified_at",
	},
	ExtendedFields: []*model.ExtendedField{
		{Name: "x_inspection_title", FromField: "inspection_id", Ref: Inspections},
		{Name: "x_severity_label", Callback: severityLabel},
		{Name: "x_photo_count", Callback: findingPhotoCount},
	},
}

var severityLabels = map[int64]string{
	0: "info",
	1: "minor",
	2: "major",
	3: "critical",
}

func severityLabel(_ context.Context, row model.Record) (any, error) {
	sev, ok := toInt64(row["severity"])
	if !ok {
		return nil, fmt.Errorf("severity is not numeric: %v", row["severity"])
	}
	label, ok := severityLabels[sev]
	if !ok {
		return nil, fmt.Errorf("unknown severity: %d", sev)
	}
	return label, nil
}

// findingPhotoCount — число снимков замечания; дескриптор снимков
// разрешается через реестр, чтобы не образовать цикл инициализации.
func findingPhotoCount(ctx context.Context, row model.Record) (any, error) {
	id, ok := row["id"]
	if !ok || id == nil {
		return nil, fmt.Errorf("finding row has no id")
	}
	photos, ok := model.Registry["photos"]
	if !ok {
		return nil, fmt.Errorf("photos model not registered")
	}
	size, index := 1.0, 0.0
	res, err := model.GetList(ctx, photos,
		squirrel.Eq{"photos.finding_id": id},
		&model.PagingRequest{PageSize: &size, PageIndex: &index},
		true,
	)
	if err != nil {
		return nil, err
	}
	return res.TotalCount, nil
}
