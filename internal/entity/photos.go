package entity

import (
	"context"
	"fmt"

	"InspectAPI/internal/model"
)

var Photos = &model.FieldDescriptor{
	Name:                "photos",
	Table:               "photos",
	PrimaryKey:          "id",
	PrimaryDisplayField: "file_name",
	Fields: []string{
		"id", "file_name", "object_key", "caption", "finding_id",
		"annotations", "deleted", "modified_at",
	},
	ExtendedFields: []*model.ExtendedField{
		{Name: "x_finding_title", FromField: "finding_id", Ref: Findings},
		{Name: "x_download_url", Callback: photoDownloadURL},
	},
}

// photoDownloadURL запрашивает временную ссылку на файл снимка. Без
// настроенного хранилища поле остаётся пустым.
func photoDownloadURL(ctx context.Context, row model.Record) (any, error) {
	if signer == nil {
		return nil, fmt.Errorf("storage signer not configured")
	}
	key, ok := toString(row["object_key"])
	if !ok || key == "" {
		return nil, fmt.Errorf("photo row has no object_key")
	}
	url, err := signer.SignedURL(ctx, key)
	if err != nil {
		return nil, err
	}
	return url, nil
}
