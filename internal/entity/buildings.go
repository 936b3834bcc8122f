package entity

import "InspectAPI/internal/model"

var Buildings = &model.FieldDescriptor{
	Name:                "buildings",
	Table:               "buildings",
	PrimaryKey:          "id",
	PrimaryDisplayField: "name",
	Fields: []string{
		"id", "name", "address", "city", "postal_code",
		"year_built", "deleted", "modified_at",
	},
}
