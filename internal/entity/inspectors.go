package entity

import "InspectAPI/internal/model"

var Inspectors = &model.FieldDescriptor{
	Name:                "inspectors",
	Table:               "inspectors",
	PrimaryKey:          "id",
	PrimaryDisplayField: "full_name",
	Fields: []string{
		"id", "full_name", "email", "license_no",
		"deleted", "modified_at",
	},
}
