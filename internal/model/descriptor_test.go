package model

import (
	"context"
	"strings"
	"testing"
)

func TestRegisterValidDescriptor(t *testing.T) {
	orig := Registry
	Registry = map[string]*FieldDescriptor{}
	defer func() { Registry = orig }()

	d := testModel()
	if err := Register(d); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if Registry["inspections"] != d {
		t.Fatalf("descriptor not in registry")
	}
	if !d.HasField("title") || d.HasField("nope") {
		t.Fatalf("field whitelist broken after Register")
	}
}

func TestRegisterRejectsBadDescriptors(t *testing.T) {
	orig := Registry
	Registry = map[string]*FieldDescriptor{}
	defer func() { Registry = orig }()

	cases := []struct {
		name string
		d    *FieldDescriptor
		frag string
	}{
		{
			"pk outside whitelist",
			&FieldDescriptor{
				Name: "m", Table: "m", PrimaryKey: "id",
				PrimaryDisplayField: "name", Fields: []string{"name"},
			},
			"primary key",
		},
		{
			"bad field identifier",
			&FieldDescriptor{
				Name: "m", Table: "m", PrimaryKey: "id",
				PrimaryDisplayField: "id", Fields: []string{"id", "na me"},
			},
			"invalid field",
		},
		{
			"join field without reference",
			&FieldDescriptor{
				Name: "m", Table: "m", PrimaryKey: "id",
				PrimaryDisplayField: "id", Fields: []string{"id"},
				ExtendedFields: []*ExtendedField{
					{Name: "x_ref", FromField: "id"},
				},
			},
			"reference model",
		},
		{
			"extended field shadows base column",
			&FieldDescriptor{
				Name: "m", Table: "m", PrimaryKey: "id",
				PrimaryDisplayField: "id", Fields: []string{"id"},
				ExtendedFields: []*ExtendedField{
					{Name: "id", Callback: func(context.Context, Record) (any, error) { return nil, nil }},
				},
			},
			"shadows",
		},
	}
	for _, c := range cases {
		err := Register(c.d)
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		if !strings.Contains(err.Error(), c.frag) {
			t.Fatalf("%s: error %q does not mention %q", c.name, err, c.frag)
		}
	}
}

func TestExtendedFieldDefaultsToDisplayField(t *testing.T) {
	ef := &ExtendedField{Name: "x_building_name", FromField: "building_id", Ref: testRefModel()}
	if got := ef.refColumn(); got != "name" {
		t.Fatalf("refColumn default = %q, want primary display field", got)
	}
	ef.RefField = "address"
	if got := ef.refColumn(); got != "address" {
		t.Fatalf("explicit RefField ignored: %q", got)
	}
}
