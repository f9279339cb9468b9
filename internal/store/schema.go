package store

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const usageTableName = "llm_usage"

var (
	usageColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "call_id", Type: field.TypeString},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "prompt_tokens", Type: field.TypeInt, Default: 0},
		{Name: "completion_tokens", Type: field.TypeInt, Default: 0},
		{Name: "total_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		// Unix milliseconds.
		{Name: "created_at", Type: field.TypeInt64},
	}
	usageTable = &schema.Table{
		Name:       usageTableName,
		Columns:    usageColumns,
		PrimaryKey: []*schema.Column{usageColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmusage_created_at",
				Unique:  false,
				Columns: []*schema.Column{usageColumns[8]},
			},
			{
				Name:    "llmusage_provider_model",
				Unique:  false,
				Columns: []*schema.Column{usageColumns[2], usageColumns[3]},
			},
		},
	}
	tables = []*schema.Table{usageTable}
)

// migrate creates missing tables, columns and indexes. It only appends.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
