package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-app-agent/internal/database"
	"chat-app-agent/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Dynamo keeps preferences in the AgentPreferences table, one row per key.
type Dynamo struct {
	db         *database.Database
	table      string
	agentEmail string
	now        func() time.Time
}

func NewDynamo(db *database.Database, table, agentEmail string) *Dynamo {
	if table == "" {
		table = model.PreferencesTable
	}
	return &Dynamo{
		db:         db,
		table:      table,
		agentEmail: agentEmail,
		now:        time.Now,
	}
}

func (d *Dynamo) pk(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": database.AttrString(model.PreferencePK(d.agentEmail, key)),
	}
}

func (d *Dynamo) Get(ctx context.Context, key string) (string, error) {
	var item model.PreferenceItem
	if err := d.db.Client.GetItem(ctx, d.table, d.pk(key), &item); err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("storage: dynamo get %s: %w", key, err)
	}
	return item.Value, nil
}

func (d *Dynamo) Set(ctx context.Context, key, value string) error {
	item := model.PreferenceItem{
		PK:        model.PreferencePK(d.agentEmail, key),
		Value:     value,
		UpdatedAt: d.now().UTC().Format(time.RFC3339),
	}
	if err := d.db.Client.PutItem(ctx, d.table, item); err != nil {
		return fmt.Errorf("storage: dynamo put %s: %w", key, err)
	}
	return nil
}

func (d *Dynamo) Delete(ctx context.Context, key string) error {
	if err := d.db.Client.DeleteItem(ctx, d.table, d.pk(key)); err != nil {
		return fmt.Errorf("storage: dynamo delete %s: %w", key, err)
	}
	return nil
}
