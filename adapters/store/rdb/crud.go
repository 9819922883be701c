package rdb

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// crud implements the common repository operations for a domain type M persisted as record R.
type crud[M any, R any] struct {
	db       *gorm.DB
	idPrefix string
	order    string
	notFound error
	toRecord func(*M) (*R, error)
	toModel  func(*R) (*M, error)
	id       func(*M) *string
}

func (c *crud[M, R]) Create(ctx context.Context, m *M) error {
	id := c.id(m)
	if *id == "" {
		// Generate a unique ID if not provided
		*id = c.idPrefix + "-" + uuid.NewString()
	}
	rec, err := c.toRecord(m)
	if err != nil {
		return err
	}
	return c.db.WithContext(ctx).Create(rec).Error
}

func (c *crud[M, R]) Get(ctx context.Context, id string) (*M, error) {
	var rec R
	if err := c.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.notFound
		}
		return nil, err
	}
	return c.toModel(&rec)
}

func (c *crud[M, R]) List(ctx context.Context) ([]*M, error) {
	var recs []R
	if err := c.db.WithContext(ctx).Order(c.order).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*M, 0, len(recs))
	for i := range recs {
		m, err := c.toModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Update writes every column except created_at, including zero values.
func (c *crud[M, R]) Update(ctx context.Context, m *M) error {
	rec, err := c.toRecord(m)
	if err != nil {
		return err
	}
	var zero R
	res := c.db.WithContext(ctx).Model(&zero).Where("id = ?", *c.id(m)).Select("*").Omit("id", "created_at").Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.notFound
	}
	return nil
}

func (c *crud[M, R]) Delete(ctx context.Context, id string) error {
	var zero R
	res := c.db.WithContext(ctx).Delete(&zero, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return c.notFound
	}
	return nil
}

// encodeJSON encodes v into a text column; nil values become the empty string.
func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "", nil
	}
	return string(b), nil
}

// decodeJSON decodes a text column into v; the empty string leaves v untouched.
func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}
