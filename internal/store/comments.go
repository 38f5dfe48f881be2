// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// CommentStore is the append-only ledger of product comments.
//
// Comments reference products by id only. Appending does not check that the
// product exists, and deleting a product leaves its comments in place unless
// the cascade policy is configured.
type CommentStore struct {
	db     *sql.DB
	schema *Schema
	now    func() time.Time
}

func newCommentStore(base entityBase) *CommentStore {
	return &CommentStore{db: base.db, schema: base.schema, now: base.now}
}

// Append validates and stores a comment.
func (s *CommentStore) Append(ctx context.Context, in model.NewComment) (*model.Comment, error) {
	const op = "comments.append"

	in.ProductID = strings.TrimSpace(in.ProductID)
	in.Name = strings.TrimSpace(in.Name)
	in.Comment = strings.TrimSpace(in.Comment)

	if err := validation.ValidateStruct(&in,
		validation.Field(&in.ProductID, validation.Required),
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&in.Rating, validation.Required, validation.Min(model.MinRating), validation.Max(model.MaxRating)),
		validation.Field(&in.Comment, validation.Required, validation.RuneLength(1, 5000)),
	); err != nil {
		fields := make(map[string]string)
		if err := mergeValidation(fields, "", err); err != nil {
			return nil, classify(op, err)
		}
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.schema.Ensure(ctx); err != nil {
		return nil, err
	}

	c := &model.Comment{
		ID:        uuid.NewString(),
		ProductID: in.ProductID,
		Name:      in.Name,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO product_comments (id, product_id, name, rating, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.ProductID, c.Name, c.Rating, c.Comment, c.CreatedAt.UnixMilli())
	if err != nil {
		return nil, classify(op, err)
	}
	return c, nil
}

// ListFor returns the comments of a product, newest first. An unknown
// product yields an empty list.
func (s *CommentStore) ListFor(ctx context.Context, productID string) ([]model.Comment, error) {
	const op = "comments.list"
	if err := s.schema.Ensure(ctx); err != nil {
		return nil, err
	}

	comments, err := s.listFor(ctx, s.db, productID)
	return comments, classify(op, err)
}

func (s *CommentStore) listFor(ctx context.Context, q queryer, productID string) ([]model.Comment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, product_id, name, rating, comment, created_at
		 FROM product_comments
		 WHERE product_id = ?
		 ORDER BY created_at DESC, rowid DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	comments := []model.Comment{}
	for rows.Next() {
		var (
			c       model.Comment
			created int64
		)
		if err := rows.Scan(&c.ID, &c.ProductID, &c.Name, &c.Rating, &c.Comment, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = fromMillis(created)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

// deleteForProduct removes a product's comments inside the product delete
// transaction. Used by the cascade policy.
func (s *CommentStore) deleteForProduct(ctx context.Context, tx *sql.Tx, productID string) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM product_comments WHERE product_id = ?", productID)
	return err
}
