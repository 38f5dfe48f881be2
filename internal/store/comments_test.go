// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ocms-catalog/internal/model"
)

func TestAppendValidation(t *testing.T) {
	s := testStore(t, Options{})
	ctx := context.Background()

	valid := model.NewComment{ProductID: "p1", Name: "Sara", Rating: 5, Comment: "Great"}

	tests := []struct {
		name      string
		mutate    func(c *model.NewComment)
		wantField string
	}{
		{"missing product", func(c *model.NewComment) { c.ProductID = "" }, "product_id"},
		{"missing name", func(c *model.NewComment) { c.Name = "  " }, "name"},
		{"missing comment", func(c *model.NewComment) { c.Comment = "" }, "comment"},
		{"missing rating", func(c *model.NewComment) { c.Rating = 0 }, "rating"},
		{"rating too high", func(c *model.NewComment) { c.Rating = 6 }, "rating"},
		{"rating negative", func(c *model.NewComment) { c.Rating = -1 }, "rating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			_, err := s.Comments.Append(ctx, in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %T, want *ValidationError", err)
			}
			if _, ok := ve.Fields[tt.wantField]; !ok {
				t.Errorf("fields = %v, want %q", ve.Fields, tt.wantField)
			}
		})
	}
}

func TestAppendDoesNotRequireProduct(t *testing.T) {
	s := testStore(t, Options{})

	c, err := s.Comments.Append(context.Background(),
		model.NewComment{ProductID: "unknown", Name: "Ali", Rating: 3, Comment: "ok"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if c.ID == "" {
		t.Error("comment id should be set")
	}
}

func TestListForNewestFirst(t *testing.T) {
	s := testStore(t, Options{})
	ctx := context.Background()

	fields, translations := swing()
	p, err := s.Products.Create(ctx, fields, translations)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, text := range []string{"first", "second", "third"} {
		_, err := s.Comments.Append(ctx, model.NewComment{ProductID: p.ID, Name: "Reza", Rating: 4, Comment: text})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if _, err := s.Comments.Append(ctx, model.NewComment{ProductID: "other", Name: "x", Rating: 1, Comment: "elsewhere"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.Products.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(got.Comments) != len(want) {
		t.Fatalf("comments = %d, want %d", len(got.Comments), len(want))
	}
	for i, w := range want {
		if got.Comments[i].Comment != w {
			t.Errorf("comments[%d] = %q, want %q", i, got.Comments[i].Comment, w)
		}
	}
}

func TestListForSameTimestampUsesInsertOrder(t *testing.T) {
	clock := newTestClock()
	frozen := clock.Now()
	s := testStore(t, Options{Now: func() time.Time { return frozen }})
	ctx := context.Background()

	for _, text := range []string{"a", "b"} {
		if _, err := s.Comments.Append(ctx, model.NewComment{ProductID: "p", Name: "n", Rating: 2, Comment: text}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	got, err := s.Comments.ListFor(ctx, "p")
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(got) != 2 || got[0].Comment != "b" {
		t.Errorf("got %+v, want b before a", got)
	}
}

func TestCommentDeletePolicy(t *testing.T) {
	tests := []struct {
		policy model.DeletePolicy
		want   int
	}{
		{model.OnDeleteOrphan, 1},
		{model.OnDeleteCascade, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			s := testStore(t, Options{CommentPolicy: tt.policy})
			ctx := context.Background()

			fields, translations := swing()
			p, err := s.Products.Create(ctx, fields, translations)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if _, err := s.Comments.Append(ctx, model.NewComment{ProductID: p.ID, Name: "Mina", Rating: 5, Comment: "Love it"}); err != nil {
				t.Fatalf("Append: %v", err)
			}
			if err := s.Products.Delete(ctx, p.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}

			left, err := s.Comments.ListFor(ctx, p.ID)
			if err != nil {
				t.Fatalf("ListFor: %v", err)
			}
			if len(left) != tt.want {
				t.Errorf("comments after delete = %d, want %d", len(left), tt.want)
			}
		})
	}
}

func TestListForUnknownProduct(t *testing.T) {
	s := testStore(t, Options{})

	got, err := s.Comments.ListFor(context.Background(), "nope")
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListFor() = %v, want empty non-nil slice", got)
	}
}

func TestProductGetSeesCommentsWithProduct(t *testing.T) {
	s := testStore(t, Options{CommentPolicy: model.OnDeleteCascade})
	ctx := context.Background()

	fields, translations := swing()
	p, err := s.Products.Create(ctx, fields, translations)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	const comments = 3
	for i := 0; i < comments; i++ {
		if _, err := s.Comments.Append(ctx, model.NewComment{ProductID: p.ID, Name: "Mina", Rating: 4, Comment: "Nice"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		return s.Products.Delete(ctx, p.ID)
	})
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			got, err := s.Products.Get(ctx, p.ID)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if len(got.Comments) != comments {
				return fmt.Errorf("product read with %d comments, want %d", len(got.Comments), comments)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Products.Get(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
}
