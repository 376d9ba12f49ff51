package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

func Slugify(s string) string {
	return slug.Make(s)
}

type slugChecker func(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)

// uniqueSlug appends -2, -3, ... to the slug of name until taken reports false.
func uniqueSlug(ctx context.Context, name string, exclude uuid.UUID, taken slugChecker) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "item"
	}
	candidate := base
	for i := 2; ; i++ {
		ok, err := taken(ctx, candidate, exclude)
		if err != nil {
			return "", err
		}
		if !ok {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}
