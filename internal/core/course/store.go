// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package course

import "context"

type Repository interface {
	ListCourses(ctx context.Context, f Filter, limit, offset int) ([]*Course, int, error)
	GetCourse(ctx context.Context, id string) (*Course, error)
	CreateCourse(ctx context.Context, c *Course) error
}
