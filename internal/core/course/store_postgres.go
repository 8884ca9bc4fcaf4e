// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dothanhvu/lurnia/internal/platform/apperr"
	"github.com/dothanhvu/lurnia/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const courseColumns = `id, name, slug, description, price, estimatedprice, tags, level, demourl,
	thumbnailid, thumbnailurl, benefits, prerequisites, rating, purchased, createdby, createdat, updatedat`

func (repository *PostgresRepository) ListCourses(ctx context.Context, f Filter, limit, offset int) ([]*Course, int, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM core.course
		WHERE deletedat IS NULL`
	countQuery := `SELECT count(*) FROM core.course WHERE deletedat IS NULL`

	args := []any{}
	countArgs := []any{}

	if f.Query != "" {
		searchTerm := "%" + f.Query + "%"
		clause := fmt.Sprintf(` AND (name ILIKE $%d OR array_to_string(tags, ' ') ILIKE $%d)`, len(args)+1, len(args)+1)
		query += clause
		countQuery += clause
		args = append(args, searchTerm)
		countArgs = append(countArgs, searchTerm)
	}

	if f.Level != "" {
		clause := fmt.Sprintf(` AND level = $%d`, len(args)+1)
		query += clause
		countQuery += clause
		args = append(args, f.Level)
		countArgs = append(countArgs, f.Level)
	}

	query += fmt.Sprintf(` ORDER BY createdat DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := repository.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_courses")
	}

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_courses")
	}
	defer rows.Close()

	var courses []*Course
	for rows.Next() {
		c := &Course{}
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.Price, &c.EstimatedPrice, &c.Tags, &c.Level,
			&c.DemoURL, &c.ThumbnailID, &c.ThumbnailURL, &c.Benefits, &c.Prerequisites,
			&c.Rating, &c.Purchased, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_course")
		}
		courses = append(courses, c)
	}

	return courses, total, nil
}

func (repository *PostgresRepository) GetCourse(ctx context.Context, id string) (*Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM core.course
		WHERE id = $1 AND deletedat IS NULL`

	c := &Course{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.Price, &c.EstimatedPrice, &c.Tags, &c.Level,
		&c.DemoURL, &c.ThumbnailID, &c.ThumbnailURL, &c.Benefits, &c.Prerequisites,
		&c.Rating, &c.Purchased, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Course")
		}
		return nil, dberr.Wrap(err, "get_course")
	}

	return c, nil
}

func (repository *PostgresRepository) CreateCourse(ctx context.Context, c *Course) error {
	query := `
		INSERT INTO core.course (
			id, name, slug, description, price, estimatedprice, tags, level, demourl,
			thumbnailid, thumbnailurl, benefits, prerequisites, rating, purchased, createdby, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := repository.db.Exec(ctx, query,
		c.ID, c.Name, c.Slug, c.Description, c.Price, c.EstimatedPrice, c.Tags, c.Level,
		c.DemoURL, c.ThumbnailID, c.ThumbnailURL, c.Benefits, c.Prerequisites,
		c.Rating, c.Purchased, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	return dberr.Wrap(err, "create_course")
}
