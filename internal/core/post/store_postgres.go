// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/publication"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/database/schema"
	"github.com/taibuivan/yomira-cms/internal/platform/dberr"
	"github.com/taibuivan/yomira-cms/internal/platform/postgres"
)

var selectColumns = strings.Join(schema.CorePost.Columns(), ", ")

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed post store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Reads

/*
List returns a filtered page of posts. Sticky posts come first, then the most
recently published.
*/
func (repository *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*Post, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1
	t := schema.CorePost

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE TRUE`, selectColumns, t.Table))

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (%s ILIKE $%d OR %s ILIKE $%d OR %s ILIKE $%d)",
			t.Title, argID, t.Content, argID, t.Excerpt, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	if filter.Status != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", t.Status, argID))
		args = append(args, *filter.Status)
		argID++
	}

	if filter.LiveAt != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d AND %s <= $%d", t.Status, argID, t.PublishedAt, argID+1))
		args = append(args, publication.StatusPublished, *filter.LiveAt)
		argID += 2
	}

	if filter.CategoryIDs != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = ANY($%d::uuid[])", t.CategoryID, argID))
		args = append(args, filter.CategoryIDs)
		argID++
	}

	if filter.TagID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND EXISTS (SELECT 1 FROM %s pt WHERE pt.%s = %s.%s AND pt.%s = $%d)",
			schema.CorePostTag.Table, schema.CorePostTag.PostID, t.Table, t.ID, schema.CorePostTag.TagID, argID))
		args = append(args, *filter.TagID)
		argID++
	}

	if filter.AuthorID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", t.AuthorID, argID))
		args = append(args, *filter.AuthorID)
		argID++
	}

	if filter.Featured != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", t.IsFeatured, argID))
		args = append(args, *filter.Featured)
		argID++
	}

	if filter.Sticky != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", t.IsSticky, argID))
		args = append(args, *filter.Sticky)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC, %s DESC NULLS LAST, %s DESC LIMIT $%d OFFSET $%d",
		t.IsSticky, t.PublishedAt, t.CreatedAt, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_posts")
	}
	defer rows.Close()

	posts := make([]*Post, 0)
	total := 0
	for rows.Next() {
		post, err := scanPost(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_post")
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_posts")
	}

	if err := repository.attachTags(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// FindByID returns a single post.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Post, error) {
	return repository.findOne(ctx, "find_post", schema.CorePost.ID, id)
}

// FindBySlug returns the post owning slug.
func (repository *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*Post, error) {
	return repository.findOne(ctx, "find_post_by_slug", schema.CorePost.Slug, slug)
}

// Related returns live posts sharing the category or a tag with post.
func (repository *PostgresRepository) Related(ctx context.Context, post *Post, now time.Time, limit int) ([]*Post, error) {
	t := schema.CorePost
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s <> $1 AND %s = $2 AND %s <= $3
		  AND (%s = $4 OR EXISTS (
			SELECT 1 FROM %s pt WHERE pt.%s = %s.%s AND pt.%s = ANY($5::uuid[])
		  ))
		ORDER BY %s DESC
		LIMIT $6`,
		selectColumns, t.Table,
		t.ID, t.Status, t.PublishedAt,
		t.CategoryID,
		schema.CorePostTag.Table, schema.CorePostTag.PostID, t.Table, t.ID, schema.CorePostTag.TagID,
		t.PublishedAt,
	)

	rows, err := repository.pool.Query(ctx, query,
		post.ID, publication.StatusPublished, now, post.CategoryID, post.TagIDs(), limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_related_posts")
	}
	defer rows.Close()

	posts := make([]*Post, 0)
	for rows.Next() {
		related, err := scanPost(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_post")
		}
		posts = append(posts, related)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_related_posts")
	}
	return posts, repository.attachTags(ctx, posts)
}

// SlugExists checks slug ownership, ignoring excludeID.
func (repository *PostgresRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s::text <> $2)`,
		schema.CorePost.Table, schema.CorePost.Slug, schema.CorePost.ID)

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check_post_slug")
	}
	return exists, nil
}

// ListDue returns scheduled posts whose publish time has passed.
func (repository *PostgresRepository) ListDue(ctx context.Context, now time.Time) ([]*Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s <= $2 ORDER BY %s`,
		selectColumns, schema.CorePost.Table, schema.CorePost.Status, schema.CorePost.PublishedAt,
		schema.CorePost.PublishedAt)

	rows, err := repository.pool.Query(ctx, query, publication.StatusScheduled, now)
	if err != nil {
		return nil, dberr.Wrap(err, "list_due_posts")
	}
	defer rows.Close()

	posts := make([]*Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_post")
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_due_posts")
	}
	return posts, repository.attachTags(ctx, posts)
}

// # Writes

// Create inserts a post. Tags are linked separately through SetTags.
func (repository *PostgresRepository) Create(ctx context.Context, post *Post) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		schema.CorePost.Table, selectColumns)

	_, err := repository.pool.Exec(ctx, query,
		post.ID, post.Title, post.Slug, post.SlugCustom, post.Excerpt, post.Content, post.FeaturedImage,
		post.Status, post.PublishAt, post.AuthorID, post.CategoryID, post.ViewCount, post.LikeCount,
		post.CommentCount, post.IsFeatured, post.AllowComments, post.IsSticky, post.CreatedAt, post.UpdatedAt,
	)
	return dberr.Wrap(err, "create_post")
}

// Update writes every editable column. Counters are left alone and the
// publication state only moves through SwapState.
func (repository *PostgresRepository) Update(ctx context.Context, post *Post) error {
	t := schema.CorePost
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7,
			%s = $8, %s = $9, %s = $10, %s = $11, %s = $12
		WHERE %s = $1`,
		t.Table,
		t.Title, t.Slug, t.SlugCustom, t.Excerpt, t.Content, t.FeaturedImage,
		t.CategoryID, t.IsFeatured, t.AllowComments, t.IsSticky, t.UpdatedAt,
		t.ID,
	)

	tag, err := repository.pool.Exec(ctx, query,
		post.ID, post.Title, post.Slug, post.SlugCustom, post.Excerpt, post.Content, post.FeaturedImage,
		post.CategoryID, post.IsFeatured, post.AllowComments, post.IsSticky, post.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_post")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Post")
	}
	return nil
}

// Delete removes a post with its tag links and comments.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	links := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CorePostTag.Table, schema.CorePostTag.PostID)

	comments := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.SocialComment.Table, schema.SocialComment.OwnerType, schema.SocialComment.OwnerID)

	post := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CorePost.Table, schema.CorePost.ID)

	return postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, links, id); err != nil {
			return dberr.Wrap(err, "delete_post_tags")
		}
		if _, err := tx.Exec(ctx, comments, owner.TypePost, id); err != nil {
			return dberr.Wrap(err, "delete_post_comments")
		}

		tag, err := tx.Exec(ctx, post, id)
		if err != nil {
			return dberr.Wrap(err, "delete_post")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Post")
		}
		return nil
	})
}

// IncrementViews bumps the view counter.
func (repository *PostgresRepository) IncrementViews(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1`,
		schema.CorePost.Table, schema.CorePost.ViewCount, schema.CorePost.ViewCount, schema.CorePost.ID)

	_, err := repository.pool.Exec(ctx, query, id)
	return dberr.Wrap(err, "increment_post_views")
}

// SetTags replaces the tag links of a post in one transaction.
func (repository *PostgresRepository) SetTags(ctx context.Context, postID string, tagIDs []string, now time.Time) error {
	pt := schema.CorePostTag

	prune := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND NOT (%s = ANY($2::uuid[]))`, pt.Table, pt.PostID, pt.TagID)

	link := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		SELECT $1, tag_id, $3 FROM unnest($2::uuid[]) AS tag_id
		ON CONFLICT DO NOTHING`,
		pt.Table, pt.PostID, pt.TagID, pt.CreatedAt)

	if tagIDs == nil {
		tagIDs = []string{}
	}

	return postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, prune, postID, tagIDs); err != nil {
			return dberr.Wrap(err, "unlink_post_tags")
		}
		if _, err := tx.Exec(ctx, link, postID, tagIDs, now); err != nil {
			return dberr.Wrap(err, "link_post_tags")
		}
		return nil
	})
}

// SwapState is a compare-and-set on the status and publish time columns.
func (repository *PostgresRepository) SwapState(ctx context.Context, id string, expected, next publication.State, now time.Time) (bool, error) {
	t := schema.CorePost
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $4, %s = $5, %s = $6
		WHERE %s = $1 AND %s = $2 AND %s IS NOT DISTINCT FROM $3::timestamptz`,
		t.Table, t.Status, t.PublishedAt, t.UpdatedAt,
		t.ID, t.Status, t.PublishedAt)

	tag, err := repository.pool.Exec(ctx, query, id, expected.Status, expected.PublishAt, next.Status, next.PublishAt, now)
	if err != nil {
		return false, dberr.Wrap(err, "swap_post_state")
	}
	return tag.RowsAffected() == 1, nil
}

// # Internal Helpers

func (repository *PostgresRepository) findOne(ctx context.Context, action, column string, value any) (*Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, schema.CorePost.Table, column)

	post, err := scanPost(repository.pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Post")
		}
		return nil, dberr.Wrap(err, action)
	}

	if err := repository.attachTags(ctx, []*Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// attachTags loads the tags of every post in one query.
func (repository *PostgresRepository) attachTags(ctx context.Context, posts []*Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[string]*Post, len(posts))
	ids := make([]string, len(posts))
	for i, post := range posts {
		post.Tags = make([]TagRef, 0)
		byID[post.ID] = post
		ids[i] = post.ID
	}

	query := fmt.Sprintf(`
		SELECT pt.%s, t.%s, t.%s, t.%s
		FROM %s pt JOIN %s t ON t.%s = pt.%s
		WHERE pt.%s = ANY($1::uuid[])
		ORDER BY t.%s`,
		schema.CorePostTag.PostID, schema.CoreTag.ID, schema.CoreTag.Name, schema.CoreTag.Slug,
		schema.CorePostTag.Table, schema.CoreTag.Table, schema.CoreTag.ID, schema.CorePostTag.TagID,
		schema.CorePostTag.PostID,
		schema.CoreTag.Name,
	)

	rows, err := repository.pool.Query(ctx, query, ids)
	if err != nil {
		return dberr.Wrap(err, "list_post_tags")
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		var ref TagRef
		if err := rows.Scan(&postID, &ref.ID, &ref.Name, &ref.Slug); err != nil {
			return dberr.Wrap(err, "scan_post_tag")
		}
		if post, ok := byID[postID]; ok {
			post.Tags = append(post.Tags, ref)
		}
	}
	return dberr.Wrap(rows.Err(), "list_post_tags")
}

func scanPost(row pgx.Row, extra ...any) (*Post, error) {
	post := &Post{}
	var status string
	dest := []any{
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.SlugCustom,
		&post.Excerpt,
		&post.Content,
		&post.FeaturedImage,
		&status,
		&post.PublishAt,
		&post.AuthorID,
		&post.CategoryID,
		&post.ViewCount,
		&post.LikeCount,
		&post.CommentCount,
		&post.IsFeatured,
		&post.AllowComments,
		&post.IsSticky,
		&post.CreatedAt,
		&post.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	post.Status = publication.Status(status)
	return post, nil
}
