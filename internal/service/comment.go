package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/Skotchmaster/wine_shop/internal/models"
	"github.com/Skotchmaster/wine_shop/internal/repo"
)

const maxCommentLength = 255

type CommentService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

func validateComment(contents string) (string, error) {
	contents = strings.TrimSpace(contents)
	if contents == "" {
		return "", fieldError("comment_contents", "This field may not be blank.")
	}
	if utf8.RuneCountInString(contents) > maxCommentLength {
		return "", fieldError("comment_contents", "Ensure this field has no more than %d characters.", maxCommentLength)
	}
	return contents, nil
}

func (s *CommentService) CreateForWine(ctx context.Context, actor Actor, wineID uint, contents string) (*models.Comment, error) {
	contents, err := validateComment(contents)
	if err != nil {
		return nil, err
	}
	ok, err := s.Repo.Exists(ctx, &models.Wine{}, wineID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("wine %d: %w", wineID, ErrNotFound)
	}

	c := &models.Comment{
		UserID:          actor.UserID,
		ContentType:     models.CategoryWine,
		ObjectID:        wineID,
		CommentContents: contents,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, TopicCommentEvents, fmt.Sprint(c.ID), Event{
		Type: "comment_created", ID: c.ID, UserID: c.UserID,
		Payload: map[string]any{"content_type": c.ContentType, "object_id": c.ObjectID},
	})
	return c, nil
}

func (s *CommentService) ListForWine(ctx context.Context, wineID uint, offset, limit int) (int64, []models.Comment, error) {
	ok, err := s.Repo.Exists(ctx, &models.Wine{}, wineID)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return 0, nil, fmt.Errorf("wine %d: %w", wineID, ErrNotFound)
	}
	target := models.ItemRef{Category: models.CategoryWine, ID: wineID}
	return s.Repo.ListComments(ctx, repo.CommentFilter{Target: &target}, offset, limit)
}

// ListMine returns the caller's comments; staff see everyone's.
func (s *CommentService) ListMine(ctx context.Context, actor Actor, offset, limit int) (int64, []models.Comment, error) {
	var f repo.CommentFilter
	if !actor.IsStaff {
		f.UserID = &actor.UserID
	}
	return s.Repo.ListComments(ctx, f, offset, limit)
}

func (s *CommentService) Get(ctx context.Context, actor Actor, id uint) (*models.Comment, error) {
	c, err := s.Repo.GetComment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if !actor.IsStaff && c.UserID != actor.UserID {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return c, nil
}

// owned loads a comment the caller may see and rejects edits by anyone but its author.
func (s *CommentService) owned(ctx context.Context, actor Actor, id uint) (*models.Comment, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != actor.UserID {
		return nil, fmt.Errorf("comment %d belongs to another user: %w", id, ErrForbidden)
	}
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, actor Actor, id uint, contents string) (*models.Comment, error) {
	contents, err := validateComment(contents)
	if err != nil {
		return nil, err
	}
	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateComment(ctx, id, contents); err != nil {
		return nil, err
	}
	c.CommentContents = contents
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, actor Actor, id uint) error {
	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteComment(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.Events, TopicCommentEvents, fmt.Sprint(c.ID), Event{
		Type: "comment_deleted", ID: c.ID, UserID: c.UserID,
	})
	return nil
}
