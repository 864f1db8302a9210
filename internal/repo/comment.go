package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/wine_shop/internal/models"
)

type CommentFilter struct {
	UserID *uint
	Target *models.ItemRef
}

func (r *GormRepo) ListComments(ctx context.Context, f CommentFilter, offset, limit int) (int64, []models.Comment, error) {
	q := r.DB.WithContext(ctx).Model(&models.Comment{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Target != nil {
		q = q.Where("content_type = ? AND object_id = ?", f.Target.Category, f.Target.ID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	comments := make([]models.Comment, 0)
	if err := paginate(q.Order("created_at DESC").Order("id DESC"), offset, limit).Find(&comments).Error; err != nil {
		return 0, nil, err
	}
	return total, comments, nil
}

func (r *GormRepo) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return get[models.Comment](ctx, r.DB, id)
}

func (r *GormRepo) UpdateComment(ctx context.Context, id uint, contents string) error {
	return r.DB.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("comment_contents", contents).Error
}

func (r *GormRepo) DeleteComment(ctx context.Context, id uint) error {
	return remove[models.Comment](ctx, r.DB, id)
}
