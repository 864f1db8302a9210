package models

import "time"

type Comment struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"                   json:"id"`
	UserID          uint      `gorm:"index;not null"                             json:"user"`
	ContentType     Category  `gorm:"size:50;not null;index:idx_comments_content" json:"content_type"`
	ObjectID        uint      `gorm:"not null;index:idx_comments_content"        json:"object_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index"                       json:"created_at"`
	CommentContents string    `gorm:"size:255;not null"                          json:"comment_contents"`
}
