package store

import (
	"context"

	"github.com/icco/yamdb/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) ListReviews(ctx context.Context, titleID uint, page Page) ([]models.Review, int64, error) {
	q := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID)
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count reviews")
	}
	var reviews []models.Review
	if err := page.apply(q().Preload("Author").Order("id")).Find(&reviews).Error; err != nil {
		return nil, 0, translate(err, "list reviews")
	}
	return reviews, total, nil
}

// GetReview loads a review of the given title. A review that exists under a
// different title is reported as not found.
func (s *Store) GetReview(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	var r models.Review
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND title_id = ?", reviewID, titleID).
		First(&r).Error
	if err != nil {
		return nil, translate(err, "get review")
	}
	return &r, nil
}

// HasReview reports whether authorID already reviewed titleID.
func (s *Store) HasReview(ctx context.Context, titleID, authorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "check review")
	}
	return count > 0, nil
}

// CreateReview inserts r. A second review of the same title by the same author
// fails with ErrDuplicate.
func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error, "create review")
}

func (s *Store) UpdateReview(ctx context.Context, r *models.Review) error {
	err := s.db.WithContext(ctx).Model(r).Select("text", "score").Updates(map[string]interface{}{
		"text":  r.Text,
		"score": r.Score,
	}).Error
	return translate(err, "update review")
}

// DeleteReview removes r and its comments.
func (s *Store) DeleteReview(ctx context.Context, r *models.Review) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", r.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Review{}, r.ID).Error
	})
	return translate(err, "delete review")
}

func (s *Store) ListComments(ctx context.Context, reviewID uint, page Page) ([]models.Comment, int64, error) {
	q := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Comment{}).Where("review_id = ?", reviewID)
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count comments")
	}
	var comments []models.Comment
	if err := page.apply(q().Preload("Author").Order("id")).Find(&comments).Error; err != nil {
		return nil, 0, translate(err, "list comments")
	}
	return comments, total, nil
}

func (s *Store) GetComment(ctx context.Context, reviewID, commentID uint) (*models.Comment, error) {
	var c models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND review_id = ?", commentID, reviewID).
		First(&c).Error
	if err != nil {
		return nil, translate(err, "get comment")
	}
	return &c, nil
}

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error, "create comment")
}

func (s *Store) UpdateComment(ctx context.Context, c *models.Comment) error {
	err := s.db.WithContext(ctx).Model(c).Select("text").Updates(map[string]interface{}{"text": c.Text}).Error
	return translate(err, "update comment")
}

func (s *Store) DeleteComment(ctx context.Context, c *models.Comment) error {
	return translate(s.db.WithContext(ctx).Delete(&models.Comment{}, c.ID).Error, "delete comment")
}
