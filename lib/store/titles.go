package store

import (
	"context"
	"strings"

	"github.com/icco/yamdb/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const titleWithRating = "titles.*, (SELECT AVG(reviews.score) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// TitleFilter narrows title lists. Zero fields do not filter.
type TitleFilter struct {
	Name     string
	Year     *int
	Genre    string
	Category string
}

func (f TitleFilter) scope(q *gorm.DB) *gorm.DB {
	if f.Name != "" {
		q = q.Where("LOWER(titles.name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	if f.Category != "" {
		q = q.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	if f.Genre != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM title_genres
			JOIN genres ON genres.id = title_genres.genre_id
			WHERE title_genres.title_id = titles.id AND genres.slug = ?)`, f.Genre)
	}
	return q
}

func (s *Store) ListTitles(ctx context.Context, f TitleFilter, page Page) ([]models.Title, int64, error) {
	q := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Title{}).Scopes(f.scope)
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count titles")
	}

	var titles []models.Title
	err := page.apply(q().Select(titleWithRating).Preload("Category").Preload("Genres").Order("titles.id")).
		Find(&titles).Error
	if err != nil {
		return nil, 0, translate(err, "list titles")
	}
	return titles, total, nil
}

// GetTitle loads a title with its category, genres and rating.
func (s *Store) GetTitle(ctx context.Context, id uint) (*models.Title, error) {
	var t models.Title
	err := s.db.WithContext(ctx).
		Select(titleWithRating).
		Preload("Category").
		Preload("Genres").
		Where("titles.id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, translate(err, "get title")
	}
	return &t, nil
}

func (s *Store) TitleExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(err, "check title")
	}
	return count > 0, nil
}

// CreateTitle inserts t and links it to genres.
func (s *Store) CreateTitle(ctx context.Context, t *models.Title, genres []models.Genre) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}
		return replaceGenres(tx, t, genres)
	})
	return translate(err, "create title")
}

// UpdateTitle saves t. When genres is non-nil the title's genres are replaced.
func (s *Store) UpdateTitle(ctx context.Context, t *models.Title, genres []models.Genre) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(t).Select("name", "year", "description", "category_id").Updates(map[string]interface{}{
			"name":        t.Name,
			"year":        t.Year,
			"description": t.Description,
			"category_id": t.CategoryID,
		}).Error
		if err != nil {
			return err
		}
		if genres == nil {
			return nil
		}
		return replaceGenres(tx, t, genres)
	})
	return translate(err, "update title")
}

func replaceGenres(tx *gorm.DB, t *models.Title, genres []models.Genre) error {
	if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", t.ID).Error; err != nil {
		return err
	}
	for _, g := range genres {
		if err := tx.Exec("INSERT INTO title_genres (title_id, genre_id) VALUES (?, ?)", t.ID, g.ID).Error; err != nil {
			return err
		}
	}
	t.Genres = genres
	return nil
}

// DeleteTitle removes the title with its reviews and their comments.
func (s *Store) DeleteTitle(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviewIDs := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviewIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Title{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "delete title")
}
