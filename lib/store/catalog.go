package store

import (
	"context"
	"fmt"

	"github.com/icco/yamdb/models"
	"gorm.io/gorm"
)

// Slugged is a catalog entity addressed by slug.
type Slugged interface {
	models.Category | models.Genre
}

// ListSlugged lists categories or genres ordered by name. A non-empty name
// must match exactly.
func ListSlugged[T Slugged](ctx context.Context, s *Store, name string, page Page) ([]T, int64, error) {
	q := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(new(T))
		if name != "" {
			q = q.Where("name = ?", name)
		}
		return q
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, translate(err, fmt.Sprintf("count %T", *new(T)))
	}
	var items []T
	if err := page.apply(q().Order("name").Order("id")).Find(&items).Error; err != nil {
		return nil, 0, translate(err, fmt.Sprintf("list %T", *new(T)))
	}
	return items, total, nil
}

func GetSlugged[T Slugged](ctx context.Context, s *Store, slug string) (*T, error) {
	var item T
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&item).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("get %T", item))
	}
	return &item, nil
}

func CreateSlugged[T Slugged](ctx context.Context, s *Store, item *T) error {
	return translate(s.db.WithContext(ctx).Create(item).Error, fmt.Sprintf("create %T", *item))
}

// SlugTaken reports whether a category or genre already uses slug.
func SlugTaken[T Slugged](ctx context.Context, s *Store, slug string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(new(T)).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, translate(err, "check slug")
	}
	return count > 0, nil
}

// DeleteCategory removes the category; titles referencing it keep existing
// with no category.
func (s *Store) DeleteCategory(ctx context.Context, slug string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.Where("slug = ?", slug).First(&c).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Title{}).Where("category_id = ?", c.ID).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
	return translate(err, "delete category")
}

// DeleteGenre removes the genre and detaches it from every title.
func (s *Store) DeleteGenre(ctx context.Context, slug string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g models.Genre
		if err := tx.Where("slug = ?", slug).First(&g).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE genre_id = ?", g.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&g).Error
	})
	return translate(err, "delete genre")
}

// GenresBySlugs loads the genres named by slugs, in the order given. The
// second return value lists the slugs that do not exist.
func (s *Store) GenresBySlugs(ctx context.Context, slugs []string) ([]models.Genre, []string, error) {
	var found []models.Genre
	if err := s.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&found).Error; err != nil {
		return nil, nil, translate(err, "get genres")
	}
	bySlug := make(map[string]models.Genre, len(found))
	for _, g := range found {
		bySlug[g.Slug] = g
	}

	var (
		genres  []models.Genre
		missing []string
		seen    = map[string]bool{}
	)
	for _, slug := range slugs {
		if seen[slug] {
			continue
		}
		seen[slug] = true
		g, ok := bySlug[slug]
		if !ok {
			missing = append(missing, slug)
			continue
		}
		genres = append(genres, g)
	}
	return genres, missing, nil
}
