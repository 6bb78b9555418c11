package store

import (
	"context"
	"testing"

	"github.com/icco/yamdb/lib/db/dbtest"
	"github.com/icco/yamdb/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *Store
	author   *models.User
	other    *models.User
	category *models.Category
	drama    *models.Genre
	comedy   *models.Genre
	title    *models.Title
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := New(dbtest.Open(t))

	f := &fixture{store: s}
	f.author = &models.User{Username: "author", Email: "author@example.com"}
	f.other = &models.User{Username: "other", Email: "other@example.com"}
	require.NoError(t, s.CreateUser(ctx, f.author))
	require.NoError(t, s.CreateUser(ctx, f.other))

	f.category = &models.Category{Name: "Films", Slug: "films"}
	require.NoError(t, CreateSlugged(ctx, s, f.category))
	f.drama = &models.Genre{Name: "Drama", Slug: "drama"}
	f.comedy = &models.Genre{Name: "Comedy", Slug: "comedy"}
	require.NoError(t, CreateSlugged(ctx, s, f.drama))
	require.NoError(t, CreateSlugged(ctx, s, f.comedy))

	f.title = &models.Title{Name: "Solaris", Year: 1972, CategoryID: &f.category.ID}
	require.NoError(t, s.CreateTitle(ctx, f.title, []models.Genre{*f.drama}))
	return f
}

func TestCreateUserDefaultsRole(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, models.RoleUser, f.author.Role)

	err := f.store.CreateUser(context.Background(), &models.User{Username: "author", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestTitleRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.store.GetTitle(ctx, f.title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rating)
	require.NotNil(t, got.Category)
	assert.Equal(t, "films", got.Category.Slug)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, "drama", got.Genres[0].Slug)

	require.NoError(t, f.store.CreateReview(ctx, &models.Review{TitleID: f.title.ID, AuthorID: f.author.ID, Text: "good", Score: 8}))
	require.NoError(t, f.store.CreateReview(ctx, &models.Review{TitleID: f.title.ID, AuthorID: f.other.ID, Text: "fine", Score: 6}))

	got, err = f.store.GetTitle(ctx, f.title.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 7.0, *got.Rating, 0.0001)

	titles, total, err := f.store.ListTitles(ctx, TitleFilter{}, Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, titles, 1)
	require.NotNil(t, titles[0].Rating)
	assert.InDelta(t, 7.0, *titles[0].Rating, 0.0001)
}

func TestDuplicateReviewRejectedByIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.CreateReview(ctx, &models.Review{TitleID: f.title.ID, AuthorID: f.author.ID, Text: "one", Score: 5}))
	has, err := f.store.HasReview(ctx, f.title.ID, f.author.ID)
	require.NoError(t, err)
	assert.True(t, has)

	err = f.store.CreateReview(ctx, &models.Review{TitleID: f.title.ID, AuthorID: f.author.ID, Text: "two", Score: 6})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGetReviewScopedToTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &models.Title{Name: "Stalker", Year: 1979}
	require.NoError(t, f.store.CreateTitle(ctx, other, nil))
	r := &models.Review{TitleID: f.title.ID, AuthorID: f.author.ID, Text: "one", Score: 5}
	require.NoError(t, f.store.CreateReview(ctx, r))

	got, err := f.store.GetReview(ctx, f.title.ID, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "author", got.Author.Username)

	_, err = f.store.GetReview(ctx, other.ID, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCategoryKeepsTitles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.DeleteCategory(ctx, "films"))

	got, err := f.store.GetTitle(ctx, f.title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)

	assert.ErrorIs(t, f.store.DeleteCategory(ctx, "films"), ErrNotFound)
}

func TestDeleteGenreDetachesTitles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.DeleteGenre(ctx, "drama"))

	got, err := f.store.GetTitle(ctx, f.title.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Genres)
}

func TestDeleteTitleCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := &models.Review{TitleID: f.title.ID, AuthorID: f.author.ID, Text: "one", Score: 5}
	require.NoError(t, f.store.CreateReview(ctx, r))
	c := &models.Comment{ReviewID: r.ID, AuthorID: f.other.ID, Text: "agree"}
	require.NoError(t, f.store.CreateComment(ctx, c))

	require.NoError(t, f.store.DeleteTitle(ctx, f.title.ID))

	_, err := f.store.GetReview(ctx, f.title.ID, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.store.GetComment(ctx, r.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.store.DeleteTitle(ctx, f.title.ID), ErrNotFound)

	genre, err := GetSlugged[models.Genre](ctx, f.store, "drama")
	require.NoError(t, err)
	assert.Equal(t, "Drama", genre.Name)
}

func TestDeleteUserCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := &models.Review{TitleID: f.title.ID, AuthorID: f.author.ID, Text: "one", Score: 5}
	require.NoError(t, f.store.CreateReview(ctx, r))
	c := &models.Comment{ReviewID: r.ID, AuthorID: f.other.ID, Text: "agree"}
	require.NoError(t, f.store.CreateComment(ctx, c))

	require.NoError(t, f.store.DeleteUser(ctx, f.author))

	_, err := f.store.GetReview(ctx, f.title.ID, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.store.GetComment(ctx, r.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.store.GetUser(ctx, f.other.ID)
	assert.NoError(t, err)
}

func TestListTitlesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	comedy := &models.Title{Name: "Some Like It Hot", Year: 1959}
	require.NoError(t, f.store.CreateTitle(ctx, comedy, []models.Genre{*f.comedy, *f.drama}))

	year := 1959
	tests := []struct {
		name   string
		filter TitleFilter
		want   []string
	}{
		{"no filter", TitleFilter{}, []string{"Solaris", "Some Like It Hot"}},
		{"name contains", TitleFilter{Name: "LIKE"}, []string{"Some Like It Hot"}},
		{"year", TitleFilter{Year: &year}, []string{"Some Like It Hot"}},
		{"genre", TitleFilter{Genre: "drama"}, []string{"Solaris", "Some Like It Hot"}},
		{"genre comedy", TitleFilter{Genre: "comedy"}, []string{"Some Like It Hot"}},
		{"category", TitleFilter{Category: "films"}, []string{"Solaris"}},
		{"unknown category", TitleFilter{Category: "books"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			titles, total, err := f.store.ListTitles(ctx, tt.filter, Page{Number: 1, Size: 10})
			require.NoError(t, err)
			var names []string
			for _, title := range titles {
				names = append(names, title.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.EqualValues(t, len(tt.want), total)
		})
	}
}

func TestUpdateTitleReplacesGenres(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.title.Name = "Solaris (1972)"
	f.title.CategoryID = nil
	require.NoError(t, f.store.UpdateTitle(ctx, f.title, []models.Genre{*f.comedy}))

	got, err := f.store.GetTitle(ctx, f.title.ID)
	require.NoError(t, err)
	assert.Equal(t, "Solaris (1972)", got.Name)
	assert.Nil(t, got.CategoryID)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, "comedy", got.Genres[0].Slug)

	// nil genres leaves associations alone
	require.NoError(t, f.store.UpdateTitle(ctx, got, nil))
	got, err = f.store.GetTitle(ctx, f.title.ID)
	require.NoError(t, err)
	assert.Len(t, got.Genres, 1)
}

func TestGenresBySlugs(t *testing.T) {
	f := newFixture(t)

	genres, missing, err := f.store.GenresBySlugs(context.Background(), []string{"comedy", "western", "drama", "comedy"})
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "comedy", genres[0].Slug)
	assert.Equal(t, "drama", genres[1].Slug)
	assert.Equal(t, []string{"western"}, missing)
}

func TestListSluggedSearchIsExact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	genres, total, err := ListSlugged[models.Genre](ctx, f.store, "Drama", Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, genres, 1)

	genres, _, err = ListSlugged[models.Genre](ctx, f.store, "Dram", Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, genres)

	taken, err := SlugTaken[models.Category](ctx, f.store, "films")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestRegisterUserRotatesCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.store.RegisterUser(ctx, "new@example.com", "code1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", first.Username)

	second, err := f.store.RegisterUser(ctx, "new@example.com", "code2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = f.store.UserByConfirmation(ctx, "new@example.com", "code1")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := f.store.UserByConfirmation(ctx, "new@example.com", "code2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = f.store.UserByConfirmation(ctx, "author", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsersSearchAndPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users, total, err := f.store.ListUsers(ctx, "", Page{Number: 2, Size: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 1)
	assert.Equal(t, "other", users[0].Username)

	users, total, err = f.store.ListUsers(ctx, "AUTH", Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)

	taken, err := f.store.EmailTaken(ctx, "author@example.com", f.author.ID)
	require.NoError(t, err)
	assert.False(t, taken)
	taken, err = f.store.EmailTaken(ctx, "author@example.com", f.other.ID)
	require.NoError(t, err)
	assert.True(t, taken)
}
