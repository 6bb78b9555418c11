package handlers

import (
	"time"

	"github.com/icco/yamdb/models"
)

type userResponse struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

// userRequest carries the writable user fields. Absent fields stay nil so
// partial updates leave them untouched.
type userRequest struct {
	Username  *string      `json:"username"`
	Email     *string      `json:"email"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Bio       *string      `json:"bio"`
	Role      *models.Role `json:"role"`
}

// apply copies the request onto u. Role is only copied when withRole is set.
func (req userRequest) apply(u *models.User, withRole bool) {
	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if withRole && req.Role != nil {
		u.Role = *req.Role
	}
}

type slugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type slugRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func categoryResponse(c models.Category) slugResponse {
	return slugResponse{Name: c.Name, Slug: c.Slug}
}

func genreResponse(g models.Genre) slugResponse {
	return slugResponse{Name: g.Name, Slug: g.Slug}
}

type titleReadResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Rating      *float64       `json:"rating"`
	Description string         `json:"description"`
	Genre       []slugResponse `json:"genre"`
	Category    *slugResponse  `json:"category"`
}

func newTitleReadResponse(t *models.Title) titleReadResponse {
	resp := titleReadResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]slugResponse, 0, len(t.Genres)),
	}
	for _, g := range t.Genres {
		resp.Genre = append(resp.Genre, genreResponse(g))
	}
	if t.Category != nil {
		c := categoryResponse(*t.Category)
		resp.Category = &c
	}
	return resp
}

type titleWriteResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

func newTitleWriteResponse(t *models.Title) titleWriteResponse {
	resp := titleWriteResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Genre:       make([]string, 0, len(t.Genres)),
	}
	for _, g := range t.Genres {
		resp.Genre = append(resp.Genre, g.Slug)
	}
	if t.Category != nil {
		resp.Category = &t.Category.Slug
	}
	return resp
}

type titleRequest struct {
	Name        *string  `json:"name"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Genre       []string `json:"genre"`
}

type reviewResponse struct {
	ID      uint      `json:"id"`
	Title   uint      `json:"title"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func newReviewResponse(r *models.Review) reviewResponse {
	resp := reviewResponse{
		ID:      r.ID,
		Title:   r.TitleID,
		Text:    r.Text,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
	if r.Author != nil {
		resp.Author = r.Author.Username
	}
	return resp
}

type reviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type commentResponse struct {
	ID       uint      `json:"id"`
	Author   string    `json:"author"`
	ReviewID uint      `json:"review_id"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}

func newCommentResponse(c *models.Comment) commentResponse {
	resp := commentResponse{
		ID:       c.ID,
		ReviewID: c.ReviewID,
		Text:     c.Text,
		PubDate:  c.PubDate,
	}
	if c.Author != nil {
		resp.Author = c.Author.Username
	}
	return resp
}

type commentRequest struct {
	Text *string `json:"text"`
}
