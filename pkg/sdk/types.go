package askrank

import (
	"time"

	"github.com/campusfeed/askrank/internal/domain/post"
	"github.com/campusfeed/askrank/internal/domain/rank/result"
)

// Why explains one ranked hit.
type Why struct {
	Semantic float64
	Lexical  float64
	Overlap  []string
}

// Result is a single ranked hit.
type Result struct {
	ID         string
	Title      string
	Subtitle   string
	ImageURL   string
	LikedCount int
	Href       string
	Score      float64
	Why        Why
}

// Post is a full feed post, for the detail view.
type Post struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	Location    string
	Category    string
	ImageURL    string
	LikedCount  int
	EventDate   time.Time
	HasDate     bool
	AuthorName  string
	OrgName     string
}

func resultFromDomain(r *result.Result) Result {
	why := r.Why()
	return Result{
		ID:         r.ID(),
		Title:      r.Title(),
		Subtitle:   r.Subtitle(),
		ImageURL:   r.ImageURL(),
		LikedCount: r.LikedCount(),
		Href:       r.Href(),
		Score:      r.Score(),
		Why: Why{
			Semantic: why.Semantic,
			Lexical:  why.Lexical,
			Overlap:  why.Overlap,
		},
	}
}

func postFromDomain(p *post.Post) Post {
	return Post{
		ID:          p.ID(),
		Title:       p.Title(),
		Description: p.Description(),
		Tags:        p.Tags(),
		Location:    p.Location(),
		Category:    p.Category(),
		ImageURL:    p.ImageURL(),
		LikedCount:  p.LikedCount(),
		EventDate:   p.EventDate().Time(),
		HasDate:     p.EventDate().Valid(),
		AuthorName:  p.AuthorName(),
		OrgName:     p.OrgName(),
	}
}
