// Package result defines the ranked hit handed to the presentation layer.
package result

// Why explains a ranked hit: both raw signals rounded for display, plus the
// query terms found verbatim in the post's composite text.
type Why struct {
	Semantic float64
	Lexical  float64
	Overlap  []string
}

// Result is a single ranked hit (immutable value object). Created per
// ranking call and discarded after rendering; never stored.
type Result struct {
	id         string
	title      string
	subtitle   string
	imageURL   string
	likedCount int
	href       string
	score      float64
	why        Why
}

// New creates a ranked result.
func New(
	id, title, subtitle, imageURL string, likedCount int,
	href string, score float64, why Why,
) Result {
	return Result{
		id: id, title: title, subtitle: subtitle, imageURL: imageURL,
		likedCount: likedCount, href: href, score: score, why: why,
	}
}

// ID returns the post identifier.
func (r *Result) ID() string { return r.id }

// Title returns the post title.
func (r *Result) Title() string { return r.title }

// Subtitle returns the display line under the title.
func (r *Result) Subtitle() string { return r.subtitle }

// ImageURL returns the cover image reference, "" when absent.
func (r *Result) ImageURL() string { return r.imageURL }

// LikedCount returns the authoritative like count at snapshot time.
func (r *Result) LikedCount() int { return r.likedCount }

// Href returns the navigation target for the hit.
func (r *Result) Href() string { return r.href }

// Score returns the blended ranking score (unrounded).
func (r *Result) Score() float64 { return r.score }

// Why returns the explanation payload.
func (r *Result) Why() Why { return r.why }
