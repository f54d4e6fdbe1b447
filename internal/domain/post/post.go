// Package post holds the read-only snapshot entity the ranking engine
// scores. Posts are owned by the external document store; this package
// never mutates them.
package post

import "strings"

// compositeSeparator joins the searchable fields of a post into the single
// string that gets embedded and lexically scored.
const compositeSeparator = " • "

// Post is a feed post snapshot (immutable value object).
type Post struct {
	id          string
	title       string
	description string
	tags        []string
	location    string
	category    string
	imageURL    string
	likedCount  int
	eventDate   EventDate
	authorName  string
	orgName     string
}

// Reconstruct creates a Post from stored data without validation. Missing
// text fields hydrate as empty strings upstream; a negative like count is
// clamped to zero.
func Reconstruct(
	id, title, description string, tags []string,
	location, category, imageURL string, likedCount int,
	eventDate EventDate, authorName, orgName string,
) Post {
	if likedCount < 0 {
		likedCount = 0
	}
	return Post{
		id: id, title: title, description: description, tags: tags,
		location: location, category: category, imageURL: imageURL,
		likedCount: likedCount, eventDate: eventDate,
		authorName: authorName, orgName: orgName,
	}
}

// ID returns the stable post identifier.
func (p *Post) ID() string { return p.id }

// Title returns the post title.
func (p *Post) Title() string { return p.title }

// Description returns the post body text.
func (p *Post) Description() string { return p.description }

// Tags returns the post tags in stored order.
func (p *Post) Tags() []string { return p.tags }

// Location returns the event location.
func (p *Post) Location() string { return p.location }

// Category returns the feed category.
func (p *Post) Category() string { return p.category }

// ImageURL returns the cover image reference, "" when absent.
func (p *Post) ImageURL() string { return p.imageURL }

// LikedCount returns the authoritative like count from the snapshot.
func (p *Post) LikedCount() int { return p.likedCount }

// EventDate returns the normalized event date.
func (p *Post) EventDate() EventDate { return p.eventDate }

// AuthorName returns the author display name.
func (p *Post) AuthorName() string { return p.authorName }

// OrgName returns the organization display name.
func (p *Post) OrgName() string { return p.orgName }

// CompositeText concatenates title, description, joined tags, location and
// category with a fixed separator. Built once per ranking call and never
// cached across calls.
func (p *Post) CompositeText() string {
	return strings.Join([]string{
		p.title,
		p.description,
		strings.Join(p.tags, " "),
		p.location,
		p.category,
	}, compositeSeparator)
}

// Subtitle builds the display line under a result title: formatted event
// date and location, separator only when both are present.
func (p *Post) Subtitle() string {
	sub := p.eventDate.Format()
	if p.location == "" {
		return sub
	}
	if sub == "" {
		return p.location
	}
	return sub + compositeSeparator + p.location
}
