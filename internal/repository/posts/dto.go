package posts

import (
	"encoding/json"

	"github.com/campusfeed/askrank/internal/domain/post"
)

// postDTO mirrors the loosely-typed JSON shape posts have in the store.
// Field names follow the store's camelCase convention; everything except the
// key-derived id may be absent.
type postDTO struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	Location    string         `json:"location"`
	Category    string         `json:"category"`
	ImageURL    string         `json:"imageUrl"`
	LikedCount  int            `json:"likedCount"`
	EventDate   post.EventDate `json:"eventDate"`
	AuthorName  string         `json:"authorName"`
	OrgName     string         `json:"orgName"`
}

// parsePost hydrates a stored JSON payload into a domain post. Missing
// fields land as zero values, which is the tolerated malformed-document
// behavior; only undecodable JSON returns an error.
func parsePost(id string, raw []byte) (post.Post, error) {
	var dto postDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return post.Post{}, err
	}
	return post.Reconstruct(
		id, dto.Title, dto.Description, dto.Tags,
		dto.Location, dto.Category, dto.ImageURL, dto.LikedCount,
		dto.EventDate, dto.AuthorName, dto.OrgName,
	), nil
}
