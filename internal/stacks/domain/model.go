package domain

import "time"

// CuratorSummary is the public view of a stack's owner.
type CuratorSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ToolRef is a catalog tool attached to a stack.
type ToolRef struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Pricing  string `json:"pricing"`
}

// ForkSource points back at the stack a fork was made from.
type ForkSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CommunityStack is a curated, user-owned bundle of tools.
// LikeCount and SaveCount are always counted from the like/save rows.
type CommunityStack struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   *string        `json:"description"`
	IsPublic      bool           `json:"is_public"`
	IsFeatured    bool           `json:"is_featured"`
	FeaturedOrder *int           `json:"featured_order,omitempty"`
	ViewCount     int64          `json:"view_count"`
	LikeCount     int64          `json:"like_count"`
	SaveCount     int64          `json:"save_count"`
	Curator       CuratorSummary `json:"curator"`
	Tools         []ToolRef      `json:"tools"`
	ForkedFrom    *ForkSource    `json:"forked_from,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// PopularityScore weights likes, saves and views 3:2:1.
func (s CommunityStack) PopularityScore() int64 {
	return s.LikeCount*3 + s.SaveCount*2 + s.ViewCount
}

func (s CommunityStack) ToolIDs() []string {
	out := make([]string, 0, len(s.Tools))
	for _, t := range s.Tools {
		out = append(out, t.ID)
	}
	return out
}

// StackPage is one window of a listing plus the size of the full matching set.
type StackPage struct {
	Stacks []CommunityStack `json:"stacks"`
	Total  int              `json:"total"`
}

// NewStack carries the fields for Create. IsPublic defaults to true when nil.
type NewStack struct {
	CuratorID   string
	Name        string
	Description *string
	ToolIDs     []string
	IsPublic    *bool
}

// StackUpdate is a partial update. Nil fields are left alone; a non-nil ToolIDs
// (even empty) replaces the whole tool set. An empty Description clears it.
type StackUpdate struct {
	Name        *string
	Description *string
	IsPublic    *bool
	ToolIDs     []string
}

// ToggleResult is the state after a like or save toggle.
type ToggleResult struct {
	Active bool
	Count  int64
}

// ViewerState tells a user whether they liked and saved a stack.
type ViewerState struct {
	Liked bool `json:"liked"`
	Saved bool `json:"saved"`
}
