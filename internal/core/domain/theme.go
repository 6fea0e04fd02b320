package domain

import "time"

// Theme is one node of the feedback taxonomy. A sub-theme is simply a theme
// whose ParentThemeID is set; the flat theme set is the source of truth and
// the tree is derived from it.
type Theme struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspace_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ParentThemeID *string   `json:"parent_theme_id,omitempty"`
	FeatureCount  int       `json:"feature_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ThemeWithChildren is the derived tree view of a Theme. It is rebuilt from
// the flat set on every mutation and never written back.
type ThemeWithChildren struct {
	Theme
	Children []*ThemeWithChildren `json:"children"`
}
