package domain

import "errors"

var ErrToolNotFound = errors.New("tool not found")

// Tool is a catalog entry. ID is the tool's slug.
type Tool struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Category    string `json:"category" yaml:"category"`
	Pricing     string `json:"pricing" yaml:"pricing"`
	Description string `json:"description,omitempty" yaml:"description"`
	URL         string `json:"url,omitempty" yaml:"url"`
}
