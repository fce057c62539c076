package models

import "strings"

// Category is either a category the server already knows about or free text
// entered while creating a habit. It becomes a plain string only when sent to the API.
type Category interface {
	Label() string
	isCategory()
}

// KnownCategory is a category returned by the categories endpoint.
type KnownCategory string

// AdHocCategory is a category typed in by the user.
type AdHocCategory string

func (c KnownCategory) Label() string { return string(c) }
func (KnownCategory) isCategory()     {}

func (c AdHocCategory) Label() string { return string(c) }
func (AdHocCategory) isCategory()     {}

// ResolveCategory picks the category for a new habit. A non-blank custom entry
// wins over the selected known category. It returns nil when both are empty.
func ResolveCategory(selected, custom string) Category {
	if c := strings.TrimSpace(custom); c != "" {
		return AdHocCategory(c)
	}
	if s := strings.TrimSpace(selected); s != "" {
		return KnownCategory(s)
	}
	return nil
}
