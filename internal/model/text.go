package model

import "github.com/google/uuid"

// NoTextAvailable is returned by text resolution when no row exists in
// any language for the requested text id.
const NoTextAvailable = "< no text available >"

// Named is implemented by entities carrying a localized name.
type Named interface {
	EntityID() uuid.UUID
	NameTextID() uuid.UUID
}

// Described is implemented by entities carrying a localized description.
type Described interface {
	Named
	DescriptionTextID() uuid.UUID
}
