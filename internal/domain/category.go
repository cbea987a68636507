package domain

// Category Model
type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`                     // Primary key
	Name  string `gorm:"size:64;uniqueIndex;not null" json:"name"` // Unique category name
	Icon  string `gorm:"size:32" json:"icon"`                      // Icon shown by the frontend
	Color string `gorm:"size:16" json:"color"`                     // Hex color
}

// DefaultCategories is the reference data seeded on migration
var DefaultCategories = []Category{
	{Name: "Food", Icon: "🍔", Color: "#F97316"},
	{Name: "Transport", Icon: "🚌", Color: "#0EA5E9"},
	{Name: "Housing", Icon: "🏠", Color: "#8B5CF6"},
	{Name: "Utilities", Icon: "💡", Color: "#EAB308"},
	{Name: "Health", Icon: "💊", Color: "#10B981"},
	{Name: "Entertainment", Icon: "🎬", Color: "#EC4899"},
	{Name: "Shopping", Icon: "🛍️", Color: "#F43F5E"},
	{Name: "Education", Icon: "📚", Color: "#6366F1"},
	{Name: "Other", Icon: "📦", Color: "#64748B"},
}
