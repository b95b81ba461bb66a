package models

// RequirementShortRequirement is the join row linking a requirement to one
// short-form phrase. The set is owned by the requirement: every write is a
// full replace of all rows for that requirement id, never a diff.
type RequirementShortRequirement struct {
	RequirementID      int `json:"requirement_id" db:"requirement_id" gorm:"primaryKey;not null;constraint:OnDelete:CASCADE"`
	ShortRequirementID int `json:"short_requirement_id" db:"short_requirement_id" gorm:"primaryKey;not null"`
}
