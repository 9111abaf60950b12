package models

// Solver is a registered individual, member of exactly one live team. The
// unique index on ExternalID is what makes membership uniqueness hold under
// concurrent registration attempts, not the friendlier pre-checks in the
// directory. Rows are deleted on leave and bulk-deleted on team deletion.
type Solver struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ExternalID  string `gorm:"type:varchar(255);not null;uniqueIndex;column:external_id" json:"external_id"`
	DisplayName string `gorm:"type:varchar(255);not null;column:display_name" json:"display_name"`
	TeamID      uint   `gorm:"not null;index;column:team_id" json:"team_id"`
	IsCaptain   bool   `gorm:"not null;default:false;column:is_captain" json:"is_captain"`
}
