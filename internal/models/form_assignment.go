package models

// FormAssignment links a group to an external form. FormID is
// intentionally not unique: each row is a per-group assignment record
// created together with the group that owns it, not an entry in a
// deduplicated form catalog.
type FormAssignment struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	FormID int  `json:"form_id" gorm:"index"`
}

func (FormAssignment) TableName() string {
	return "forms"
}
