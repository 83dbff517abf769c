package models

import "time"

// Group is a named, owned collection of members. Members is a packed
// string encoding of member ids (max 25 chars), not a relational list;
// lookups against it are substring containment, never set membership.
type Group struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	Title           string           `json:"title" gorm:"type:varchar(200);uniqueIndex"`
	OwnerID         int              `json:"owner_id" gorm:"index"`
	Members         string           `json:"members" gorm:"type:varchar(25)"`
	Date            time.Time        `json:"date"`
	AssignedToForms []FormAssignment `json:"assigned_to_forms" gorm:"many2many:group_form;joinForeignKey:GroupID;joinReferences:FormID"`
}

func (Group) TableName() string {
	return "groups"
}
