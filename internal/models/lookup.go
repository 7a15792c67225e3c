// ABOUTME: Lookup tables for body parts, equipment, and muscle targets.
// ABOUTME: Each row is only an identifier and a name.
package models

// BodyPart is a region of the body an exercise works (e.g. "waist").
type BodyPart struct {
	ID   int32  `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	Name string `gorm:"size:256;not null;check:chk_body_part_name_len,length(name) <= 256" json:"name" yaml:"name"`
}

// TableName implements gorm's schema.Tabler.
func (BodyPart) TableName() string { return Table("body_part") }

// Equipment is something an exercise requires (e.g. "barbell").
type Equipment struct {
	ID   int32  `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	Name string `gorm:"size:256;not null;check:chk_equipment_name_len,length(name) <= 256" json:"name" yaml:"name"`
}

// TableName implements gorm's schema.Tabler.
func (Equipment) TableName() string { return Table("equipment") }

// Target is a muscle or muscle group (e.g. "abs").
type Target struct {
	ID   int32  `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	Name string `gorm:"size:256;not null;check:chk_target_name_len,length(name) <= 256" json:"name" yaml:"name"`
}

// TableName implements gorm's schema.Tabler.
func (Target) TableName() string { return Table("target") }
