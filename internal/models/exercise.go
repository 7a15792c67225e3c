// ABOUTME: Exercise and SecondaryTarget tables.
// ABOUTME: An exercise references one body part, one primary target, and one piece of equipment.
package models

// Exercise is a single movement with its demonstration and instructions.
//
// Reference columns are plain integers backed by explicit foreign keys. The
// association fields are only populated when preloaded.
type Exercise struct {
	ID           int32      `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	Name         string     `gorm:"size:256;not null;index:name_idx;check:chk_exercise_name_len,length(name) <= 256" json:"name" yaml:"name"`
	BodyPartID   int32      `gorm:"not null" json:"body_part_id" yaml:"body_part_id"`
	BodyPart     *BodyPart  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"body_part,omitempty" yaml:"body_part,omitempty"`
	TargetID     int32      `gorm:"not null" json:"target_id" yaml:"target_id"`
	Target       *Target    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"target,omitempty" yaml:"target,omitempty"`
	GifURL       string     `gorm:"column:gif_url;size:256;not null;check:chk_exercise_gif_url_len,length(gif_url) <= 256" json:"gif_url" yaml:"gif_url"`
	EquipmentID  int32      `gorm:"not null" json:"equipment_id" yaml:"equipment_id"`
	Equipment    *Equipment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Instructions string     `gorm:"size:1024;not null;check:chk_exercise_instructions_len,length(instructions) <= 1024" json:"instructions" yaml:"instructions"`
}

// TableName implements gorm's schema.Tabler.
func (Exercise) TableName() string { return Table("exercise") }

// SecondaryTarget links an exercise to a muscle it works besides its primary target.
// The (exercise, target) pair is the primary key.
type SecondaryTarget struct {
	ExerciseID int32     `gorm:"primaryKey;autoIncrement:false" json:"exercise_id" yaml:"exercise_id"`
	Exercise   *Exercise `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-" yaml:"-"`
	TargetID   int32     `gorm:"primaryKey;autoIncrement:false" json:"target_id" yaml:"target_id"`
	Target     *Target   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"target,omitempty" yaml:"target,omitempty"`
}

// TableName implements gorm's schema.Tabler.
func (SecondaryTarget) TableName() string { return Table("secondary_target") }
