// ABOUTME: TrainingPlan and PlannedExercise tables.
// ABOUTME: A plan belongs to a user email and carries per-exercise sets, weights, reps, and rests.
package models

import "time"

// TrainingPlan is a named routine owned by a user.
//
// UserEmail is not a foreign key; users live outside this schema.
type TrainingPlan struct {
	ID               int32             `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	UserEmail        string            `gorm:"size:128;not null;check:chk_training_plan_user_email_len,length(user_email) <= 128" json:"user_email" yaml:"user_email"`
	Name             string            `gorm:"size:256;not null;check:chk_training_plan_name_len,length(name) <= 256" json:"name" yaml:"name"`
	Description      string            `gorm:"size:512;not null;check:chk_training_plan_description_len,length(description) <= 512" json:"description" yaml:"description"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at" yaml:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at" yaml:"updated_at"`
	EstimatedTime    Clock             `gorm:"not null" json:"estimated_time" yaml:"estimated_time"`
	LastTrainingTime *Clock            `json:"last_training_time,omitempty" yaml:"last_training_time,omitempty"`
	Exercises        []PlannedExercise `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"exercises,omitempty" yaml:"exercises,omitempty"`
}

// TableName implements gorm's schema.Tabler.
func (TrainingPlan) TableName() string { return Table("training_plan") }

// PlannedExercise is an exercise scheduled within a training plan.
type PlannedExercise struct {
	ID              int32     `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	ExerciseID      int32     `gorm:"not null" json:"exercise_id" yaml:"exercise_id"`
	Exercise        *Exercise `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"exercise,omitempty" yaml:"exercise,omitempty"`
	TrainingPlanID  int32     `gorm:"not null" json:"training_plan_id" yaml:"training_plan_id"`
	Series          int16     `gorm:"not null" json:"series" yaml:"series"`
	Weights         int16     `gorm:"not null" json:"weights" yaml:"weights"`
	Reps            int16     `gorm:"not null" json:"reps" yaml:"reps"`
	RestTimeBetween Clock     `gorm:"not null" json:"rest_time_between" yaml:"rest_time_between"`
	RestTimeAfter   Clock     `gorm:"not null" json:"rest_time_after" yaml:"rest_time_after"`
}

// TableName implements gorm's schema.Tabler.
func (PlannedExercise) TableName() string { return Table("planned_exercise") }
