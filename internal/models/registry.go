// ABOUTME: Registry of every model in the fitplan schema.
// ABOUTME: Order follows foreign-key dependencies so tables can be created front to back.
package models

// All returns a fresh pointer to every declared model.
func All() []any {
	return []any{
		&BodyPart{},
		&Equipment{},
		&Target{},
		&Exercise{},
		&SecondaryTarget{},
		&TrainingPlan{},
		&PlannedExercise{},
	}
}

// TableNames returns the prefixed name of every declared table, in All order.
func TableNames() []string {
	return []string{
		BodyPart{}.TableName(),
		Equipment{}.TableName(),
		Target{}.TableName(),
		Exercise{}.TableName(),
		SecondaryTarget{}.TableName(),
		TrainingPlan{}.TableName(),
		PlannedExercise{}.TableName(),
	}
}
