package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	tableResults  = "test_results"
	tableErrors   = "user_errors"
	tableProgress = "module_progress"

	colID               = "id"
	colSessionID        = "session_id"
	colTestType         = "test_type"
	colTestMode         = "test_mode"
	colBookID           = "book_id"
	colModuleID         = "module_id"
	colTotalQuestions   = "total_questions"
	colCorrectAnswers   = "correct_answers"
	colScorePercent     = "score_percent"
	colTimeSpentSeconds = "time_spent_seconds"
	colDetails          = "question_details"
	colCreatedAt        = "created_at"

	colQuestionID     = "question_id"
	colErrorCount     = "error_count"
	colLastErrorAt    = "last_error_at"
	colLastCorrectAt  = "last_correct_at"
	colNextReviewAt   = "next_review_at"
	colIntervalDays   = "review_interval_days"
	colQuestionsSeen  = "questions_seen"
	colQuestionsRight = "questions_correct"
	colMastery        = "mastery_percent"
	colUnlocked       = "is_unlocked"
	colCompletedAt    = "completed_at"
	colUpdatedAt      = "updated_at"
)

var (
	resultColumns = []*schema.Column{
		{Name: colID, Type: field.TypeString, Size: 36},
		{Name: colSessionID, Type: field.TypeString, Size: 64, Default: ""},
		{Name: colTestType, Type: field.TypeString, Size: 32},
		{Name: colTestMode, Type: field.TypeString, Size: 32},
		{Name: colBookID, Type: field.TypeInt, Nullable: true},
		{Name: colModuleID, Type: field.TypeInt, Nullable: true},
		{Name: colTotalQuestions, Type: field.TypeInt},
		{Name: colCorrectAnswers, Type: field.TypeInt},
		{Name: colScorePercent, Type: field.TypeFloat64},
		{Name: colTimeSpentSeconds, Type: field.TypeInt},
		{Name: colDetails, Type: field.TypeJSON, Nullable: true},
		{Name: colCreatedAt, Type: field.TypeTime},
	}
	resultsTable = &schema.Table{
		Name:       tableResults,
		Columns:    resultColumns,
		PrimaryKey: []*schema.Column{resultColumns[0]},
		Indexes: []*schema.Index{
			{Name: "testresult_created_at", Columns: []*schema.Column{resultColumns[11]}},
		},
	}

	errorColumns = []*schema.Column{
		{Name: colQuestionID, Type: field.TypeString, Size: 128},
		{Name: colBookID, Type: field.TypeInt},
		{Name: colModuleID, Type: field.TypeInt},
		{Name: colErrorCount, Type: field.TypeInt, Default: 0},
		{Name: colLastErrorAt, Type: field.TypeTime, Nullable: true},
		{Name: colLastCorrectAt, Type: field.TypeTime, Nullable: true},
		{Name: colNextReviewAt, Type: field.TypeTime},
		{Name: colIntervalDays, Type: field.TypeInt, Default: 1},
	}
	errorsTable = &schema.Table{
		Name:       tableErrors,
		Columns:    errorColumns,
		PrimaryKey: []*schema.Column{errorColumns[0]},
		Indexes: []*schema.Index{
			{Name: "usererror_next_review_at", Columns: []*schema.Column{errorColumns[6]}},
			{Name: "usererror_book_id", Columns: []*schema.Column{errorColumns[1]}},
		},
	}

	progressColumns = []*schema.Column{
		{Name: colBookID, Type: field.TypeInt},
		{Name: colModuleID, Type: field.TypeInt},
		{Name: colQuestionsSeen, Type: field.TypeInt, Default: 0},
		{Name: colQuestionsRight, Type: field.TypeInt, Default: 0},
		{Name: colMastery, Type: field.TypeFloat64, Default: 0},
		{Name: colUnlocked, Type: field.TypeBool, Default: false},
		{Name: colCompletedAt, Type: field.TypeTime, Nullable: true},
		{Name: colUpdatedAt, Type: field.TypeTime},
	}
	progressTable = &schema.Table{
		Name:       tableProgress,
		Columns:    progressColumns,
		PrimaryKey: []*schema.Column{progressColumns[0], progressColumns[1]},
	}

	// Tables lists every table the store migrates.
	Tables = []*schema.Table{resultsTable, errorsTable, progressTable}
)
