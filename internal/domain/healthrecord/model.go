package healthrecord

import "time"

// Record is a health record as the notification feed sees it. ID is the
// store's native identifier rendered as a string: a UUID for PostgreSQL, a
// hex ObjectID for MongoDB.
type Record struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subjectId"`
	Diagnosis string    `json:"diagnosis"`
	Date      time.Time `json:"date"`
}
