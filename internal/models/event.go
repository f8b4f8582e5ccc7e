package models

type GPARecalculatedEvent struct {
	StudentID    string   `json:"studentId"`
	Level        Level    `json:"level"`
	Semester     Semester `json:"semester"`
	AcademicYear string   `json:"academicYear"`
	GPA          float64  `json:"gpa"`
	CGPA         float64  `json:"cgpa"`
	TotalUnits   int      `json:"totalUnits"`
	Removed      bool     `json:"removed"`
	Timestamp    int64    `json:"timestamp"`
}

type ImportCompletedEvent struct {
	JobID        string `json:"jobId"`
	Kind         string `json:"kind"`
	ActorID      string `json:"actorId"`
	Success      bool   `json:"success"`
	TotalRows    int    `json:"totalRows"`
	SuccessCount int    `json:"successCount"`
	UpdatedCount int    `json:"updatedCount"`
	SkippedCount int    `json:"skippedCount"`
	ErrorCount   int    `json:"errorCount"`
	Timestamp    int64  `json:"timestamp"`
}
