package importer

import "strings"

type StudentRow struct {
	RowNumber      int
	MatricNumber   string
	FirstName      string
	LastName       string
	MiddleName     string
	DepartmentCode string
	AdmissionYear  string
	Level          string
	Email          string
	Phone          string
	Cells          []string
}

type ScoreRow struct {
	RowNumber      int
	MatricNumber   string
	DepartmentCode string
	CourseCode     string
	Score          string
	Level          string
	Semester       string
	AcademicYear   string
	Cells          []string
}

func StudentRows(sheet *Sheet) []StudentRow {
	cols := StudentColumns.Resolve(sheet.Headers)
	get := cellGetter(cols)

	rows := make([]StudentRow, 0, len(sheet.Rows))
	for _, r := range sheet.Rows {
		rows = append(rows, StudentRow{
			RowNumber:      r.Number,
			MatricNumber:   strings.ToUpper(get(r, FieldMatricNumber)),
			FirstName:      get(r, FieldFirstName),
			LastName:       get(r, FieldLastName),
			MiddleName:     get(r, FieldMiddleName),
			DepartmentCode: strings.ToUpper(get(r, FieldDepartmentCode)),
			AdmissionYear:  get(r, FieldAdmissionYear),
			Level:          strings.ToUpper(get(r, FieldLevel)),
			Email:          get(r, FieldEmail),
			Phone:          get(r, FieldPhone),
			Cells:          r.Cells,
		})
	}
	return rows
}

func ScoreRows(sheet *Sheet) []ScoreRow {
	cols := ScoreColumns.Resolve(sheet.Headers)
	get := cellGetter(cols)

	rows := make([]ScoreRow, 0, len(sheet.Rows))
	for _, r := range sheet.Rows {
		rows = append(rows, ScoreRow{
			RowNumber:      r.Number,
			MatricNumber:   strings.ToUpper(get(r, FieldMatricNumber)),
			DepartmentCode: strings.ToUpper(get(r, FieldDepartmentCode)),
			CourseCode:     strings.ToUpper(get(r, FieldCourseCode)),
			Score:          get(r, FieldScore),
			Level:          strings.ToUpper(get(r, FieldLevel)),
			Semester:       strings.ToUpper(get(r, FieldSemester)),
			AcademicYear:   get(r, FieldAcademicYear),
			Cells:          r.Cells,
		})
	}
	return rows
}

func cellGetter(cols map[Field]int) func(Row, Field) string {
	return func(r Row, f Field) string {
		i, ok := cols[f]
		if !ok {
			return ""
		}
		return r.Cell(i)
	}
}
