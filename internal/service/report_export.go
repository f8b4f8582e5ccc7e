package service

import (
	"fmt"
	"strings"

	"github.com/RubachokBoss/academic-records/internal/grading"
	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

func renderDepartmentReport(report *models.DepartmentReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s (%s): %s, %s, %s",
		report.Department.Name,
		report.Department.Code,
		grading.FormatLevel(report.Level),
		grading.FormatSemester(report.Semester),
		report.AcademicYear,
	)

	header := []interface{}{"Matric Number", "Student Name", "Course Code", "Course Title", "Units", "Score", "Grade", "Grade Point", "Quality Points", "Carry Over"}
	rows := [][]interface{}{{title}, {}, header}
	for _, st := range report.Students {
		for _, l := range st.Results {
			carry := "No"
			if l.IsCarryOver {
				carry = "Yes"
			}
			rows = append(rows, []interface{}{
				st.MatricNumber, st.StudentName, l.CourseCode, l.CourseTitle,
				l.CreditUnit, l.Score, string(l.Grade), l.GradePoint, l.QualityPoints, carry,
			})
		}
	}
	if err := writeRows(f, resultsSheet, rows); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(resultsSheet, "A1", "A1", bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(resultsSheet, "A3", "J3", bold); err != nil {
		return nil, err
	}

	summary := [][]interface{}{
		{title},
		{},
		{"Matric Number", "Student Name", "GPA", "CGPA", "Class of Degree"},
	}
	for _, st := range report.Students {
		summary = append(summary, []interface{}{st.MatricNumber, st.StudentName, st.GPA, st.CGPA, grading.ClassOfDegree(st.CGPA)})
	}
	stats := report.Stats
	summary = append(summary,
		[]interface{}{},
		[]interface{}{"Total Students", stats.TotalStudents},
		[]interface{}{"Highest GPA", stats.HighestGPA},
		[]interface{}{"Lowest GPA", stats.LowestGPA},
		[]interface{}{"Average GPA", stats.AverageGPA},
		[]interface{}{"Carry-overs", stats.CarryOverCount},
		[]interface{}{"Pass Rate (%)", stats.PassRate},
	)
	if err := writeRows(f, summarySheet, summary); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "A3", "E3", bold); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func sanitizeYear(year string) string {
	return strings.ReplaceAll(year, "/", "-")
}
