package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type instruction struct {
	field       string
	description string
	required    bool
}

const levelHelp = "Level: LEVEL_100, LEVEL_200, LEVEL_300, LEVEL_400, LEVEL_500, ND1, ND2, HND1, HND2 (100, 100 Level are accepted)"

// StudentTemplate returns the student upload workbook: a Students sheet with
// the expected columns and sample rows, and an Instructions sheet.
func StudentTemplate() ([]byte, error) {
	header := []string{"MatricNumber", "FirstName", "LastName", "MiddleName", "DepartmentCode", "AdmissionYear", "StudentLevel", "Email", "Phone"}
	samples := [][]interface{}{
		{"CSC/2023/001", "John", "Doe", "Michael", "CSC", 2023, "LEVEL_100", "john.doe@university.edu.ng", "08012345678"},
		{"CSC/2023/002", "Jane", "Smith", "", "CSC", 2023, "LEVEL_100", "", ""},
	}
	help := []instruction{
		{"MatricNumber", "Student matriculation number, prefixed with the department code (e.g., CSC/2023/001)", true},
		{"FirstName", "Student first name", true},
		{"LastName", "Student last name/surname", true},
		{"MiddleName", "Student middle name", false},
		{"DepartmentCode", "Department code (e.g., CSC, MTH, PHY)", true},
		{"AdmissionYear", "Year of admission (e.g., 2023)", true},
		{"StudentLevel", levelHelp, true},
		{"Email", "Student email address", false},
		{"Phone", "Student phone number", false},
	}
	return buildTemplate("Students", header, samples, help)
}

func ScoreTemplate() ([]byte, error) {
	header := []string{"MatricNumber", "CourseCode", "Score", "StudentLevel", "Semester", "AcademicYear"}
	samples := [][]interface{}{
		{"CSC/2023/001", "CSC101", 75, "LEVEL_100", "FIRST", "2023/2024"},
		{"CSC/2023/001", "CSC103", 68, "LEVEL_100", "FIRST", "2023/2024"},
		{"CSC/2023/002", "CSC101", 82, "LEVEL_100", "FIRST", "2023/2024"},
	}
	help := []instruction{
		{"MatricNumber", "Student matriculation number", true},
		{"CourseCode", "Course code in the student's department (e.g., CSC101)", true},
		{"Score", "Score (0-100)", true},
		{"StudentLevel", levelHelp + ". Must match the course level", true},
		{"Semester", "Semester: FIRST or SECOND. Must match the course semester", true},
		{"AcademicYear", "Academic year (e.g., 2023/2024)", true},
		{"DepartmentCode", "Optional. When present it must match the student's department", false},
	}
	return buildTemplate("Scores", header, samples, help)
}

func buildTemplate(sheet string, header []string, samples [][]interface{}, help []instruction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := writeTable(f, sheet, header, samples); err != nil {
		return nil, err
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	f.SetColWidth(sheet, "A", last, 18)

	const instructions = "Instructions"
	if _, err := f.NewSheet(instructions); err != nil {
		return nil, err
	}
	rows := make([][]interface{}, len(help))
	for i, h := range help {
		required := "No"
		if h.required {
			required = "Yes"
		}
		rows[i] = []interface{}{h.field, h.description, required}
	}
	if err := writeTable(f, instructions, []string{"Field", "Description", "Required"}, rows); err != nil {
		return nil, err
	}
	f.SetColWidth(instructions, "A", "A", 18)
	f.SetColWidth(instructions, "B", "B", 80)
	f.SetColWidth(instructions, "C", "C", 10)
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	return buf.Bytes(), nil
}
