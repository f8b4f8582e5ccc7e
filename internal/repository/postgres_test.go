package repository

import (
	"errors"
	"strings"
	"testing"

	"github.com/lib/pq"
)

func TestPlaceholders(t *testing.T) {
	if got := placeholders(2, 3); got != "($1, $2, $3), ($4, $5, $6)" {
		t.Errorf("placeholders(2, 3) = %q", got)
	}
	if got := placeholders(1, 1); got != "($1)" {
		t.Errorf("placeholders(1, 1) = %q", got)
	}
}

func TestChunks(t *testing.T) {
	got := chunks(7, 3)
	want := [][2]int{{0, 3}, {3, 6}, {6, 7}}
	if len(got) != len(want) {
		t.Fatalf("chunks = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %v, want %v", i, got[i], want[i])
		}
	}
	if len(chunks(0, 3)) != 0 {
		t.Error("empty input produced chunks")
	}
	if got := chunks(4, 0); len(got) != 1 || got[0] != [2]int{0, 4} {
		t.Errorf("unbounded chunks = %v", got)
	}
}

func TestMapError(t *testing.T) {
	err := mapError(&pq.Error{Code: uniqueViolation, Constraint: "students_matric_number_key"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("unique violation not mapped: %v", err)
	}

	other := errors.New("boom")
	if mapError(other) != other {
		t.Error("unrelated error changed")
	}
}

func TestResultUpsertKeepsStoredKey(t *testing.T) {
	_, update, ok := strings.Cut(resultUpsert, "DO UPDATE SET")
	if !ok {
		t.Fatal("upsert has no conflict clause")
	}
	set, _, _ := strings.Cut(update, "RETURNING")
	for _, column := range []string{"level", "semester", "academic_year", "student_id", "course_id"} {
		if strings.Contains(set, column+" = ") {
			t.Errorf("conflict update rewrites %s", column)
		}
	}
	if !strings.Contains(update, "RETURNING id, created_at, level, semester") {
		t.Error("upsert does not return the stored level and semester")
	}
}
