package export

import (
	"strconv"
	"testing"
	"time"

	"github.com/Spok95/tutoring-admin/internal/models"
)

func TestNewPayslipWorkbook(t *testing.T) {
	sheets := []PayslipSheet{
		{
			TeacherName: "Анна Петрова",
			Payslip: models.Payslip{
				TeacherID: 1, Year: 2024, Month: time.March,
				TotalSessions: 2, TotalAmount: 600,
			},
			Lines: []models.PayslipLine{
				{
					SessionID: 1, ClassTitle: "Алгебра",
					Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
					Time: models.TimeOfDay{Hour: 9}, DurationMinutes: 60, Amount: 300,
				},
				{
					SessionID: 2, ClassTitle: "Алгебра",
					Date: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
					Time: models.TimeOfDay{Hour: 9}, DurationMinutes: 60, Amount: 300,
					Substitute: true,
				},
			},
		},
		{
			TeacherName: "Борис: очень/длинное имя с недопустимыми символами?",
			Payslip:     models.Payslip{TeacherID: 2, Year: 2024, Month: time.March},
		},
	}

	wb, err := NewPayslipWorkbook(sheets)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = wb.File.Close() }()

	names := wb.File.GetSheetList()
	if len(names) != 2 {
		t.Fatalf("ожидали 2 листа, получили %v", names)
	}
	if names[0] != "Анна Петрова" {
		t.Fatalf("первый лист должен называться по преподавателю, получили %q", names[0])
	}
	if len([]rune(names[1])) > 31 {
		t.Fatalf("имя листа длиннее 31 символа: %q", names[1])
	}

	if v, _ := wb.File.GetCellValue("Анна Петрова", "A1"); v != "Дата" {
		t.Fatalf("A1: ожидали заголовок, получили %q", v)
	}
	if v, _ := wb.File.GetCellValue("Анна Петрова", "A2"); v != "04.03.2024" {
		t.Fatalf("A2: ожидали 04.03.2024, получили %q", v)
	}
	if v, _ := wb.File.GetCellValue("Анна Петрова", "E3"); v != "да" {
		t.Fatalf("E3: занятие с подменой должно отмечаться, получили %q", v)
	}
	v, _ := wb.File.GetCellValue("Анна Петрова", "F5")
	if total, err := strconv.ParseFloat(v, 64); err != nil || total != 600 {
		t.Fatalf("F5: ожидали итог 600, получили %q", v)
	}
}

func TestNewPayslipWorkbook_Empty(t *testing.T) {
	if _, err := NewPayslipWorkbook(nil); err == nil {
		t.Fatal("пустая выгрузка должна отклоняться")
	}
}

func TestSanitizeSheetName(t *testing.T) {
	if got := sanitizeSheetName("a:b/c"); got != "a_b_c" {
		t.Fatalf("ожидали a_b_c, получили %q", got)
	}
	if got := sanitizeSheetName(""); got != "Лист" {
		t.Fatalf("пустое имя должно заменяться, получили %q", got)
	}
}
