// Package export — выгрузка расчётных листов в Excel для бухгалтерии.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/tutoring-admin/internal/models"
)

var payslipHeader = []string{"Дата", "Время", "Класс", "Длительность, мин", "Подмена", "Сумма"}

// PayslipSheet — данные одного листа: преподаватель + его строки.
type PayslipSheet struct {
	TeacherName string
	Payslip     models.Payslip
	Lines       []models.PayslipLine
}

type PayslipWorkbook struct {
	File *excelize.File
}

// NewPayslipWorkbook — книга на месяц: по листу на преподавателя, внизу
// каждого листа итоговая строка из payslip.
func NewPayslipWorkbook(sheets []PayslipSheet) (*PayslipWorkbook, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("пустая выгрузка: нет листов")
	}
	f := excelize.NewFile()
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	for i, s := range sheets {
		name := sanitizeSheetName(s.TeacherName)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("new sheet: %w", err)
			}
		}

		for col, h := range payslipHeader {
			cell := fmt.Sprintf("%s1", colName(col+1))
			if err := f.SetCellStr(name, cell, h); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		end := colName(len(payslipHeader)) + "1"
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)

		for r, l := range s.Lines {
			row := r + 2
			substitute := ""
			if l.Substitute {
				substitute = "да"
			}
			_ = f.SetCellStr(name, "A"+fmt.Sprint(row), l.Date.Format("02.01.2006"))
			_ = f.SetCellStr(name, "B"+fmt.Sprint(row), fmt.Sprintf("%02d:%02d", l.Time.Hour, l.Time.Minute))
			_ = f.SetCellStr(name, "C"+fmt.Sprint(row), l.ClassTitle)
			_ = f.SetCellInt(name, "D"+fmt.Sprint(row), int64(l.DurationMinutes))
			_ = f.SetCellStr(name, "E"+fmt.Sprint(row), substitute)
			_ = f.SetCellFloat(name, "F"+fmt.Sprint(row), l.Amount, 2, 64)
		}

		// итоговая строка
		totalRow := len(s.Lines) + 3
		_ = f.SetCellStr(name, "A"+fmt.Sprint(totalRow),
			fmt.Sprintf("Итого за %04d-%02d, занятий: %d", s.Payslip.Year, int(s.Payslip.Month), s.Payslip.TotalSessions))
		_ = f.SetCellFloat(name, "F"+fmt.Sprint(totalRow), s.Payslip.TotalAmount, 2, 64)
		_ = f.SetCellStyle(name, "A"+fmt.Sprint(totalRow), "F"+fmt.Sprint(totalRow), bold)

		// эвристическая ширина по заголовку и первым строкам
		for c := 1; c <= len(payslipHeader); c++ {
			w := float64(len([]rune(payslipHeader[c-1]))) * 1.1
			if c == 3 {
				for r := 0; r < minim(50, len(s.Lines)); r++ {
					if l := float64(len([]rune(s.Lines[r].ClassTitle))); l > w {
						w = l
					}
				}
			}
			if w < 12 {
				w = 12
			}
			if w > 40 {
				w = 40
			}
			_ = f.SetColWidth(name, colName(c), colName(c), w)
		}
	}
	return &PayslipWorkbook{File: f}, nil
}

func (w *PayslipWorkbook) SaveTemp(year int, month time.Month) (string, error) {
	path := fmt.Sprintf("/tmp/payslips_%04d-%02d.xlsx", year, int(month))
	return path, w.File.SaveAs(path)
}

// WriteTo — отдача книги в поток (HTTP-выгрузка без временного файла).
func (w *PayslipWorkbook) WriteTo(dst io.Writer) (int64, error) {
	return w.File.WriteTo(dst)
}

// helpers

func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// sanitizeSheetName — Excel не любит спецсимволы и имена длиннее 31.
func sanitizeSheetName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			r = '_'
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	if len(out) == 0 {
		return "Лист"
	}
	return string(out)
}
