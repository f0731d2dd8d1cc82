package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const generatedLayout = "2006-01-02 15:04:05"

type section struct {
	title  string
	header []string
	rows   [][]any
}

func sections(snap Snapshot) []section {
	doctors := section{
		title:  "DOCTORS",
		header: []string{"ID", "Name", "Specialization", "Email", "Phone", "Experience", "Active"},
	}
	for _, d := range snap.Doctors {
		doctors.rows = append(doctors.rows, []any{d.ID, d.Name, d.Specialization, d.Email, d.Phone, d.ExperienceYears, d.IsActive})
	}

	patients := section{
		title:  "PATIENTS",
		header: []string{"ID", "Name", "Email", "Phone", "Age", "Gender"},
	}
	for _, p := range snap.Patients {
		age := ""
		if p.Age > 0 {
			age = strconv.Itoa(p.Age)
		}
		patients.rows = append(patients.rows, []any{p.ID, p.Name, p.Email, p.Phone, age, p.Gender})
	}

	appts := section{
		title:  "APPOINTMENTS",
		header: []string{"Token", "Patient", "Phone", "Doctor", "Specialization", "Date", "Time", "Status", "Channel"},
	}
	for _, a := range snap.Appointments {
		appts.rows = append(appts.rows, []any{a.Token, a.PatientName, a.PatientPhone, a.DoctorName, a.Specialization, a.Date, a.Time, a.Status, a.Channel})
	}
	return []section{doctors, patients, appts}
}

// WriteCSV writes all sections into one spreadsheet-friendly CSV file.
func WriteCSV(w io.Writer, snap Snapshot) error {
	cw := csv.NewWriter(w)
	write := func(record ...string) {
		_ = cw.Write(record)
	}
	write("=== CLINIC DATA EXPORT ===")
	write("Generated: " + snap.GeneratedAt.Format(generatedLayout))
	for _, sec := range sections(snap) {
		write()
		write("=== " + sec.title + " ===")
		write(sec.header...)
		for _, row := range sec.rows {
			record := make([]string, len(row))
			for i, v := range row {
				record[i] = fmt.Sprint(v)
			}
			write(record...)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes one sheet per section with a bold, frozen header row.
func WriteXLSX(w io.Writer, snap Snapshot) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("dashboard: header style: %w", err)
	}

	for i, sec := range sections(snap) {
		sheet := titleCase(sec.title)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("dashboard: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("dashboard: new sheet: %w", err)
		}

		header := make([]any, len(sec.header))
		for j, h := range sec.header {
			header[j] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("dashboard: %s header: %w", sheet, err)
		}
		last, err := excelize.ColumnNumberToName(len(sec.header))
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
			return fmt.Errorf("dashboard: %s header style: %w", sheet, err)
		}
		for j, row := range sec.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("dashboard: %s row %d: %w", sheet, j+2, err)
			}
		}
		if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
			return fmt.Errorf("dashboard: %s widths: %w", sheet, err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("dashboard: %s panes: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("dashboard: write xlsx: %w", err)
	}
	return nil
}

// WriteSummary renders the plain-text report.
func WriteSummary(w io.Writer, stats Stats, generatedAt time.Time) error {
	rule := strings.Repeat("=", 60)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\nCLINIC DATA SUMMARY\nGenerated: %s\n%s\n\n", rule, generatedAt.Format(generatedLayout), rule)
	sb.WriteString("STATISTICS\n" + strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&sb, "Total Doctors: %d (Active: %d)\n", stats.TotalDoctors, stats.ActiveDoctors)
	fmt.Fprintf(&sb, "Total Specializations: %d (Active: %d)\n", stats.TotalSpecializations, stats.ActiveSpecializations)
	fmt.Fprintf(&sb, "Total Patients: %d\n", stats.TotalPatients)
	fmt.Fprintf(&sb, "Total Appointments: %d (Pending: %d, Confirmed: %d, Completed: %d, Cancelled: %d)\n\n",
		stats.TotalAppointments, stats.PendingAppointments, stats.ConfirmedAppointments,
		stats.CompletedAppointments, stats.CancelledAppointments)
	fmt.Fprintf(&sb, "RECENT APPOINTMENTS (Last %d)\n%s\n", recentLimit, strings.Repeat("-", 60))
	for _, a := range stats.RecentAppointments {
		fmt.Fprintf(&sb, "%s %s - %s - %s - %s\n", a.Date, a.Time, a.Token, a.PatientName, a.Status)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func titleCase(s string) string {
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}
