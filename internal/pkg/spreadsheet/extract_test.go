package spreadsheet

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
)

func TestParse_BasicLayout(t *testing.T) {
	rows := [][]string{
		{"Monthly Attendance Report"},
		{},
		{"Employee ID", "Name", "Department", "1", "2", "3"},
		{"", "", "", "Fri", "Sat", "Sun"},
		{"E001", "Alice", "Engineering", "09:45 18:30", "WO", ""},
		{"E002", "Bob", "", "10:30\n19:30", "", "H"},
	}

	employees, err := Parse(rows, Options{})
	require.NoError(t, err)
	require.Len(t, employees, 2)

	alice := employees[0]
	assert.Equal(t, "E001", alice.ID)
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, "Engineering", alice.Department)
	require.Len(t, alice.Days, 3)
	assert.Equal(t, []string{"09:45", "18:30"}, alice.Days[0].PunchTimes)
	assert.False(t, alice.Days[0].IsWeekend)
	assert.True(t, alice.Days[1].IsWeekend)
	assert.True(t, alice.Days[2].IsWeekend, "Sunday column is a weekend from the weekday row")
	assert.NotNil(t, alice.Days[2].PunchTimes)
	assert.Empty(t, alice.Days[2].PunchTimes)

	bob := employees[1]
	assert.Equal(t, []string{"10:30", "19:30"}, bob.Days[0].PunchTimes)
	assert.True(t, bob.Days[1].IsWeekend)
	assert.True(t, bob.Days[2].IsHoliday)
}

func TestParse_ContinuationRows(t *testing.T) {
	rows := [][]string{
		{"Employee ID", "Name", "Department", "1", "2"},
		{"E001", "Alice", "Ops", "09:45", "10:05"},
		{"", "", "", "13:00", ""},
		{"", "", "", "18:30", "19:00"},
		{},
		{"E002", "Bob", "Ops", "", "09:50,18:40"},
	}

	employees, err := Parse(rows, Options{})
	require.NoError(t, err)
	require.Len(t, employees, 2)

	assert.Equal(t, []string{"09:45", "13:00", "18:30"}, employees[0].Days[0].PunchTimes)
	assert.Equal(t, []string{"10:05", "19:00"}, employees[0].Days[1].PunchTimes)
	assert.Equal(t, []string{"09:50", "18:40"}, employees[1].Days[1].PunchTimes)
}

func TestParse_CalendarWeekendsAndMonthLength(t *testing.T) {
	header := []string{"Employee ID", "Name", "Department"}
	punches := []string{"E001", "Alice", "Ops"}
	for d := 1; d <= 31; d++ {
		header = append(header, fmt.Sprintf("%02d", d))
		punches = append(punches, "09:45 18:30")
	}

	// February 2025 starts on a Saturday and has 28 days
	period := &attendance.Period{Month: 2, Year: 2025}
	employees, err := Parse([][]string{header, punches}, Options{Period: period})
	require.NoError(t, err)
	require.Len(t, employees, 1)

	days := employees[0].Days
	require.Len(t, days, 28)
	assert.True(t, days[0].IsWeekend)
	assert.True(t, days[1].IsWeekend)
	assert.False(t, days[2].IsWeekend)
	assert.Equal(t, 28, days[27].Day)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]string
		wantErr error
	}{
		{
			name:    "no header",
			rows:    [][]string{{"ID", "Name"}, {"E001", "Alice"}},
			wantErr: ErrHeaderNotFound,
		},
		{
			name:    "header without day columns",
			rows:    [][]string{{"Employee ID", "Name", "Department", "Total"}},
			wantErr: ErrHeaderNotFound,
		},
		{
			name:    "no employees",
			rows:    [][]string{{"Employee ID", "Name", "Department", "1"}, {"", "", "", "09:00"}},
			wantErr: ErrNoEmployees,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.rows, Options{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSplitPunches(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"09:45 18:30", []string{"09:45", "18:30"}},
		{"09:45;13:00,18:30", []string{"09:45", "13:00", "18:30"}},
		{"9:45 AM 6:30 PM", []string{"09:45", "18:30"}},
		{"12:10AM", []string{"00:10"}},
		{"12:30 PM", []string{"12:30"}},
		{"0.40625", []string{"09:45"}},
		{"late", []string{"late"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitPunches(tt.in))
		})
	}
}

func TestExtract_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Employee ID", "Name", "Department", "1", "2"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"E001", "Alice", "Engineering", "09:45 18:30", "OFF"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"E002", "Bob", "Engineering", "", "10:30 19:30"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	employees, err := Extract("punches.xlsx", bytes.NewReader(buf.Bytes()), Options{})
	require.NoError(t, err)
	require.Len(t, employees, 2)

	assert.Equal(t, []string{"09:45", "18:30"}, employees[0].Days[0].PunchTimes)
	assert.True(t, employees[0].Days[1].IsWeekend)
	assert.Empty(t, employees[1].Days[0].PunchTimes)
	assert.Equal(t, []string{"10:30", "19:30"}, employees[1].Days[1].PunchTimes)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	_, err := Extract("punches.csv", strings.NewReader("Employee ID,Name"), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_CorruptWorkbook(t *testing.T) {
	_, err := Extract("punches.xlsx", strings.NewReader("not a zip archive"), Options{})
	assert.Error(t, err)
}
