package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBounds(t *testing.T) {
	req := Request{StartDate: "2024-03-10", EndDate: "2024-03-12"}
	start, end, err := req.Bounds()
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, 2024, end.Year())
	assert.Equal(t, time.March, end.Month())
	assert.Equal(t, 12, end.Day())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 59, end.Second())

	// Same-day windows still span the whole day.
	sameDay := Request{StartDate: "2024-03-10", EndDate: "2024-03-10"}
	start, end, err = sameDay.Bounds()
	require.NoError(t, err)
	assert.True(t, end.After(start))
}

func TestDateLabel(t *testing.T) {
	assert.Equal(t, "10/03/2024", DateLabel("2024-03-10"))
	assert.Equal(t, "whatever", DateLabel("whatever"))
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name         string
		req          Request
		employeeName string
		ext          string
		want         string
	}{
		{
			name: "all employees",
			req:  Request{StartDate: "2024-03-10", EndDate: "2024-03-12"},
			ext:  "pdf",
			want: "relatorio_todos_2024-03-10_a_2024-03-12.pdf",
		},
		{
			name:         "scoped with accents",
			req:          Request{StartDate: "2024-03-10", EndDate: "2024-03-12", EmployeeID: "u1"},
			employeeName: "João Conceição",
			ext:          "pdf",
			want:         "relatorio_joao_conceicao_2024-03-10_a_2024-03-12.pdf",
		},
		{
			name: "scoped but name unknown",
			req:  Request{StartDate: "2024-03-10", EndDate: "2024-03-12", EmployeeID: "u1"},
			ext:  "csv",
			want: "relatorio_funcionario_2024-03-10_a_2024-03-12.csv",
		},
		{
			name: "missing dates",
			req:  Request{},
			ext:  "csv",
			want: "relatorio_todos_inicio_a_fim.csv",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.req, tt.employeeName, tt.ext))
		})
	}
}
