package product

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/security"
)

func validInput() Input {
	return Input{
		Name:       "Water quality dashboard",
		Type:       TypeDashboard,
		Status:     StatusActive,
		Visibility: security.VisibilityPublic,
		URL:        "https://bi.example.com/quality",
		Tags:       []string{"Calidad"},
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, apperror.CodeValidation, appErr.Code)
	return appErr.Details["fields"].(map[string]string)
}

func TestInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"missing name", func(in *Input) { in.Name = "  " }, "name"},
		{"long name", func(in *Input) { in.Name = strings.Repeat("a", 201) }, "name"},
		{"bad type", func(in *Input) { in.Type = "CHART" }, "type"},
		{"bad status", func(in *Input) { in.Status = "LIVE" }, "status"},
		{"bad visibility", func(in *Input) { in.Visibility = "SECRET" }, "visibility"},
		{"relative url", func(in *Input) { in.URL = "/reports/1" }, "url"},
		{"ftp url", func(in *Input) { in.URL = "ftp://files.example.com" }, "url"},
		{"long description", func(in *Input) { in.Description = strings.Repeat("d", 2001) }, "description"},
		{"long owner", func(in *Input) { in.Owner = strings.Repeat("o", 101) }, "owner"},
		{"long period", func(in *Input) { in.Period = strings.Repeat("p", 51) }, "period"},
		{"long source", func(in *Input) { in.Source = strings.Repeat("s", 201) }, "source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			fields := fieldErrors(t, in.Validate())
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestInput_Validate_Accepts(t *testing.T) {
	in := validInput()
	require.NoError(t, in.Validate())

	in.URL = ""
	in.Name = strings.Repeat("n", 200)
	in.Period = strings.Repeat("p", 50)
	assert.NoError(t, in.Validate())
}

func TestInput_TagSet(t *testing.T) {
	in := Input{Tags: []string{" Tarifas", "Calidad", "Tarifas", "", "  "}}
	assert.Equal(t, []string{"Tarifas", "Calidad"}, in.TagSet())
}

func TestInput_ApplyStoresEmptyAsNull(t *testing.T) {
	p := &Product{}
	in := validInput()
	in.URL = ""
	in.EPS = "SEDAPAL"
	in.apply(p)

	assert.Nil(t, p.URL)
	assert.Nil(t, p.Description)
	require.NotNil(t, p.EPS)
	assert.Equal(t, "SEDAPAL", *p.EPS)
}

func TestListFilter_NormalizeAndValidate(t *testing.T) {
	f := ListFilter{EPS: " sedapal ", Tags: []string{"a", " ", "b"}}
	f.Normalize()

	assert.Equal(t, "SEDAPAL", f.EPS)
	assert.Equal(t, []string{"a", "b"}, f.Tags)
	assert.Equal(t, SortUpdatedAt, f.SortBy)
	assert.Equal(t, SortDesc, f.SortOrder)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)
	require.NoError(t, f.Validate())

	f.SortBy = "owner"
	f.PageSize = 500
	fields := fieldErrors(t, f.Validate())
	assert.Contains(t, fields, "sortBy")
	assert.Contains(t, fields, "pageSize")
}
