package core

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestParseSource(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tests := []struct {
		def    string
		want    string
		wantErr error
	}{
		{def: "data/Factbook_CAM.csv", want: "data/Factbook_CAM.csv"},
		{def: " data/Brands.XLSX ", want: "data/Brands.XLSX"},
		{def: "data/Brands.xlsx#Peru", want: "data/Brands.xlsx#Peru"},
		{def: "pg:crm.pipeline", want: "pg:crm.pipeline"},
		{def: "pg:pipeline", want: "pg:public.pipeline"},
		{def: "pg:.pipeline", wantErr: ErrUnsupportedSource},
		{def: "data/file.json", wantErr: ErrUnsupportedSource},
		{def: "", wantErr: ErrUnsupportedSource},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			src, err := ParseSource(tt.def, mock)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, src.Name())
		})
	}
}

func TestParseSource_PostgresWithoutDatabase(t *testing.T) {
	_, err := ParseSource("pg:public.brands", nil)
	assert.ErrorIs(t, err, ErrDatabaseNotConfigured)
	assert.Equal(t, "DATA003", MapError(err).Code)
}

func TestUsesPostgres(t *testing.T) {
	assert.True(t, UsesPostgres("a.csv", " pg:public.x"))
	assert.False(t, UsesPostgres("a.csv", "b.xlsx#pg:"))
	assert.False(t, UsesPostgres())
}

func TestReadCSV(t *testing.T) {
	input := "\xEF\xBB\xBF,MARCA,País\n0,Brand A,Guatemala\n1,\"Brand, Inc\"\n\n2,Brand C,Perú,extra\n"

	raw, err := ReadCSV(context.Background(), "inline", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "inline", raw.Source)
	assert.Equal(t, []string{"Unnamed: 0", "MARCA", "País"}, raw.Header)
	require.Len(t, raw.Rows, 3)
	assert.Equal(t, []string{"1", "Brand, Inc"}, raw.Rows[1])
	assert.Equal(t, []string{"2", "Brand C", "Perú", "extra"}, raw.Rows[2])
}

func TestReadCSV_Empty(t *testing.T) {
	raw, err := ReadCSV(context.Background(), "empty", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, raw.Header)
	assert.Empty(t, raw.Rows)
}

func TestCSVSource_InvalidUTF8Replaced(t *testing.T) {
	body := "MARCA,Notes\nhe\x80lo,x\n"
	for name, content := range map[string]string{
		"plain":    body,
		"utf8 bom": "\xEF\xBB\xBF" + body,
	} {
		t.Run(name, func(t *testing.T) {
			src := &CSVSource{Path: writeFile(t, t.TempDir(), "data.csv", content)}

			raw, err := src.Read(context.Background())
			require.NoError(t, err)

			assert.Equal(t, []string{"MARCA", "Notes"}, raw.Header)
			require.Len(t, raw.Rows, 1)
			assert.Equal(t, "he\uFFFDlo", raw.Rows[0][0])
			assert.True(t, utf8.ValidString(raw.Rows[0][0]))
		})
	}
}

func TestCSVSource_NotFound(t *testing.T) {
	src := &CSVSource{Path: filepath.Join(t.TempDir(), "missing.csv")}
	_, err := src.Read(context.Background())
	assert.ErrorIs(t, err, ErrSourceNotFound)
	assert.Equal(t, "DATA001", MapError(err).Code)
}

func TestXLSXSource_MatchesCSV(t *testing.T) {
	rows := [][]string{
		{"", "MARCA", "EMPRESA", "País", "Categoría", "Score según matriz"},
		{"0", "Brand A (Owner Co)", "Owner Co", "Guatemala", "Snacks", "8"},
		{"1", "Brand B", "", "Honduras", "Beverages", ""},
	}
	path := createTestXLSX(t, map[string][][]string{"CAM": rows})

	fromXLSX, err := (&XLSXSource{Path: path}).Read(context.Background())
	require.NoError(t, err)

	fromCSV, err := ReadCSV(context.Background(), "inline", strings.NewReader(factbookCAM))
	require.NoError(t, err)

	assert.Equal(t, fromCSV.Header, fromXLSX.Header)

	// Compare as tables so trailing empty cells do not matter.
	want := Concat(KindFactbook, []*RawTable{fromCSV})
	got := Concat(KindFactbook, []*RawTable{fromXLSX})
	assert.Equal(t, recordRows(want.Columns, want.Records), recordRows(got.Columns, got.Records))
}

func TestXLSXSource_Sheets(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Peru": {{"MARCA"}, {"Inca Cola"}, {""}},
	})

	raw, err := (&XLSXSource{Path: path, Sheet: "Peru"}).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, path+"#Peru", raw.Source)
	assert.Equal(t, [][]string{{"Inca Cola"}}, raw.Rows, "blank rows skipped")

	raw, err = (&XLSXSource{Path: path, Sheet: "0"}).Read(context.Background())
	require.NoError(t, err)
	assert.Len(t, raw.Rows, 1)

	_, err = (&XLSXSource{Path: path, Sheet: "Missing"}).Read(context.Background())
	assert.ErrorIs(t, err, ErrSheetNotFound)
	assert.Equal(t, "DATA004", MapError(err).Code)
}

func TestXLSXSource_NotFound(t *testing.T) {
	_, err := (&XLSXSource{Path: filepath.Join(t.TempDir(), "none.xlsx")}).Read(context.Background())
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestPostgresSource_Read(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "crm"."pipeline"`)).
		WillReturnRows(pgxmock.NewRows([]string{"Name", "Notes", "Tags", "Deals"}).
			AddRow("Owner Co", "Owns Brand A", nil, int64(2)).
			AddRow("Zeta", nil, " snacks ", int64(0)))

	src := &PostgresSource{DB: mock, Schema: "crm", Table: "pipeline"}
	raw, err := src.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "pg:crm.pipeline", raw.Source)
	assert.Equal(t, []string{"Name", "Notes", "Tags", "Deals"}, raw.Header)
	assert.Equal(t, [][]string{
		{"Owner Co", "Owns Brand A", "", "2"},
		{"Zeta", "", " snacks ", "0"},
	}, raw.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	src := &PostgresSource{DB: mock, Schema: "public", Table: "missing"}
	_, err = src.Read(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query pg:public.missing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_QuotesIdentifiers(t *testing.T) {
	src := &PostgresSource{Schema: "public", Table: `bad"; DROP TABLE x; --`}
	assert.Equal(t, `SELECT * FROM "public"."bad""; DROP TABLE x; --"`, src.Query())
}
