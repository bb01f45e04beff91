package flows

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleImports = "freq,nace_r2,c_exp,unit,geo\\TIME_PERIOD\t2019\t2020\n" +
	"A,B01,EXP_GO,MIO_EUR,AT\t100.5\t200.5\n" +
	"A,B02,EXP_GO,MIO_EUR,BE\t150.3\t250.3\n" +
	"A,B03,EXP_GO,MIO_EUR,DE\t0.0\t0.0\n" +
	"A,B04,EXP_GO,MIO_EUR,FR\t:\t:\n"

func writeTSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDecode(t *testing.T) {
	path := writeTSV(t, "imports.tsv", sampleImports)

	table, err := Decode(path)
	require.NoError(t, err)

	assert.Equal(t, path, table.Path())
	assert.Equal(t, 4, table.Len())
	assert.Equal(t, []string{"2019", "2020"}, table.YearLabels())
	assert.Equal(t, Metadata{Freq: "A", NaceR2: "B01", CExp: "EXP_GO", Unit: "MIO_EUR", Geo: "AT"}, table.Row(0))

	nace, ok := table.Field("nace_r2")
	require.True(t, ok)
	assert.Equal(t, []string{"B01", "B02", "B03", "B04"}, nace)

	geo, ok := table.Field("geo")
	require.True(t, ok)
	assert.Equal(t, []string{"AT", "BE", "DE", "FR"}, geo)

	_, ok = table.Field("TIME_PERIOD")
	assert.False(t, ok)

	values, ok := table.Column("2019")
	require.True(t, ok)
	require.Len(t, values, 4)
	assert.Equal(t, 100.5, values[0])
	assert.Equal(t, 150.3, values[1])
	assert.Equal(t, 0.0, values[2])
	assert.True(t, math.IsNaN(values[3]))
}

func TestDecodeReader_Metadata(t *testing.T) {
	tests := []struct {
		name      string
		composite string
		want      Metadata
	}{
		{
			name:      "five fields",
			composite: "A,C10-12,EXP_GO,MIO_EUR,IT",
			want:      Metadata{Freq: "A", NaceR2: "C10-12", CExp: "EXP_GO", Unit: "MIO_EUR", Geo: "IT"},
		},
		{
			name:      "short composite",
			composite: "invalid,data",
			want:      Metadata{Freq: "invalid", NaceR2: "data"},
		},
		{
			name:      "extra tokens ignored",
			composite: "A,B,C,D,E,F,G",
			want:      Metadata{Freq: "A", NaceR2: "B", CExp: "C", Unit: "D", Geo: "E"},
		},
		{
			name:      "empty composite",
			composite: "",
			want:      Metadata{},
		},
		{
			name:      "empty tokens kept positional",
			composite: "A,,EXP_GO",
			want:      Metadata{Freq: "A", CExp: "EXP_GO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "meta\t2020\n" + tt.composite + "\t1\n"
			table, err := DecodeReader(strings.NewReader(input))
			require.NoError(t, err)
			require.Equal(t, 1, table.Len())
			assert.Equal(t, tt.want, table.Row(0))
		})
	}
}

func TestDecodeReader_MetadataRoundTrip(t *testing.T) {
	composites := []string{
		"A,B01,EXP_GO,MIO_EUR,AT",
		"A,TOTAL,IMP_GO,MIO_EUR,EU27_2020",
		"A,B,C,D,E,F",
		"Q,C10-C12,,MIO_NAC,DE,extra,more",
	}

	var b strings.Builder
	b.WriteString("meta\t2020\n")
	for _, composite := range composites {
		b.WriteString(composite + "\t1\n")
	}

	table, err := DecodeReader(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Equal(t, len(composites), table.Len())

	for i, composite := range composites {
		tokens := strings.Split(composite, ",")
		want := strings.Join(tokens[:5], ",")
		assert.Equal(t, want, strings.Join(table.Row(i).Fields(), ","))
	}
}

func TestDecodeReader_ValueCoercion(t *testing.T) {
	input := "meta\t2020\n" +
		"A,R1,C,U,G\t42\n" +
		"A,R2,C,U,G\tNA\n" +
		"A,R3,C,U,G\t:\n" +
		"A,R4,C,U,G\t12.5 p\n" +
		"A,R5,C,U,G\t\n" +
		"A,R6,C,U,G\t 7.25 \n" +
		"A,R7,C,U,G\t-3e2\n" +
		"A,R8,C,U,G\n"

	table, err := DecodeReader(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 8, table.Len())

	values, ok := table.Column("2020")
	require.True(t, ok)

	assert.Equal(t, 42.0, values[0])
	assert.True(t, math.IsNaN(values[1]), "NA marker")
	assert.True(t, math.IsNaN(values[2]), "colon marker")
	assert.True(t, math.IsNaN(values[3]), "flagged value")
	assert.True(t, math.IsNaN(values[4]), "empty cell")
	assert.Equal(t, 7.25, values[5])
	assert.Equal(t, -300.0, values[6])
	assert.True(t, math.IsNaN(values[7]), "short row")
}

func TestDecodeReader_HeaderOnly(t *testing.T) {
	table, err := DecodeReader(strings.NewReader("meta\t2019\t2020\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, table.Len())
	assert.Equal(t, []string{"2019", "2020"}, table.YearLabels())

	values, ok := table.Column("2020")
	require.True(t, ok)
	assert.Empty(t, values)
}

func TestDecodeReader_SingleColumn(t *testing.T) {
	table, err := DecodeReader(strings.NewReader("meta\nA,B,C,D,E\nA,F\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Empty(t, table.YearLabels())
	assert.Empty(t, table.Years())
	assert.Equal(t, "F", table.Row(1).NaceR2)
}

func TestDecodeReader_TrimsYearLabels(t *testing.T) {
	table, err := DecodeReader(strings.NewReader("meta\t2019 \t 2020\nA,B,C,D,E\t1\t2\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2019", "2020"}, table.YearLabels())
	values, ok := table.Column("2020")
	require.True(t, ok)
	assert.Equal(t, []float64{2}, values)
}

func TestTable_Years(t *testing.T) {
	table, err := DecodeReader(strings.NewReader("meta\t2021\t2019\tnotes\t2020\n"))
	require.NoError(t, err)

	assert.Equal(t, []int{2019, 2020, 2021}, table.Years())
}

func TestTable_ColumnReturnsCopy(t *testing.T) {
	table, err := DecodeReader(strings.NewReader("meta\t2020\nA,B,C,D,E\t5\n"))
	require.NoError(t, err)

	values, ok := table.Column("2020")
	require.True(t, ok)
	values[0] = 99

	again, _ := table.Column("2020")
	assert.Equal(t, 5.0, again[0])

	_, ok = table.Column("1999")
	assert.False(t, ok)
}

func TestDecode_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.tsv")

		table, err := Decode(path)
		assert.Nil(t, table)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIO))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
		assert.False(t, errors.Is(err, ErrMalformedTable))
		assert.Contains(t, err.Error(), path)
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeTSV(t, "empty.tsv", "")

		table, err := Decode(path)
		assert.Nil(t, table)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedTable))
		assert.Contains(t, err.Error(), "file is empty")
		assert.Contains(t, err.Error(), path)

		var flowErr *Error
		require.True(t, errors.As(err, &flowErr))
		assert.Equal(t, KindMalformedTable, flowErr.Kind)
		assert.Equal(t, path, flowErr.Path)
	})

	t.Run("blank lines only", func(t *testing.T) {
		_, err := DecodeReader(strings.NewReader("\n\n"))
		assert.True(t, errors.Is(err, ErrMalformedTable))
	})

	t.Run("read failure", func(t *testing.T) {
		_, err := DecodeReader(iotest.ErrReader(errors.New("disk gone")))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIO))
		assert.Contains(t, err.Error(), "disk gone")
	})
}
