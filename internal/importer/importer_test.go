package importer_test

import (
	"bytes"
	"strings"
	"testing"

	"luckydraw/internal/importer"
	"luckydraw/internal/models"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	Convey("Given a CSV upload", t, func() {
		Convey("When the file is well formed", func() {
			res := importer.Parse("people.csv", strings.NewReader("N,Name\n1, Ann \n2,Bo\r\n3,Cy\n"))

			Convey("Then every row becomes a trimmed participant", func() {
				So(res.Errors, ShouldBeEmpty)
				So(res.Participants, ShouldResemble, []models.Participant{
					{N: 1, Name: "Ann"}, {N: 2, Name: "Bo"}, {N: 3, Name: "Cy"},
				})
			})
		})

		Convey("When the header sits below title rows", func() {
			top := importer.Parse("a.csv", strings.NewReader("N,Name\n1,Ann\n2,Bo"))
			lower := importer.Parse("a.csv", strings.NewReader("Company party,\n,\nn , NAME\n1,Ann\n2,Bo"))

			Convey("Then it parses the same as a header on the first row", func() {
				So(lower.Participants, ShouldResemble, top.Participants)
				So(lower.Errors, ShouldBeEmpty)
			})
		})

		Convey("When the header is beyond the first ten rows", func() {
			body := strings.Repeat("title\n", 10) + "N,Name\n1,Ann"
			res := importer.Parse("a.csv", strings.NewReader(body))

			Convey("Then the file is rejected with one row-0 error", func() {
				So(res.Participants, ShouldBeEmpty)
				So(len(res.Errors), ShouldEqual, 1)
				So(res.Errors[0].Row, ShouldEqual, 0)
				So(res.Errors[0].Message, ShouldContainSubstring, "N, Name")
			})
		})

		Convey("When rows are bad in different ways", func() {
			body := strings.Join([]string{
				"N,Name",
				"5,Eve",
				"x,Bad",
				"5,Eve again",
				"",
				"7,   ",
				"8",
				"9,Ivy",
			}, "\n")
			res := importer.Parse("mixed.CSV", strings.NewReader(body))

			Convey("Then the valid rows survive in order", func() {
				So(res.Participants, ShouldResemble, []models.Participant{{N: 5, Name: "Eve"}, {N: 9, Name: "Ivy"}})
			})

			Convey("Then each bad row is reported with its file row number", func() {
				So(res.Errors, ShouldResemble, []models.ImportError{
					{Row: 3, Message: "N is required and must be integer (found: x)"},
					{Row: 4, Message: "Duplicate N: 5"},
					{Row: 6, Message: "Name is required for N=7"},
					{Row: 7, Message: "Name is required for N=8"},
				})
			})

			Convey("Then participants plus errors equal the non-empty data rows", func() {
				So(len(res.Participants)+len(res.Errors), ShouldEqual, 6)
			})
		})

		Convey("When ids are negative or spreadsheet-style decimals", func() {
			res := importer.Parse("a.csv", strings.NewReader("N,Name\n-3,Neg\n4.0,Four\n4.5,Half"))

			Convey("Then integral values are accepted and fractions rejected", func() {
				So(res.Participants, ShouldResemble, []models.Participant{{N: -3, Name: "Neg"}, {N: 4, Name: "Four"}})
				So(len(res.Errors), ShouldEqual, 1)
				So(res.Errors[0].Message, ShouldEqual, "N is required and must be integer (found: 4.5)")
			})
		})

		Convey("When an id is written in exponent form", func() {
			res := importer.Parse("a.csv", strings.NewReader("N,Name\n1e3,Kilo\n2,Bo"))

			Convey("Then it is rejected rather than read as 1000", func() {
				So(res.Participants, ShouldResemble, []models.Participant{{N: 2, Name: "Bo"}})
				So(res.Errors, ShouldResemble, []models.ImportError{{Row: 2, Message: "N is required and must be integer (found: 1e3)"}})
			})
		})

		Convey("When the file starts with a UTF-8 byte order mark", func() {
			res := importer.Parse("people.csv", strings.NewReader("\ufeffN,Name\n1,Ann\n2,Bo"))

			Convey("Then the header is still found", func() {
				So(res.Errors, ShouldBeEmpty)
				So(res.Participants, ShouldResemble, []models.Participant{{N: 1, Name: "Ann"}, {N: 2, Name: "Bo"}})
			})
		})
	})
}

func TestParseUnsupported(t *testing.T) {
	Convey("Given a file with an unknown extension", t, func() {
		res := importer.Parse("people.txt", strings.NewReader("N,Name\n1,Ann"))

		Convey("Then it is rejected outright", func() {
			So(res.Participants, ShouldBeEmpty)
			So(res.Errors, ShouldResemble, []models.ImportError{{Row: 0, Message: "Unsupported file type"}})
		})
	})

	Convey("Given a corrupt spreadsheet", t, func() {
		res := importer.Parse("people.xlsx", strings.NewReader("definitely not a zip"))

		Convey("Then a single read error is reported", func() {
			So(res.Participants, ShouldBeEmpty)
			So(len(res.Errors), ShouldEqual, 1)
			So(res.Errors[0].Row, ShouldEqual, 0)
			So(res.Errors[0].Message, ShouldStartWith, "Error reading file:")
		})
	})
}

func TestParseXLSX(t *testing.T) {
	Convey("Given a spreadsheet with a title row", t, func() {
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		rows := [][]any{
			{"Year-end party"},
			{"N", "Name"},
			{1, "Ann"},
			{2, "Bo"},
			{2, "Bo twin"},
		}
		for i, row := range rows {
			cellRef, err := excelize.CoordinatesToCellName(1, i+1)
			So(err, ShouldBeNil)
			So(f.SetSheetRow(sheet, cellRef, &row), ShouldBeNil)
		}
		var buf bytes.Buffer
		So(f.Write(&buf), ShouldBeNil)

		res := importer.Parse("list.xlsx", &buf)

		Convey("Then rows are validated like CSV", func() {
			So(res.Participants, ShouldResemble, []models.Participant{{N: 1, Name: "Ann"}, {N: 2, Name: "Bo"}})
			So(res.Errors, ShouldResemble, []models.ImportError{{Row: 5, Message: "Duplicate N: 2"}})
		})
	})
}

func TestFilter(t *testing.T) {
	list := []models.Participant{{N: 12, Name: "Ann"}, {N: 3, Name: "Joanna"}, {N: 40, Name: "Bo"}}

	Convey("Given a participant list", t, func() {
		Convey("Then a name query matches case-insensitively", func() {
			So(importer.Filter(list, "ANN"), ShouldResemble, []models.Participant{{N: 12, Name: "Ann"}, {N: 3, Name: "Joanna"}})
		})
		Convey("Then a numeric query matches id substrings", func() {
			So(importer.Filter(list, "4"), ShouldResemble, []models.Participant{{N: 40, Name: "Bo"}})
		})
		Convey("Then a blank query keeps everything", func() {
			So(importer.Filter(list, "  "), ShouldResemble, list)
		})
	})
}

func TestParseXLSXNumberFormat(t *testing.T) {
	Convey("Given a spreadsheet whose N column has a thousands format", t, func() {
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		So(f.SetSheetRow(sheet, "A1", &[]any{"N", "Name"}), ShouldBeNil)
		So(f.SetSheetRow(sheet, "A2", &[]any{1234, "Ann"}), ShouldBeNil)
		So(f.SetSheetRow(sheet, "A3", &[]any{7, "Bo"}), ShouldBeNil)
		style, err := f.NewStyle(&excelize.Style{NumFmt: 4})
		So(err, ShouldBeNil)
		So(f.SetCellStyle(sheet, "A2", "A3", style), ShouldBeNil)
		var buf bytes.Buffer
		So(f.Write(&buf), ShouldBeNil)

		res := importer.Parse("list.xlsx", &buf)

		Convey("Then the raw numbers are used as ids", func() {
			So(res.Errors, ShouldBeEmpty)
			So(res.Participants, ShouldResemble, []models.Participant{{N: 1234, Name: "Ann"}, {N: 7, Name: "Bo"}})
		})
	})
}
