package outcome_test

import (
	"testing"

	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/outcome"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given raw stage and closer status pairs", t, func() {
		cases := []struct {
			stage, closer string
			want          outcome.Outcome
		}{
			{"Processing", "Home Office", outcome.HomeOffice},
			{"processing", "homeoffice", outcome.HomeOffice},
			{" PROCESSING ", "home   office", outcome.HomeOffice},
			{"Processing", "", outcome.Processing},
			{"Processing", "Home Office Pending", outcome.Processing},
			{"Lead", "Home Office", outcome.Returned},
			{"lead", "anything", outcome.Returned},
			{"Deal", "anything", outcome.Sale},
			{"DEAL", "", outcome.Sale},
			{"weird", "", outcome.Outcome("weird")},
			{"  Callback ", "", outcome.Outcome("Callback")},
			{"", "", outcome.None},
			{"   ", "Home Office", outcome.None},
		}

		Convey("Then each maps by precedence", func() {
			for _, c := range cases {
				So(outcome.Classify(c.stage, c.closer), ShouldEqual, c.want)
			}
		})
	})
}

func TestFirstName(t *testing.T) {
	Convey("Given full names", t, func() {
		So(outcome.FirstName("Jane Doe"), ShouldEqual, "Jane")
		So(outcome.FirstName("  Mozell \t Hardy "), ShouldEqual, "Mozell")
		So(outcome.FirstName("Cher"), ShouldEqual, "Cher")
		So(outcome.FirstName(""), ShouldEqual, "-")
		So(outcome.FirstName("   "), ShouldEqual, "-")
	})
}

func TestRecordKey(t *testing.T) {
	Convey("Given a record with only some fields", t, func() {
		r := model.QueueRecord{CustomerID: "C1", Time: "09:00", QualifierName: " Jane  Doe ", ProcessingStage: "Lead"}

		Convey("Then empty fields use placeholders and names are normalized", func() {
			So(outcome.RecordKey(r), ShouldEqual, "C1|09:00|JANE DOE|NOTEAM")
		})

		Convey("Then the team is upper-cased", func() {
			r.Team = "Sharks"
			So(outcome.RecordKey(r), ShouldEqual, "C1|09:00|JANE DOE|SHARKS")
		})

		Convey("Then an empty record is all placeholders", func() {
			So(outcome.RecordKey(model.QueueRecord{}), ShouldEqual, "NOID|NOTIME|NOQUAL|NOTEAM")
		})

		Convey("Then the status key appends the outcome", func() {
			So(outcome.StatusKey(outcome.RecordKey(r), outcome.Of(r)), ShouldEqual, "C1|09:00|JANE DOE|NOTEAM::Returned")
		})
	})
}

func TestColorsAndImages(t *testing.T) {
	Convey("Given outcomes and teams", t, func() {
		So(outcome.Background(outcome.Returned), ShouldEqual, "#FFC9C9")
		So(outcome.Background(outcome.HomeOffice), ShouldEqual, "#c6b1ee")
		So(outcome.Background(outcome.Sale), ShouldEqual, "#E0F2FE")
		So(outcome.RowBackground(outcome.Sale), ShouldEqual, "#E9FBEF")
		So(outcome.PillBackground(outcome.Outcome("Sale Pending")), ShouldEqual, "#BFF7C6")
		So(outcome.TeamBackground("Team Sharks"), ShouldEqual, "#FFE7B7")
		So(outcome.TeamBackground(""), ShouldEqual, "#fff")
	})

	Convey("Given an image map with mixed-case names", t, func() {
		imgs := outcome.NewImages(map[string]string{"Donovn Romario": "/a/donovan.png"}, "/a/shadow.png")

		Convey("Then lookups are case-insensitive with a fallback", func() {
			So(imgs.For("DONOVN ROMARIO"), ShouldEqual, "/a/donovan.png")
			So(imgs.For(" donovn  romario"), ShouldEqual, "/a/donovan.png")
			So(imgs.For("Unknown"), ShouldEqual, "/a/shadow.png")
		})
	})
}
