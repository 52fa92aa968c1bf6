package scoring_test

import (
	"testing"

	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/outcome"
	scoring "github.com/okian/bonusboard/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApplyManualFixes(t *testing.T) {
	Convey("Given backend rows and manual fixes", t, func() {
		rows := []model.SummaryRow{
			{Qualifier: "Kevin Goncalves", SalesCount: 2, APSum: 1000},
			{Qualifier: "JOHN BARNES", SalesCount: 1, APSum: 500},
		}
		fixes := []scoring.ManualFix{
			{Qualifier: "KEVIN GONCALVES", AddSales: 1, AddAP: 816},
			{Qualifier: "MOZELL HARDY", AddSales: 1, AddAP: 1294},
			{Qualifier: "  ", AddSales: 9},
		}

		out := scoring.ApplyManualFixes(rows, fixes)

		Convey("Then existing rows are topped up and missing ones appended", func() {
			So(out, ShouldHaveLength, 3)
			So(out[0].Qualifier, ShouldEqual, "Kevin Goncalves")
			So(out[0].SalesCount.Float(), ShouldEqual, 3)
			So(out[0].APSum.Float(), ShouldEqual, 1816)
			So(out[2].Qualifier, ShouldEqual, "MOZELL HARDY")
			So(out[2].APSum.Float(), ShouldEqual, 1294)
		})

		Convey("Then the input is not modified", func() {
			So(rows[0].APSum.Float(), ShouldEqual, 1000)
		})
	})
}

func TestBuildTier(t *testing.T) {
	Convey("Given a roster and weekly rows", t, func() {
		roster := scoring.NewRoster(map[string]string{
			"Stephanie Santiago": "gold",
			"DONOVN ROMARIO":     "GOLD",
			"MOZELL HARDY":       "GOLD",
			"JAMAR STRONG":       "ROOKIE",
			"NOBODY":             "PLATINUM",
		})
		rows := []model.SummaryRow{
			{Qualifier: "Mozell Hardy", SalesCount: 2, APSum: 3000},
			{Qualifier: "STEPHANIE SANTIAGO", SalesCount: 1, APSum: 1272},
			{Qualifier: "OUTSIDER", SalesCount: 9, APSum: 90000},
		}
		images := outcome.NewImages(map[string]string{"MOZELL HARDY": "/img/mozell.png"}, "/img/shadow.png")

		Convey("When building the gold tier", func() {
			cards := scoring.BuildTier(rows, roster, scoring.Gold, 5, images)

			Convey("Then every member shows, ranked by AP", func() {
				So(cards, ShouldHaveLength, 3)
				So(cards[0].Name, ShouldEqual, "Mozell Hardy")
				So(cards[0].Rank, ShouldEqual, 1)
				So(cards[0].ImageURL, ShouldEqual, "/img/mozell.png")
				So(cards[1].Key, ShouldEqual, "STEPHANIE SANTIAGO")
				So(cards[2].Key, ShouldEqual, "DONOVN ROMARIO")
				So(cards[2].AP, ShouldEqual, 0)
				So(cards[2].ImageURL, ShouldEqual, "/img/shadow.png")
			})
		})

		Convey("When the limit is smaller than the roster", func() {
			cards := scoring.BuildTier(rows, roster, scoring.Gold, 2, images)
			So(cards, ShouldHaveLength, 2)
			So(cards[1].Rank, ShouldEqual, 2)
		})

		Convey("Then unknown tiers are dropped from the roster", func() {
			So(roster, ShouldNotContainKey, "NOBODY")
			So(scoring.Prize(scoring.Gold), ShouldEqual, 300)
			So(scoring.Prize(scoring.Rookie), ShouldEqual, 50)
			So(scoring.DefaultLimits[scoring.Bronze], ShouldEqual, 6)
		})
	})
}

func TestTopGuns(t *testing.T) {
	Convey("Given summary rows", t, func() {
		rows := []model.SummaryRow{
			{Qualifier: "A", SalesCount: 1, APSum: 1500},
			{Qualifier: "B", SalesCount: 3, APSum: 4500},
			{Qualifier: "C", SalesCount: 0, APSum: 0},
		}

		Convey("When ranking with a limit", func() {
			players := scoring.TopGuns(rows, 2, nil)

			Convey("Then the top AP rows come first with OVR", func() {
				So(players, ShouldHaveLength, 2)
				So(players[0].Qualifier, ShouldEqual, "B")
				So(players[0].OVR, ShouldEqual, 35)
				So(players[1].OVR, ShouldEqual, 12)
				So(players[1].Rank, ShouldEqual, 2)
			})
		})

		Convey("Then OVR rounds half away from zero", func() {
			So(scoring.OVR(1, 500), ShouldEqual, 11)
			So(scoring.OVR(0, 0), ShouldEqual, 0)
		})
	})
}

func TestDashboard(t *testing.T) {
	Convey("Given dashboard rows", t, func() {
		rows := []model.SummaryRow{
			{Qualifier: "A", APSum: 100}, {Qualifier: "B", APSum: 50}, {Qualifier: "C", APSum: 25}, {Qualifier: "D", APSum: 5},
		}

		Convey("Then totals cover all rows and medals the first three", func() {
			So(scoring.TotalAP(rows), ShouldEqual, 180)
			top := scoring.DashboardRows(rows, 3, nil)
			So(top, ShouldHaveLength, 3)
			So(top[0].Medal, ShouldNotBeEmpty)
			So(top[2].Medal, ShouldNotBeEmpty)
			So(scoring.Medal(4), ShouldEqual, "")
		})
	})

	Convey("Given a queue snapshot", t, func() {
		rows := []model.QueueRecord{
			{ProcessingStage: "Deal"},
			{ProcessingStage: "Lead"},
			{ProcessingStage: "Processing"},
			{ProcessingStage: "Processing", CloserStatus: "Home Office"},
			{ProcessingStage: "Callback"},
		}
		c := scoring.CountOutcomes(rows)
		So(c, ShouldResemble, scoring.QueueCounts{Total: 5, Sale: 1, Processing: 1, Returned: 1, HomeOffice: 1})
	})
}
