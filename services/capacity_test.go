package services

import (
	"testing"
	"time"

	"steelops/testhelpers"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekWindows(t *testing.T) {
	tests := []struct {
		name        string
		ref         time.Time
		n           int
		expectFirst time.Time
	}{
		{"monday stays put", date(2025, time.January, 6), 4, date(2025, time.January, 6)},
		{"wednesday snaps back to monday", date(2025, time.January, 8), 4, date(2025, time.January, 6)},
		{"sunday snaps back to monday", date(2025, time.January, 12), 4, date(2025, time.January, 6)},
		{"midweek with time of day", time.Date(2025, time.March, 20, 14, 30, 0, 0, time.UTC), 2, date(2025, time.March, 17)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekWindows(tt.ref, tt.n)
			if len(got) != tt.n {
				t.Fatalf("WeekWindows returned %d windows, want %d", len(got), tt.n)
			}
			if !got[0].Equal(tt.expectFirst) {
				t.Errorf("first window = %v, want %v", got[0], tt.expectFirst)
			}
			for i := 1; i < len(got); i++ {
				if diff := got[i].Sub(got[i-1]); diff != 7*24*time.Hour {
					t.Errorf("window %d is %v after window %d, want 168h", i, diff, i-1)
				}
				if got[i].Weekday() != time.Monday {
					t.Errorf("window %d = %v, not a Monday", i, got[i])
				}
			}
		})
	}
}

func TestDistributeLoad(t *testing.T) {
	windows := WeekWindows(date(2025, time.January, 6), 5)

	t.Run("four week span spreads evenly", func(t *testing.T) {
		effort := DepartmentEffort{
			Department: "production",
			Hours:      400,
			Start:      date(2025, time.January, 6),
			End:        date(2025, time.February, 3),
		}
		got := DistributeLoad(effort, windows)
		for i := 0; i < 4; i++ {
			if got[i] != 100 {
				t.Errorf("week %d load = %v, want 100", i, got[i])
			}
		}
		if got[4] != 0 {
			t.Errorf("week 4 load = %v, want 0 (fully after end)", got[4])
		}
	})

	t.Run("completed effort contributes nothing", func(t *testing.T) {
		effort := DepartmentEffort{
			Department: "production",
			Hours:      400,
			Start:      date(2025, time.January, 6),
			End:        date(2025, time.February, 3),
			Completed:  true,
		}
		got := DistributeLoad(effort, windows)
		for i, h := range got {
			if h != 0 {
				t.Errorf("week %d load = %v, want 0 for completed effort", i, h)
			}
		}
	})

	t.Run("missing dates contribute nothing", func(t *testing.T) {
		effort := DepartmentEffort{Department: "design", Hours: 40}
		got := DistributeLoad(effort, windows)
		for i, h := range got {
			if h != 0 {
				t.Errorf("week %d load = %v, want 0 when dates missing", i, h)
			}
		}
	})

	t.Run("sub week span lands in one bucket", func(t *testing.T) {
		effort := DepartmentEffort{
			Department: "design",
			Hours:      30,
			Start:      date(2025, time.January, 7),
			End:        date(2025, time.January, 9),
		}
		got := DistributeLoad(effort, windows)
		if got[0] != 30 {
			t.Errorf("week 0 load = %v, want all 30 hours", got[0])
		}
		for i := 1; i < len(got); i++ {
			if got[i] != 0 {
				t.Errorf("week %d load = %v, want 0", i, got[i])
			}
		}
	})

	t.Run("span starting before window still lands", func(t *testing.T) {
		effort := DepartmentEffort{
			Department: "ops",
			Hours:      200,
			Start:      date(2024, time.December, 23),
			End:        date(2025, time.January, 20),
		}
		got := DistributeLoad(effort, windows)
		// 28 day span = 4 weeks at 50h; only the last 2 weeks overlap the window.
		if got[0] != 50 || got[1] != 50 {
			t.Errorf("weeks 0-1 load = %v/%v, want 50/50", got[0], got[1])
		}
		if got[2] != 0 {
			t.Errorf("week 2 load = %v, want 0", got[2])
		}
	})
}

func TestUtilisation(t *testing.T) {
	tests := []struct {
		name     string
		load     float64
		capacity float64
		expect   float64
	}{
		{"half loaded", 50, 100, 50},
		{"fully loaded", 100, 100, 100},
		{"overloaded", 150, 100, 150},
		{"zero capacity yields zero", 120, 0, 0},
		{"zero load", 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Utilisation(tt.load, tt.capacity)
			if got != tt.expect {
				t.Errorf("Utilisation(%v, %v) = %v, want %v",
					tt.load, tt.capacity, got, tt.expect)
			}
		})
	}
}

func TestSummarizeNext4Weeks(t *testing.T) {
	weeks := []WeekBucket{
		{LoadHours: 100},
		{LoadHours: 50},
		{LoadHours: 150},
		{LoadHours: 100},
		{LoadHours: 999}, // fifth week must be ignored
	}
	got := SummarizeNext4Weeks(weeks, 100)
	if got != 100 {
		t.Errorf("SummarizeNext4Weeks = %v, want 100", got)
	}

	if got := SummarizeNext4Weeks(weeks[:2], 100); got != 37.5 {
		t.Errorf("SummarizeNext4Weeks with 2 buckets = %v, want 37.5", got)
	}

	if got := SummarizeNext4Weeks(weeks, 0); got != 0 {
		t.Errorf("SummarizeNext4Weeks with zero capacity = %v, want 0", got)
	}
}

func TestBuildHeatmap(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestCapacity(t, app, "production", 400, 10)
	testhelpers.CreateTestCapacity(t, app, "design", 120, 3)

	project := testhelpers.CreateTestProject(t, app, "Mezzanine Floor")
	testhelpers.CreateTestProduct(t, app, project.Id, "Main frame", "production",
		400, date(2025, time.January, 6), date(2025, time.February, 3))

	// Scheduled but unestimated: dates present, hours missing.
	testhelpers.CreateTestProduct(t, app, project.Id, "Handrails", "design",
		0, date(2025, time.January, 6), date(2025, time.January, 13))

	hm, err := BuildHeatmap(app, date(2025, time.January, 6), 5)
	if err != nil {
		t.Fatalf("BuildHeatmap failed: %v", err)
	}

	if len(hm.WeekStarts) != 5 {
		t.Fatalf("got %d week starts, want 5", len(hm.WeekStarts))
	}
	if len(hm.Departments) != len(Departments) {
		t.Fatalf("got %d department rows, want %d", len(hm.Departments), len(Departments))
	}

	var production *DepartmentHeatmap
	for i := range hm.Departments {
		if hm.Departments[i].Department == "production" {
			production = &hm.Departments[i]
		}
	}
	if production == nil {
		t.Fatal("no production row in heatmap")
	}
	if production.CapacityPerWeek != 400 {
		t.Errorf("production capacity = %v, want 400", production.CapacityPerWeek)
	}
	for i := 0; i < 4; i++ {
		if production.Weeks[i].LoadHours != 100 {
			t.Errorf("production week %d load = %v, want 100", i, production.Weeks[i].LoadHours)
		}
		if production.Weeks[i].Utilisation != 25 {
			t.Errorf("production week %d utilisation = %v, want 25", i, production.Weeks[i].Utilisation)
		}
		if len(production.Weeks[i].ProductIDs) != 1 {
			t.Errorf("production week %d has %d products, want 1", i, len(production.Weeks[i].ProductIDs))
		}
	}
	if production.Weeks[4].LoadHours != 0 {
		t.Errorf("production week 4 load = %v, want 0", production.Weeks[4].LoadHours)
	}
	if production.Next4Utilisation != 25 {
		t.Errorf("production Next4Utilisation = %v, want 25", production.Next4Utilisation)
	}

	if len(hm.Unestimated) != 1 {
		t.Fatalf("got %d unestimated products, want 1", len(hm.Unestimated))
	}
	if hm.Unestimated[0].ProductName != "Handrails" || hm.Unestimated[0].Department != "design" {
		t.Errorf("unexpected unestimated entry: %+v", hm.Unestimated[0])
	}
}

func TestBuildHeatmapExcludesCompletedAndInactive(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestCapacity(t, app, "production", 400, 10)

	active := testhelpers.CreateTestProject(t, app, "Active Job")
	done := testhelpers.CreateTestProduct(t, app, active.Id, "Finished frame", "production",
		200, date(2025, time.January, 6), date(2025, time.January, 20))
	done.Set("production_completed", "2025-01-21")
	if err := app.Save(done); err != nil {
		t.Fatalf("failed to mark product completed: %v", err)
	}

	onHold := testhelpers.CreateTestProject(t, app, "Paused Job")
	onHold.Set("status", "on_hold")
	if err := app.Save(onHold); err != nil {
		t.Fatalf("failed to pause project: %v", err)
	}
	testhelpers.CreateTestProduct(t, app, onHold.Id, "Paused frame", "production",
		300, date(2025, time.January, 6), date(2025, time.January, 20))

	hm, err := BuildHeatmap(app, date(2025, time.January, 6), 4)
	if err != nil {
		t.Fatalf("BuildHeatmap failed: %v", err)
	}

	for _, row := range hm.Departments {
		for i, w := range row.Weeks {
			if w.LoadHours != 0 {
				t.Errorf("%s week %d load = %v, want 0 (all efforts excluded)",
					row.Department, i, w.LoadHours)
			}
		}
	}
	if len(hm.Unestimated) != 0 {
		t.Errorf("got %d unestimated products, want 0", len(hm.Unestimated))
	}
}
