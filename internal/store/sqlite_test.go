package store

import (
	"testing"
	"time"

	"github.com/sunshinelabs/sunshined/internal/weather"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func dateAt(day int) int64 {
	return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC).Unix()
}

func sampleDay(day int) weather.WeatherDay {
	return weather.WeatherDay{
		Date:          dateAt(day),
		ConditionID:   800,
		MinTemp:       10,
		MaxTemp:       20,
		Humidity:      40,
		Pressure:      1012,
		WindSpeed:     3.1,
		WindDirection: 90,
	}
}

func TestUpsertRoundTrip(t *testing.T) {
	s := openTestStore(t)

	// Insert out of order; reads must come back ascending by date.
	days := []weather.WeatherDay{sampleDay(16), sampleDay(14), sampleDay(15)}
	n, err := s.Upsert(days)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows written, got %d", n)
	}

	rows, err := s.RowsFrom(dateAt(14))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Date >= rows[i].Date {
			t.Fatalf("rows not ascending by date: %d then %d", rows[i-1].Date, rows[i].Date)
		}
	}
}

func TestUpsertReplacesExistingDate(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Upsert([]weather.WeatherDay{sampleDay(14)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idBefore, err := s.IDForDate(dateAt(14))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	replacement := weather.WeatherDay{
		Date:          dateAt(14),
		ConditionID:   500,
		MinTemp:       -2,
		MaxTemp:       4,
		Humidity:      90,
		Pressure:      990,
		WindSpeed:     12.5,
		WindDirection: 270,
	}
	if _, err := s.Upsert([]weather.WeatherDay{replacement}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := s.RowsFrom(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("upsert of existing date must not grow the table, got %d rows", len(rows))
	}
	if rows[0] != replacement {
		t.Fatalf("expected all non-key fields replaced, got %+v", rows[0])
	}

	idAfter, err := s.IDForDate(dateAt(14))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idBefore != idAfter {
		t.Fatalf("replaced row must keep its id: %d != %d", idBefore, idAfter)
	}
}

func TestRowsFromFiltersByDate(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Upsert([]weather.WeatherDay{sampleDay(13), sampleDay(14), sampleDay(15)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := s.RowsFrom(dateAt(14))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows from %d, got %d", dateAt(14), len(rows))
	}
	if rows[0].Date != dateAt(14) || rows[1].Date != dateAt(15) {
		t.Fatalf("unexpected dates: %d, %d", rows[0].Date, rows[1].Date)
	}
}

func TestRowsFromEmptyStore(t *testing.T) {
	s := openTestStore(t)

	rows, err := s.RowsFrom(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestIDsNeverReusedAfterClear(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Upsert([]weather.WeatherDay{sampleDay(14)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idBefore, err := s.IDForDate(dateAt(14))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, _ := s.RowsFrom(0)
	if len(rows) != 0 {
		t.Fatalf("expected empty store after clear, got %d rows", len(rows))
	}

	if _, err := s.Upsert([]weather.WeatherDay{sampleDay(15)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idAfter, err := s.IDForDate(dateAt(15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idAfter <= idBefore {
		t.Fatalf("id %d reused after clear (previous max %d)", idAfter, idBefore)
	}
}
