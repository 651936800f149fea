package entities

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateJSONRoundTrip(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}

	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(raw) != `"2026-03-15"` {
		t.Errorf("marshaled %s, want %q", raw, "2026-03-15")
	}

	var back Date
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip produced %v, want %v", back, d)
	}
}

func TestDateUnmarshalRejectsGarbage(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"15/03/2026"`), &d); err == nil {
		t.Error("expected an error for a non-ISO date")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan time.Time: %v", err)
	}
	if d.String() != "2026-03-15" {
		t.Errorf("scanned %s, want 2026-03-15", d)
	}

	if err := d.Scan([]byte("2025-12-01")); err != nil {
		t.Fatalf("Scan []byte: %v", err)
	}
	if d.String() != "2025-12-01" {
		t.Errorf("scanned %s, want 2025-12-01", d)
	}
}

func TestDateArithmetic(t *testing.T) {
	d, _ := ParseDate("2026-08-28")
	if got := d.AddDays(-30).String(); got != "2026-07-29" {
		t.Errorf("AddDays(-30) = %s, want 2026-07-29", got)
	}
	if got := d.AddDays(7).String(); got != "2026-09-04" {
		t.Errorf("AddDays(7) = %s, want 2026-09-04", got)
	}
	if !d.AddDays(-1).Before(d) {
		t.Error("yesterday should be before today")
	}
}
