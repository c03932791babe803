package timeofday

import (
	"errors"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  TimeOfDay
	}{
		{name: "bare time", input: "06:08:42", want: New(6, 8, 42)},
		{name: "bare time without seconds", input: "09:30", want: New(9, 30, 0)},
		{name: "single digit hour", input: "9:30", want: New(9, 30, 0)},
		{name: "surrounding whitespace", input: "  14:00:00 ", want: New(14, 0, 0)},
		{name: "utc datetime", input: "1970-01-01T06:08:42Z", want: New(6, 8, 42)},
		{name: "naive datetime", input: "2024-03-14T10:15:00", want: New(10, 15, 0)},
		{name: "space separated datetime", input: "2024-03-14 10:15:00", want: New(10, 15, 0)},
		{name: "datetime with offset keeps wall clock", input: "2024-03-14T10:15:00+05:30", want: New(10, 15, 0)},
		{name: "datetime with compact offset", input: "2024-03-14T10:15:00-0800", want: New(10, 15, 0)},
		{name: "datetime with hour offset", input: "2024-03-14 10:15:00+00", want: New(10, 15, 0)},
		{name: "fractional seconds", input: "2024-03-14T10:15:00.250Z", want: New(10, 15, 0) + TimeOfDay(250*time.Millisecond)},
		{name: "time with offset", input: "06:08:42+02:00", want: New(6, 8, 42)},
		{name: "time value", input: time.Date(2024, 3, 14, 11, 45, 0, 0, time.FixedZone("X", 3600)), want: New(11, 45, 0)},
		{name: "time pointer", input: ptr(time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)), want: New(8, 0, 0)},
		{name: "time of day passthrough", input: New(7, 0, 0), want: New(7, 0, 0)},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tc.input)
			if err != nil {
				t.Fatalf("Normalize(%v) returned error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%v) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalize_RejectsMalformedInput(t *testing.T) {
	t.Parallel()

	inputs := []any{
		"notatime",
		"",
		"25:00:00",
		"12:61",
		"2024-03-14",
		"2024-13-01T10:00:00Z",
		"yesterday at noon",
		42,
		nil,
		time.Time{},
		(*time.Time)(nil),
	}

	for _, input := range inputs {
		_, err := Normalize(input)
		if !errors.Is(err, ErrMalformedTimeValue) {
			t.Fatalf("Normalize(%#v) error = %v, want ErrMalformedTimeValue", input, err)
		}
		var mErr *MalformedTimeError
		if !errors.As(err, &mErr) {
			t.Fatalf("Normalize(%#v) error = %T, want *MalformedTimeError", input, err)
		}
	}
}

func TestNormalize_BareAndUTCFormsAgree(t *testing.T) {
	t.Parallel()

	bare, err := Normalize("06:08:42")
	if err != nil {
		t.Fatalf("bare: %v", err)
	}
	stamped, err := Normalize("1970-01-01T06:08:42Z")
	if err != nil {
		t.Fatalf("stamped: %v", err)
	}
	if !bare.Equal(stamped) {
		t.Fatalf("expected %s to equal %s", bare, stamped)
	}
}

func TestNormalize_DiscardsOffsetWithoutConversion(t *testing.T) {
	t.Parallel()

	// Same instant, different offsets: the wall clocks differ and so do the results.
	utc := MustParse("2024-03-14T09:00:00Z")
	ist := MustParse("2024-03-14T14:30:00+05:30")
	if utc.Equal(ist) {
		t.Fatalf("expected offsets to be discarded, got equal values %s", utc)
	}

	// Different instants, same wall clock: the results are equal.
	a := MustParse("2024-03-14T09:00:00+01:00")
	b := MustParse("2024-03-14T09:00:00-05:00")
	if !a.Equal(b) {
		t.Fatalf("expected %s to equal %s", a, b)
	}
}

func TestTimeOfDay_String(t *testing.T) {
	t.Parallel()

	if got := New(9, 5, 7).String(); got != "09:05:07" {
		t.Fatalf("unexpected format %q", got)
	}
	withFraction := New(9, 5, 7) + TimeOfDay(500*time.Millisecond)
	if got := withFraction.String(); got != "09:05:07.5" {
		t.Fatalf("unexpected fractional format %q", got)
	}
}

func TestTimeOfDay_Compare(t *testing.T) {
	t.Parallel()

	early, late := New(9, 0, 0), New(10, 0, 0)
	if early.Compare(late) != -1 || late.Compare(early) != 1 || early.Compare(early) != 0 {
		t.Fatalf("unexpected comparison results")
	}
	if !early.Before(late) || !late.After(early) {
		t.Fatalf("unexpected ordering")
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{"2024-03-14", "2024-03-14T23:30:00+09:00", "2024-03-14 01:00:00Z"} {
		got, err := ParseDate(input)
		if err != nil {
			t.Fatalf("ParseDate(%q) returned error: %v", input, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %s, want %s", input, got, want)
		}
	}

	if _, err := ParseDate("14/03/2024"); !errors.Is(err, ErrMalformedDateValue) {
		t.Fatalf("expected ErrMalformedDateValue, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	got, err := ParseTimestamp("2024-03-14T09:00:00Z")
	if err != nil {
		t.Fatalf("ParseTimestamp returned error: %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected instant %s", got)
	}

	naive, err := ParseTimestamp("2024-03-14 09:00:00")
	if err != nil {
		t.Fatalf("ParseTimestamp returned error: %v", err)
	}
	if _, offset := naive.Zone(); offset != 0 {
		t.Fatalf("expected naive timestamp to be read as UTC, got offset %d", offset)
	}

	if _, err := ParseTimestamp("not a timestamp"); !errors.Is(err, ErrMalformedTimeValue) {
		t.Fatalf("expected ErrMalformedTimeValue, got %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
