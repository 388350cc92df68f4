package weather

import (
	"errors"
	"testing"
)

func TestChannelRoundTrip(t *testing.T) {
	for ordinal := 0; ordinal < 3; ordinal++ {
		c, err := ChannelFromOrdinal(ordinal)
		if err != nil {
			t.Fatalf("ordinal %d: unexpected error %v", ordinal, err)
		}
		if c.Ordinal() != ordinal {
			t.Fatalf("expected ordinal %d, got %d", ordinal, c.Ordinal())
		}
		parsed, err := ParseChannel(c.String())
		if err != nil {
			t.Fatalf("label %q: unexpected error %v", c.String(), err)
		}
		if parsed != c {
			t.Fatalf("expected %v from label, got %v", c, parsed)
		}
	}
}

func TestChannelFromOrdinalRejectsOutOfRange(t *testing.T) {
	for _, ordinal := range []int{-1, 3, 42} {
		if _, err := ChannelFromOrdinal(ordinal); !errors.Is(err, ErrInvalidChannel) {
			t.Fatalf("ordinal %d: expected ErrInvalidChannel, got %v", ordinal, err)
		}
	}
}

func TestMustChannelPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for ordinal 3")
		}
	}()
	MustChannel(3)
}

func TestLabelsInTabOrder(t *testing.T) {
	got := Labels()
	want := []string{"Wind", "Rain", "Sun"}
	if len(got) != len(want) {
		t.Fatalf("expected %d labels, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("label %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestParseChannelIsCaseInsensitive(t *testing.T) {
	c, err := ParseChannel("  sUn ")
	if err != nil || c != Sun {
		t.Fatalf("expected Sun, got %v (%v)", c, err)
	}
	if _, err := ParseChannel("hail"); !errors.Is(err, ErrInvalidChannel) {
		t.Fatalf("expected ErrInvalidChannel, got %v", err)
	}
}

func TestForecastGet(t *testing.T) {
	f := Forecast{Wind: 0.1, Rain: 0.2, Sun: 0.3}
	cases := map[Channel]float64{Wind: 0.1, Rain: 0.2, Sun: 0.3}
	for c, want := range cases {
		if got := f.Get(c); got != want {
			t.Fatalf("%v: expected %v, got %v", c, want, got)
		}
	}
}

func TestServerErrorMessage(t *testing.T) {
	err := NewServerError(CodeUnknownRegion, "no county named %q", "Atlantis")
	if err.Error() != `server error: unknown_region: no county named "Atlantis"` {
		t.Fatalf("unexpected message %q", err.Error())
	}
	bare := &ServerError{Code: CodeInternal}
	if bare.Error() != "server error: internal" {
		t.Fatalf("unexpected message %q", bare.Error())
	}
}
