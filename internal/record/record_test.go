package record

import (
	"strings"
	"testing"

	"github.com/discochess/bookminer/internal/rules"
)

func TestPathLabel(t *testing.T) {
	cases := []struct {
		name  string
		plies []rules.Ply
		want  string
	}{
		{"empty", nil, ""},
		{"one ply", []rules.Ply{{SAN: "e4"}}, "1. e4"},
		{"one full move", []rules.Ply{{SAN: "e4"}, {SAN: "e5"}}, "1. e4 e5"},
		{
			"ends on white ply",
			[]rules.Ply{{SAN: "e4"}, {SAN: "e5"}, {SAN: "Nf3"}},
			"1. e4 e5 2. Nf3",
		},
		{
			"two full moves",
			[]rules.Ply{{SAN: "d4"}, {SAN: "d5"}, {SAN: "c4"}, {SAN: "e6"}},
			"1. d4 d5 2. c4 e6",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PathLabel(tc.plies); got != tc.want {
				t.Errorf("PathLabel() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatScore(t *testing.T) {
	cases := []struct {
		centipawns int
		want       string
	}{
		{0, "+0.00"},
		{20, "+0.20"},
		{-15, "-0.15"},
		{5, "+0.05"},
		{105, "+1.05"},
		{-230, "-2.30"},
		{10000, "+100.00"},
	}
	for _, tc := range cases {
		if got := FormatScore(tc.centipawns); got != tc.want {
			t.Errorf("FormatScore(%d) = %q, want %q", tc.centipawns, got, tc.want)
		}
	}
}

func TestRenderPGN(t *testing.T) {
	plies := []rules.Ply{
		{UCI: "e2e4", SAN: "e4"},
		{UCI: "e7e5", SAN: "e5"},
	}
	pgn, err := RenderPGN(plies, 20, "1. e4 e5")
	if err != nil {
		t.Fatalf("RenderPGN() error = %v", err)
	}

	for _, want := range []string{
		`[Event "Popular Moves vs Engine Best Response"]`,
		`[Variation "1. e4 e5"]`,
		"1. e4 e5",
		"{ Engine evaluation: +0.20 }",
	} {
		if !strings.Contains(pgn, want) {
			t.Errorf("RenderPGN() output missing %q:\n%s", want, pgn)
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(pgn), "*") {
		t.Errorf("RenderPGN() movetext does not end with result token:\n%s", pgn)
	}
}

func TestRenderPGNBadPly(t *testing.T) {
	if _, err := RenderPGN([]rules.Ply{{UCI: "e2e5"}}, 0, ""); err == nil {
		t.Error("RenderPGN() with illegal ply succeeded")
	}
}
