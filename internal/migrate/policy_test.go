// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package migrate

import (
	"testing"

	"github.com/similigh/fb2gh/internal/fogbugz"
)

func TestFieldLabeler(t *testing.T) {
	c := &fogbugz.Case{Category: "Bug", Priority: "1 - Must Fix", Status: ""}

	tests := []struct {
		name    string
		fields  []string
		color   string
		want    []string
		wantErr bool
	}{
		{"category", []string{"category"}, "", []string{"Bug"}, false},
		{"category and priority", []string{"Category", "priority"}, "#ff0000", []string{"Bug", "1 - Must Fix"}, false},
		{"empty status skipped", []string{"status"}, "", nil, false},
		{"unknown field", []string{"severity"}, "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labeler, err := FieldLabeler(tt.fields, tt.color)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FieldLabeler error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			labels := labeler(c)
			if len(labels) != len(tt.want) {
				t.Fatalf("labels = %+v, want %v", labels, tt.want)
			}
			for i, l := range labels {
				if l.Name != tt.want[i] {
					t.Errorf("label %d = %q, want %q", i, l.Name, tt.want[i])
				}
				wantColor := "ffffff"
				if tt.color != "" {
					wantColor = "ff0000"
				}
				if l.Color != wantColor {
					t.Errorf("label color = %q, want %q", l.Color, wantColor)
				}
			}
		})
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := CategoryLabel(&fogbugz.Case{}); got != nil {
		t.Errorf("expected no label for empty category, got %+v", got)
	}
	if got := CategoryLabel(&fogbugz.Case{Category: "Inquiry"}); len(got) != 1 || got[0].Name != "Inquiry" || got[0].Color != "ffffff" {
		t.Errorf("unexpected labels: %+v", got)
	}
}

func TestCloseMode(t *testing.T) {
	open := &fogbugz.Case{Open: true}
	closed := &fogbugz.Case{Open: false}

	tests := []struct {
		mode       string
		openWant   bool
		closedWant bool
		wantErr    bool
	}{
		{"", false, true, false},
		{"closed", false, true, false},
		{"ALWAYS", true, true, false},
		{"never", false, false, false},
		{"sometimes", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			pred, err := CloseMode(tt.mode)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CloseMode(%q) error = %v", tt.mode, err)
			}
			if tt.wantErr {
				return
			}
			if pred(open) != tt.openWant || pred(closed) != tt.closedWant {
				t.Errorf("CloseMode(%q): open=%v closed=%v", tt.mode, pred(open), pred(closed))
			}
		})
	}
}

func TestFilter(t *testing.T) {
	cases := []*fogbugz.Case{
		{ID: 1, Open: true, Category: "Bug"},
		{ID: 2, Open: false, Category: "Bug"},
		{ID: 3, Open: true, Category: "Feature"},
		{ID: 4, Open: true, Category: "bug"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{"empty filter", Filter{}, []int{1, 2, 3, 4}},
		{"open only", Filter{OpenOnly: true}, []int{1, 3, 4}},
		{"categories", Filter{Categories: []string{"BUG"}}, []int{1, 2, 4}},
		{"exclude", Filter{ExcludeIDs: []int{1, 3}}, []int{2, 4}},
		{"combined", Filter{OpenOnly: true, Categories: []string{"bug"}, ExcludeIDs: []int{4}}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := tt.filter.Predicate()
			var got []int
			for _, c := range cases {
				if pred(c) {
					got = append(got, c.ID)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestAllOf(t *testing.T) {
	odd := func(c *fogbugz.Case) bool { return c.ID%2 == 1 }
	small := func(c *fogbugz.Case) bool { return c.ID < 5 }
	pred := AllOf(odd, nil, small)

	for id, want := range map[int]bool{1: true, 2: false, 7: false, 3: true} {
		if got := pred(&fogbugz.Case{ID: id}); got != want {
			t.Errorf("AllOf(%d) = %v, want %v", id, got, want)
		}
	}
	if !AllOf()(&fogbugz.Case{}) {
		t.Error("empty AllOf should accept everything")
	}
}
