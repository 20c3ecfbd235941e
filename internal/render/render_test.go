// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/similigh/fb2gh/internal/attachments"
	"github.com/similigh/fb2gh/internal/fogbugz"
)

type stubSource struct{}

func (stubSource) AttachmentURL(a fogbugz.Attachment) string {
	return "https://fb.example.com/files/" + a.URL
}

func TestRender(t *testing.T) {
	r := New(stubSource{}, nil, Options{})

	tests := []struct {
		name string
		ev   fogbugz.Event
		want string
	}{
		{
			name: "opened with body",
			ev: fogbugz.Event{
				Description: "Opened by Alice",
				DateTime:    "2007-06-27T16:37:13Z",
				Text:        "Something is wrong.",
			},
			want: "<strong>Opened by Alice</strong> 6/27/2007 4:37 PM UTC<hr>Something is wrong.",
		},
		{
			name: "header only",
			ev: fogbugz.Event{
				Description: "Closed by Alice",
				DateTime:    "2007-06-27T16:37:13Z",
			},
			want: "<strong>Closed by Alice</strong> 6/27/2007 4:37 PM UTC",
		},
		{
			name: "changes chomped",
			ev: fogbugz.Event{
				Description: "Edited by Bob",
				DateTime:    "2010-01-05T09:05:00Z",
				Changes:     "Priority changed from '3' to '1'.\n",
			},
			want: "<strong>Edited by Bob</strong> 1/5/2010 9:05 AM UTC<br>Priority changed from '3' to '1'.",
		},
		{
			name: "only a newline of changes",
			ev: fogbugz.Event{
				Description: "Edited by Bob",
				DateTime:    "2010-01-05T21:05:00Z",
				Changes:     "\r\n",
			},
			want: "<strong>Edited by Bob</strong> 1/5/2010 9:05 PM UTC",
		},
		{
			name: "html body preferred",
			ev: fogbugz.Event{
				Description: "Edited by Bob",
				DateTime:    "2010-01-05T09:05:00Z",
				HTML:        "<p>rich</p>",
				Text:        "plain",
			},
			want: "<strong>Edited by Bob</strong> 1/5/2010 9:05 AM UTC<hr><p>rich</p>",
		},
		{
			name: "attachments",
			ev: fogbugz.Event{
				Description: "Edited by Bob",
				DateTime:    "2010-01-05T09:05:00Z",
				Attachments: []fogbugz.Attachment{
					{Filename: "shot.JPG", URL: "shot.JPG"},
					{Filename: "spec.pdf", URL: "spec.pdf"},
				},
			},
			want: "<strong>Edited by Bob</strong> 1/5/2010 9:05 AM UTC<hr>" +
				`<a href="https://fb.example.com/files/shot.JPG"><img src="https://fb.example.com/files/shot.JPG" alt="shot.JPG"></a><br>` +
				`<a href="https://fb.example.com/files/spec.pdf">spec.pdf</a><br>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(context.Background(), &tt.ev)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRenderBadTimestamp(t *testing.T) {
	r := New(stubSource{}, nil, Options{})
	_, err := r.Render(context.Background(), &fogbugz.Event{Description: "x", DateTime: "yesterday"})
	if !errors.Is(err, ErrTimestamp) {
		t.Fatalf("expected ErrTimestamp, got %v", err)
	}
}

func TestRenderUsesConverter(t *testing.T) {
	var calls int
	conv := attachments.ConverterFunc(func(_ context.Context, _ attachments.Source, a fogbugz.Attachment) string {
		calls++
		return "https://cdn.example.com/" + a.Filename
	})
	r := New(stubSource{}, conv, Options{})

	ev := &fogbugz.Event{
		Description: "Opened",
		DateTime:    "2007-06-27T16:37:13Z",
		Attachments: []fogbugz.Attachment{{Filename: "a.gif"}, {Filename: "b.txt"}},
	}
	got, err := r.Render(context.Background(), ev)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("converter called %d times, want 2", calls)
	}
	want := "<strong>Opened</strong> 6/27/2007 4:37 PM UTC<hr>" +
		`<a href="https://cdn.example.com/a.gif"><img src="https://cdn.example.com/a.gif" alt="a.gif"></a><br>` +
		`<a href="https://cdn.example.com/b.txt">b.txt</a><br>`
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderOptions(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	r := New(stubSource{}, nil, Options{
		Layout:          "2006-01-02 15:04 MST",
		Location:        loc,
		ImageExtensions: []string{".PDF"},
	})

	ts, err := r.Timestamp("2007-06-27T16:37:13Z")
	if err != nil {
		t.Fatal(err)
	}
	if ts != "2007-06-28 01:37 JST" {
		t.Errorf("Timestamp() = %q", ts)
	}
	if !r.IsImage("https://x/y/file.pdf") || r.IsImage("https://x/y/file.png") {
		t.Error("image extensions option not honoured")
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://x.com/a/b.png", "png"},
		{"https://x.com/a.b/c", ""},
		{"https://x.com/default.asp?f=a.png&token=t", "png&token=t"},
		{"file.tar.gz", "gz"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extension(tt.in); got != tt.want {
			t.Errorf("extension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
