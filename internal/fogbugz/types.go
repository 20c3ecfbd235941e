// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

// Package fogbugz provides a client for the FogBugz XML API and the case
// model consumed by the migration engine.
package fogbugz

import (
	"errors"
	"fmt"
	"iter"
)

// ErrNoEvents reports a case without its "opened" event.
var ErrNoEvents = errors.New("case has no events")

// Case is a FogBugz case as returned by cmd=search.
// Cases are read-only snapshots; the engine never mutates them.
type Case struct {
	ID          int     `xml:"ixBug,attr" json:"id"`
	ParentID    int     `xml:"ixBugParent" json:"parent_id,omitempty"`
	Open        bool    `xml:"fOpen" json:"open"`
	Title       string  `xml:"sTitle" json:"title"`
	Assignee    string  `xml:"sPersonAssignedTo" json:"assignee,omitempty"`
	Status      string  `xml:"sStatus" json:"status,omitempty"`
	DuplicateOf int     `xml:"ixBugOriginal" json:"duplicate_of,omitempty"`
	Priority    string  `xml:"sPriority" json:"priority,omitempty"`
	MilestoneID int     `xml:"ixFixFor" json:"milestone_id,omitempty"`
	Milestone   string  `xml:"sFixFor" json:"milestone,omitempty"`
	Category    string  `xml:"sCategory" json:"category,omitempty"`
	Events      []Event `xml:"events>event" json:"events"`
	ExternalID  string  `xml:"sCase" json:"external_id,omitempty"`
}

// Closed reports whether the case is closed in FogBugz.
func (c *Case) Closed() bool {
	return !c.Open
}

// Validate checks the invariants the engine relies on.
func (c *Case) Validate() error {
	if len(c.Events) == 0 {
		return fmt.Errorf("case %d: %w", c.ID, ErrNoEvents)
	}
	return nil
}

// Event is one entry of a case's history. The first event of a case is
// always the one that opened it.
type Event struct {
	ID          int          `xml:"ixBugEvent,attr" json:"id"`
	CaseID      int          `xml:"ixBug,attr" json:"case_id"`
	Description string       `xml:"evtDescription" json:"description"`
	DateTime    string       `xml:"dt" json:"dt"`
	HTML        string       `xml:"sHtml" json:"html,omitempty"`
	Text        string       `xml:"s" json:"text,omitempty"`
	Changes     string       `xml:"sChanges" json:"changes,omitempty"`
	Attachments []Attachment `xml:"rgAttachments>attachment" json:"attachments,omitempty"`
}

// Body returns the event text, preferring the HTML rendition.
func (e *Event) Body() string {
	if e.HTML != "" {
		return e.HTML
	}
	return e.Text
}

// Attachment is a file attached to an event. URL is relative to the
// FogBugz instance and needs the owning client to become downloadable.
type Attachment struct {
	Filename string `xml:"sFileName" json:"filename"`
	URL      string `xml:"sURL" json:"url"`
	CaseID   int    `xml:"-" json:"case_id"`
	EventID  int    `xml:"-" json:"event_id"`
}

// Milestone is a FogBugz "fix for".
type Milestone struct {
	ID          int    `xml:"ixFixFor" json:"id"`
	Name        string `xml:"sFixFor" json:"name"`
	ProjectID   int    `xml:"ixProject" json:"project_id,omitempty"`
	ProjectName string `xml:"sProject" json:"project,omitempty"`
}

// Each yields pointers into cases in order.
func Each(cases []Case) iter.Seq[*Case] {
	return func(yield func(*Case) bool) {
		for i := range cases {
			if !yield(&cases[i]) {
				return
			}
		}
	}
}
