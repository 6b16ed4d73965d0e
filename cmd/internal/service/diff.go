package service

import (
	"fmt"
	"time"

	"roomcal/cmd/internal/domain/entity"
	"roomcal/cmd/internal/utils"
)

// DescribeEventChanges compares two snapshots of an event and renders one
// line per materially changed field, in a fixed order: start time, duration,
// room assignment, title. Description or free-text location edits produce no
// line; participants still get a generic "updated" notice in that case.
//
// oldRoom/newRoom are the resolved room names ("" when the location is not a
// reservable room), so a wording tweak of a free-text location is not
// reported as a room change.
func DescribeEventChanges(oldEvent, newEvent *entity.Event, oldRoom, newRoom string) []string {
	var lines []string

	if oldEvent.EventDate != newEvent.EventDate {
		lines = append(lines, fmt.Sprintf("Time: %s → %s",
			utils.FormatMinute(oldEvent.EventDate), utils.FormatMinute(newEvent.EventDate)))
	}

	oldDur := eventDuration(oldEvent)
	newDur := eventDuration(newEvent)
	if oldDur != newDur {
		lines = append(lines, fmt.Sprintf("Duration: %s → %s", oldDur, newDur))
	}

	if oldRoom != newRoom {
		lines = append(lines, fmt.Sprintf("Room: %s → %s", roomOrNone(oldRoom), roomOrNone(newRoom)))
	}

	if oldEvent.Title != newEvent.Title {
		lines = append(lines, fmt.Sprintf("Title: %s → %s", oldEvent.Title, newEvent.Title))
	}

	return lines
}

func eventDuration(event *entity.Event) time.Duration {
	return time.Duration(event.EndTime-event.EventDate) * time.Millisecond
}

func roomOrNone(name string) string {
	if name == "" {
		return "(none)"
	}
	return name
}
