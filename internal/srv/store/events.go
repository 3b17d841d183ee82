package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/sirupsen/logrus"
)

const eventTimeLayout = "2006-01-02T15:04:05"

const defaultEventDuration = 30

type Events struct {
	Events []Event  `json:"events"`
	Weekly []Weekly `json:"weekly"`
}

type Event struct {
	Name      string  `json:"name"`
	StartTime string  `json:"startTime"`
	EndTime   *string `json:"endTime,omitempty"`
}

// Weekly is a recurring event, Day 0 is monday.
type Weekly struct {
	Name     string `json:"name"`
	Day      int    `json:"day"`
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Duration int    `json:"duration"`
}

func LoadEvents(filename string) (*Events, error) {
	raw, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Debugf("No events file %s", filename)
		return &Events{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}
	events := &Events{}
	if err = json.Unmarshal(raw, events); err != nil {
		return nil, fmt.Errorf("failed to parse events file %s: %w", filename, err)
	}
	return events, nil
}

// Occurrence is an event placed on the calendar.
type Occurrence struct {
	Name string
	// Weekday with 0 for monday.
	Weekday  int
	Hour     int
	Minute   int
	Duration int
	Day      int
}

// MondayWeekday numbers the weekday of t from 0 for monday.
func MondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Upcoming places every event relative to now, sorted by date then time.
// Weekly events fall on their next matching weekday, today included.
// Past one-off events are dropped.
func (e *Events) Upcoming(now time.Time) ([]Occurrence, error) {
	loc := now.Location()
	occurrences := make([]Occurrence, 0, len(e.Events)+len(e.Weekly))

	for _, w := range e.Weekly {
		if w.Day < 0 || w.Day > 6 {
			return nil, fmt.Errorf("invalid day %d for weekly event %s", w.Day, w.Name)
		}
		date := now.AddDate(0, 0, (w.Day-MondayWeekday(now)+7)%7)
		occurrences = append(occurrences, Occurrence{
			Name:     w.Name,
			Weekday:  w.Day,
			Hour:     w.Hour,
			Minute:   w.Minute,
			Duration: w.Duration,
			Day:      screen.JulianDay(date),
		})
	}

	for _, ev := range e.Events {
		start, err := time.ParseInLocation(eventTimeLayout, ev.StartTime, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid start time for event %s: %w", ev.Name, err)
		}
		if start.Before(now) {
			continue
		}
		duration := defaultEventDuration
		if ev.EndTime != nil {
			end, err := time.ParseInLocation(eventTimeLayout, *ev.EndTime, loc)
			if err != nil {
				return nil, fmt.Errorf("invalid end time for event %s: %w", ev.Name, err)
			}
			duration = int(end.Sub(start).Minutes())
		}
		occurrences = append(occurrences, Occurrence{
			Name:     ev.Name,
			Weekday:  MondayWeekday(start),
			Hour:     start.Hour(),
			Minute:   start.Minute(),
			Duration: duration,
			Day:      screen.JulianDay(start),
		})
	}

	weekday := MondayWeekday(now)
	sort.SliceStable(occurrences, func(i, j int) bool {
		a, b := occurrences[i], occurrences[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if da, db := (a.Weekday+7-weekday)%7, (b.Weekday+7-weekday)%7; da != db {
			return da < db
		}
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}
		return a.Minute < b.Minute
	})
	return occurrences, nil
}

// Start returns the start time of the occurrence in loc.
func (o Occurrence) Start(loc *time.Location) time.Time {
	// julian day 2440588 is 1970-01-01
	date := time.Unix(int64(o.Day-2440588)*86400, 0).UTC()
	return time.Date(date.Year(), date.Month(), date.Day(), o.Hour, o.Minute, 0, 0, loc)
}
