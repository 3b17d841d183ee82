package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jypelle/oledpi/internal/images"
	"github.com/jypelle/oledpi/internal/srv/drawable"
	"github.com/jypelle/oledpi/internal/srv/notify"
	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/sirupsen/logrus"
)

const (
	maxNotificationLines = 8
	maxLineLength        = 16
)

type NotificationSource interface {
	Notifications(ctx context.Context) ([]notify.Notification, error)
}

// NotificationPoll fetches new notifications periodically and shows an alert
// when some of them deserve attention.
type NotificationPoll struct {
	source   NotificationSource
	icon     *images.Bitmap
	interval time.Duration
	timeout  time.Duration
	lastCall time.Time
}

func NewNotificationPoll(source NotificationSource, icon *images.Bitmap, interval time.Duration, timeout time.Duration, lastCall time.Time) *NotificationPoll {
	return &NotificationPoll{
		source:   source,
		icon:     icon,
		interval: interval,
		timeout:  timeout,
		lastCall: lastCall,
	}
}

func (p *NotificationPoll) Check(h screen.Host, now time.Time) bool {
	return now.Sub(p.lastCall) >= p.interval
}

func (p *NotificationPoll) Execute(h screen.Host, now time.Time) {
	p.lastCall = now

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	items, err := p.source.Notifications(ctx)
	if err != nil {
		logrus.Debugf("Skip notification poll: %v", err)
		return
	}

	lines := NotificationLines(items)
	if lines == nil {
		return
	}
	h.DoDraw(drawable.NewNotificationAlert(p.icon, lines))
}

// NotificationLines summarizes the unread notifications, two lines each,
// nil when none is relevant.
func NotificationLines(items []notify.Notification) []string {
	relevant := make([]notify.Notification, 0, len(items))
	for _, item := range items {
		if item.Unread && item.Reason != "state_change" {
			relevant = append(relevant, item)
		}
	}
	if len(relevant) == 0 {
		return nil
	}

	var lines []string
	shown := 0
	for _, item := range relevant {
		if len(lines) >= maxNotificationLines {
			break
		}
		shown++
		if item.URL == "" {
			lines = append(lines, "no url")
			continue
		}
		// https://api.github.com/repos/<owner>/<repo>/<kind>/<number>
		parts := strings.Split(item.URL, "/")
		if len(parts) < 8 {
			lines = append(lines, "too few url parts")
			continue
		}
		lines = append(lines, fmt.Sprintf("%s #%s", parts[5], parts[7]))
		if len(lines) < maxNotificationLines {
			lines = append(lines, drawable.Truncate(" "+item.Title, maxLineLength))
		}
	}
	if remaining := len(relevant) - shown; remaining > 0 {
		lines = append(lines, fmt.Sprintf("... %d more", remaining))
	}
	return lines
}
