package srv

import (
	"time"

	"github.com/jypelle/oledpi/internal/images"
	"github.com/jypelle/oledpi/internal/srv/config"
	"github.com/jypelle/oledpi/internal/srv/drawable"
	"github.com/jypelle/oledpi/internal/srv/notify"
	"github.com/jypelle/oledpi/internal/srv/schedule"
	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/jypelle/oledpi/internal/srv/store"
	"github.com/sirupsen/logrus"
)

const (
	notificationTimeout = 10 * time.Second
	// leaves the first frames to the clock
	firstPollDelay = 10 * time.Second
)

var simpleScreensavers = []string{"star", "rpi", "duolingo", "spaghetti", "plate"}

var bearWeekdays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}

func (s *ServerApp) buildContext() (*screen.Registry, *screen.Context) {
	imagesFolder := s.GetCompleteImagesFolder()
	speed := s.ScreensaverSpeed()

	registry := screen.NewRegistry()
	for _, id := range simpleScreensavers {
		registry.Add(drawable.NewSimpleScreensaver(id, images.Load(imagesFolder, id), speed))
	}

	timeDisplay := drawable.NewTimeDisplay(s.clock, s.location)
	registry.Add(timeDisplay)

	events := func() (*store.Events, error) {
		return store.LoadEvents(s.GetCompleteEventsFilename())
	}
	for _, mode := range []drawable.MeasurementsMode{drawable.DefaultMode, drawable.TempsMode, drawable.EventsMode} {
		registry.Add(drawable.NewMeasurements(mode, s.clock, s.location, s.sensors, events, s.MeasurementsTimeout))
	}

	if s.TotpMode {
		accounts, err := config.LoadTotpAccounts(s.GetCompleteTotpFilename())
		if err != nil {
			logrus.Warnf("Totp screen disabled: %v", err)
		} else {
			registry.Add(drawable.NewTotp(totpAccounts(accounts), s.clock))
		}
	}

	if s.QrPayload != "" {
		registry.Add(drawable.NewQrCode(s.QrPayload))
	}

	registry.Add(drawable.NewStatus(drawable.HostStats(s.sensors), s.clock))

	ctx := screen.NewContext(s.clock, s.location, registry, s.buzzerDevice, timeDisplay.Id(), timeDisplay.NewDrawable())

	for _, reminder := range s.Reminders {
		ctx.AddSchedule(schedule.NewReminder(reminder.Hour, reminder.Minute, reminder.ScreensaverId, reminder.Beep))
	}

	bear := images.Load(imagesFolder, "teddy_bear")
	ctx.AddSchedule(&schedule.DayReminder{
		Weekdays: bearWeekdays,
		Hour:     20,
		Minutes:  []int{0, 30, 55},
		NewDrawable: func() screen.Drawable {
			return drawable.NewFlash(bear)
		},
	})

	if s.GithubParam.Enabled {
		if s.notifications == nil {
			s.notifications = notify.NewGithubSource(s.GithubToken(), s.ServerState, nil)
		}
		icon := images.Load(imagesFolder, "github")
		interval := s.GithubParam.PollDuration()
		lastCall := s.clock.Now().Add(firstPollDelay - interval)
		ctx.AddSchedule(schedule.NewNotificationPoll(s.notifications, icon, interval, notificationTimeout, lastCall))
	}

	logrus.Infof("Screensavers: %v", registry.Ids())
	return registry, ctx
}

func totpAccounts(accounts []config.TotpAccount) []drawable.TotpAccount {
	res := make([]drawable.TotpAccount, 0, len(accounts))
	for _, account := range accounts {
		res = append(res, drawable.TotpAccount{
			Issuer: account.Issuer,
			Label:  account.Label,
			Secret: account.Secret,
		})
	}
	return res
}
