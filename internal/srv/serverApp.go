package srv

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/oledpi/internal/srv/config"
	"github.com/jypelle/oledpi/internal/srv/device"
	"github.com/jypelle/oledpi/internal/srv/drawable"
	"github.com/jypelle/oledpi/internal/srv/event"
	"github.com/jypelle/oledpi/internal/srv/schedule"
	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/jypelle/oledpi/internal/srv/store"
	"github.com/jypelle/oledpi/internal/version"
	"github.com/sirupsen/logrus"
)

type ServerApp struct {
	*config.ServerConfig
	clock    clockwork.Clock
	location *time.Location
	rng      *rand.Rand

	displayDevice *device.Display
	buttonsDevice *device.Buttons
	buzzerDevice  *device.Buzzer
	apiDevice     *device.Api
	apiEvents     <-chan event.ApiEvent

	sensorStore   *store.SensorStore
	sensors       drawable.SensorStore
	notifications schedule.NotificationSource

	registry *screen.Registry
	context  *screen.Context
	menu     *screen.Menu

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
}

func NewServerApp(serverConfig *config.ServerConfig) *ServerApp {

	logrus.Debugf("Creation of oledpi server %s ...", version.AppVersion.String())

	app := newServerApp(serverConfig, clockwork.NewRealClock())

	app.displayDevice = device.NewDisplay(app.DisplayParam, app.SimulationMode)
	app.buttonsDevice = device.NewButtons(app.Buttons, app.SimulationMode)
	app.buzzerDevice = device.NewBuzzer(app.BuzzerPin, app.SimulationMode)
	if app.ApiParam.Enabled {
		app.apiDevice = device.NewApi(app.ServerConfig)
		app.apiEvents = app.apiDevice.EventChannel()
	}

	sensorStore, err := store.OpenSensorStore(context.Background(), app.GetCompleteDatabaseFilename())
	if err != nil {
		logrus.Warnf("Sensor readings unavailable: %v", err)
		app.sensors = unavailableSensors{err: err}
	} else {
		app.sensorStore = sensorStore
		app.sensors = sensorStore
	}

	app.build()

	logrus.Debugln("Server created")

	return app
}

func newServerApp(serverConfig *config.ServerConfig, clock clockwork.Clock) *ServerApp {
	return &ServerApp{
		ServerConfig:     serverConfig,
		clock:            clock,
		location:         serverConfig.Location(),
		rng:              rand.New(rand.NewSource(clock.Now().UnixNano())),
		eventLoopAskDone: make(chan bool),
		eventLoopDone:    make(chan bool),
	}
}

// build wires the screensavers, the schedules and the menu on the devices.
func (s *ServerApp) build() {
	s.registry, s.context = s.buildContext()
	s.menu = screen.NewMenu(s.menuTransitions())
}

func (s *ServerApp) Start() {
	logrus.Printf("Starting oledpi server ...")

	logrus.Printf("Starting devices ...")

	// Start display device
	s.displayDevice.Start()

	// Display startup screen
	s.showSplash(fmt.Sprintf("oledpi %s", version.AppVersion.String()))
	time.Sleep(2 * time.Second)
	s.displayDevice.Canvas().Clear(screen.Black)

	// Start buzzer device
	s.buzzerDevice.Start()

	// Start buttons device
	s.buttonsDevice.Start()

	// Start api device
	if s.apiDevice != nil {
		s.apiDevice.Start()
	}

	// Start event loop
	go s.eventLoop()
}

func (s *ServerApp) Stop(halt bool) {
	logrus.Printf("Stopping oledpi server ...")

	// Stop api
	if s.apiDevice != nil {
		s.apiDevice.StopSendingEvent()
	}

	// Stop buttons device
	s.buttonsDevice.StopSendingEvent()

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Display end screen
	s.showSplash("See you!")

	// Stop buzzer device
	s.buzzerDevice.Stop()

	// Stop display device
	s.displayDevice.Stop()

	if s.sensorStore != nil {
		if err := s.sensorStore.Close(); err != nil {
			logrus.Warnf("Unable to close sensor store: %v", err)
		}
	}

	// Flush state backup
	s.ServerConfig.ServerState.FlushSave()

	logrus.Printf("Server stopped")

	if halt {
		logrus.Printf("System halt")
		haltCmd := exec.Command("sudo", "halt")
		err := haltCmd.Run()
		if err != nil {
			logrus.Panicf("Unable to halt the system: %v", err)
		}
	}
	os.Exit(0)
}

type unavailableSensors struct {
	err error
}

func (u unavailableSensors) Latest(ctx context.Context) (store.Reading, error) {
	return store.Reading{}, fmt.Errorf("%w: %w", store.ErrNoReading, u.err)
}

func (u unavailableSensors) Recent(ctx context.Context, n int) ([]store.Reading, error) {
	return nil, fmt.Errorf("%w: %w", store.ErrNoReading, u.err)
}
