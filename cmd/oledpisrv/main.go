package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/oledpi/internal/srv"
	"github.com/jypelle/oledpi/internal/srv/config"
	"github.com/jypelle/oledpi/internal/srv/device"
	"github.com/jypelle/oledpi/internal/srv/store"
	"github.com/jypelle/oledpi/internal/version"
	"github.com/sirupsen/logrus"
)

const configSuffix = "oledpi"

func main() {

	// Logger
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	mainCommand := filepath.Base(os.Args[0])

	// region Flags and Commands definition

	// Debug Mode
	debugMode := flag.Bool("d", false, "Enable debug mode")

	// Simulation Mode
	simulationMode := flag.Bool("s", false, "Enable simulation mode")

	// User config dir
	defaultConfigDir := "./." + configSuffix
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		defaultConfigDir = filepath.Join(userConfigDir, configSuffix)
	}
	configDir := flag.String("c", defaultConfigDir, "Location of oledpi config folder")

	// Screensaver speed
	speed := flag.Int("speed", 0, "Random samples per frame of the screensavers, overrides the configured speed when positive")

	// Totp screen
	totpMode := flag.Bool("totp", false, "Enable the totp codes screen")

	// Usage
	flag.Usage = func() {
		fmt.Printf("\nUsage: %s [OPTIONS] [COMMAND]\n", mainCommand)
		fmt.Printf("\nA screensaver and reminder display for a small oled screen\n")
		fmt.Printf("\nOptions:\n")
		flag.PrintDefaults()
		fmt.Printf("\nCommands:\n")
		fmt.Printf("  run       Run server\n")
		fmt.Printf("  measure   Take and store one humidity and temperature reading\n")
		fmt.Printf("  version   Show the version number\n")
		fmt.Printf("\nRun '%s COMMAND --help' for more information on a command.\n", mainCommand)
	}

	// run command
	runCmd := flag.NewFlagSet("run", flag.ExitOnError)

	runCmd.Usage = func() {
		fmt.Printf("\nUsage: %s run\n", mainCommand)
		fmt.Printf("\nRun the server\n")
	}

	// measure command
	measureCmd := flag.NewFlagSet("measure", flag.ExitOnError)

	measureCmd.Usage = func() {
		fmt.Printf("\nUsage: %s measure\n", mainCommand)
		fmt.Printf("\nRead the sensor and store the median reading\n")
	}

	// version command
	versionCmd := flag.NewFlagSet("version", flag.ExitOnError)

	versionCmd.Usage = func() {
		fmt.Printf("\nUsage: %s version\n", mainCommand)
		fmt.Printf("\nShow the version information\n")
	}

	// endregion

	// region Flags and Commands Parsing
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	var cmd *flag.FlagSet
	switch flag.Arg(0) {
	case "run":
		cmd = runCmd
	case "measure":
		cmd = measureCmd
	case "version":
		cmd = versionCmd
	default:
		fmt.Printf("\n%s is not an oledpi command\n", flag.Args()[0])
		flag.Usage()
		os.Exit(1)
	}
	cmd.Parse(flag.Args()[1:])
	if cmd.NArg() > 0 {
		fmt.Printf("\n\"%s %s\" accepts no arguments\n", mainCommand, flag.Arg(0))
		cmd.Usage()
		os.Exit(1)
	}
	// endregion

	if *debugMode {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
		logrus.Printf("Debug mode activated")
	}

	switch {
	case versionCmd.Parsed():
		fmt.Printf("Version %s\n", version.AppVersion.String())
	case measureCmd.Parsed():
		measure(config.NewServerConfig(*configDir, *debugMode, *simulationMode))
	case runCmd.Parsed():
		serverConfig := config.NewServerConfig(*configDir, *debugMode, *simulationMode)
		serverConfig.SpeedOverride = *speed
		serverConfig.TotpMode = *totpMode

		// Create oledpi server
		serverApp := srv.NewServerApp(serverConfig)

		// Listen stop signal
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGABRT, syscall.SIGHUP, syscall.SIGUSR1)

		// Start oledpi server
		serverApp.Start()

		sig := <-ch
		logrus.Infof("Received signal: %v", sig)
		serverApp.Stop(sig == syscall.SIGUSR1)
	}
}

func measure(serverConfig *config.ServerConfig) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sensorStore, err := store.OpenSensorStore(ctx, serverConfig.GetCompleteDatabaseFilename())
	if err != nil {
		logrus.Fatalf("Unable to open sensor database: %v", err)
	}
	defer sensorStore.Close()

	sensor, err := device.NewSensor(serverConfig.SensorPin)
	if err != nil {
		logrus.Fatalf("Unable to open sensor: %v", err)
	}

	reading, err := srv.Measure(ctx, sensor, sensorStore, clockwork.NewRealClock())
	if err != nil {
		logrus.Fatalf("Measure failed: %v", err)
	}
	fmt.Printf("%s %.1f%% %.1f°C\n", reading.Time.Format(time.RFC3339), float64(reading.Humidity)/10, float64(reading.Celsius)/10)
}
