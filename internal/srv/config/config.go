package config

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const paramFilename = "param.yaml"
const stateFilename = "state.yaml"
const totpFilename = "totp.yaml"
const imagesFolder = "images"

type ServerConfig struct {
	ConfigDir      string
	DebugMode      bool
	SimulationMode bool
	// SpeedOverride replaces the param file speed when > 0.
	SpeedOverride int
	TotpMode      bool

	*ServerParam
	*ServerState
}

func NewServerConfig(configDir string, debugMode bool, simulationMode bool) *ServerConfig {
	serverConfig := &ServerConfig{
		ConfigDir:      configDir,
		DebugMode:      debugMode,
		SimulationMode: simulationMode,
	}

	// Check Configuration folder
	_, err := os.Stat(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Printf("Creation of config folder: %s", configDir)
			err = os.MkdirAll(configDir, 0770)
			if err != nil {
				logrus.Fatalf("Unable to create config folder: %v\n", err)
			}
		} else {
			logrus.Fatalf("Unable to access config folder: %s", configDir)
		}
	}

	// Open param file
	rawConfig, err := os.ReadFile(serverConfig.GetCompleteParamFilename())
	if err == nil {
		serverConfig.ServerParam, err = ParseServerParam(rawConfig)
		if err != nil {
			logrus.Fatalf("Unable to interpret config file: %v\n", err)
		}
	} else {
		// Create default param file
		logrus.Infof("Create default param file")
		serverConfig.ServerParam, err = ParseServerParam(ParamDefaultFile)
		if err != nil {
			logrus.Fatalf("Unable to interpret config file: %v\n", err)
		}

		serverConfig.SaveParam()
	}

	// Open state file
	serverConfig.ServerState = NewServerState(serverConfig.GetCompleteStateFilename())

	return serverConfig
}

func (sc *ServerConfig) GetCompleteParamFilename() string {
	return filepath.Join(sc.ConfigDir, paramFilename)
}

func (sc *ServerConfig) GetCompleteStateFilename() string {
	return filepath.Join(sc.ConfigDir, stateFilename)
}

func (sc *ServerConfig) GetCompleteTotpFilename() string {
	return filepath.Join(sc.ConfigDir, totpFilename)
}

func (sc *ServerConfig) GetCompleteImagesFolder() string {
	return filepath.Join(sc.ConfigDir, imagesFolder)
}

func (sc *ServerConfig) GetCompleteDatabaseFilename() string {
	return sc.resolve(sc.DatabaseFile)
}

func (sc *ServerConfig) GetCompleteEventsFilename() string {
	return sc.resolve(sc.EventsFile)
}

func (sc *ServerConfig) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(sc.ConfigDir, filename)
}

// ScreensaverSpeed is the number of samples drawn per frame by simple screensavers.
func (sc *ServerConfig) ScreensaverSpeed() int {
	if sc.SpeedOverride > 0 {
		return sc.SpeedOverride
	}
	return sc.Speed
}

func (sc *ServerConfig) GithubToken() string {
	if sc.GithubParam.Token != "" {
		return sc.GithubParam.Token
	}
	return os.Getenv("GITHUB_PAT")
}

func (sc *ServerConfig) SaveParam() {
	logrus.Debugf("Save param file: %s", sc.GetCompleteParamFilename())
	rawConfig, err := yaml.Marshal(*sc.ServerParam)
	if err != nil {
		logrus.Fatalf("Unable to serialize param file: %v\n", err)
	}
	err = os.WriteFile(sc.GetCompleteParamFilename(), rawConfig, 0660)
	if err != nil {
		logrus.Fatalf("Unable to save param file: %v\n", err)
	}
}
