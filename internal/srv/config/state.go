package config

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const saveDelay = 10 * time.Second

type ServerState struct {
	serverStateConfig     ServerStateConfig
	lock                  sync.RWMutex
	backupTimer           *time.Timer
	completeStateFilename string
}

func NewServerState(completeStateFilename string) *ServerState {
	serverState := &ServerState{
		completeStateFilename: completeStateFilename,
	}

	rawConfig, err := os.ReadFile(completeStateFilename)
	if err == nil {
		// Interpret state file
		err = yaml.Unmarshal(rawConfig, &serverState.serverStateConfig)
		if err != nil {
			logrus.Fatalf("Unable to interpret state file: %v\n", err)
		}
	} else {
		// Create default state file
		logrus.Infof("Create default state file")
		serverState.SetNotificationCursor(time.Now().Add(-24 * time.Hour).Truncate(time.Second))
	}

	return serverState
}

// NotificationCursor is the date from which notifications are requested.
func (ss *ServerState) NotificationCursor() time.Time {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.serverStateConfig.NotificationCursor
}

func (ss *ServerState) SetNotificationCursor(cursor time.Time) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ss.serverStateConfig.NotificationCursor = cursor
	ss.scheduleSave()
}

func (ss *ServerState) scheduleSave() {
	if ss.backupTimer == nil {
		ss.backupTimer = time.AfterFunc(saveDelay, func() {
			ss.lock.Lock()
			defer ss.lock.Unlock()
			ss.save()
		})
	} else {
		ss.backupTimer.Reset(saveDelay)
	}
}

func (ss *ServerState) save() {
	logrus.Infof("Save state file: %s", ss.completeStateFilename)
	rawConfig, err := yaml.Marshal(&ss.serverStateConfig)
	if err != nil {
		logrus.Fatalf("Unable to serialize state file: %v\n", err)
	}
	err = os.WriteFile(ss.completeStateFilename, rawConfig, 0660)
	if err != nil {
		logrus.Fatalf("Unable to save state file: %v\n", err)
	}
}

func (ss *ServerState) FlushSave() {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	if ss.backupTimer != nil {
		if ss.backupTimer.Stop() {
			ss.save()
		}
	}
}

type ServerStateConfig struct {
	NotificationCursor time.Time `yaml:"notification_cursor"`
}
