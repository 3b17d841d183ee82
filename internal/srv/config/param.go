package config

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type ServerParam struct {
	TimeZone            string          `yaml:"time_zone" validate:"required,timezone"`
	FrameInterval       int64           `yaml:"frame_interval" validate:"min=10,max=1000"`
	Speed               int             `yaml:"speed" validate:"min=1,max=4096"`
	MeasurementsTimeout int             `yaml:"measurements_timeout" validate:"min=0"`
	DisplayParam        DisplayParam    `yaml:"display"`
	Buttons             []ButtonParam   `yaml:"buttons" validate:"min=1,max=6,dive"`
	BuzzerPin           string          `yaml:"buzzer_pin" validate:"required"`
	SensorPin           string          `yaml:"sensor_pin" validate:"required"`
	DatabaseFile        string          `yaml:"database_file" validate:"required"`
	EventsFile          string          `yaml:"events_file" validate:"required"`
	Reminders           []ReminderParam `yaml:"reminders" validate:"dive"`
	GithubParam         GithubParam     `yaml:"github"`
	ApiParam            ApiParam        `yaml:"api"`
	QrPayload           string          `yaml:"qr_payload,omitempty"`
}

type DisplayParam struct {
	Driver      string `yaml:"driver" validate:"oneof=ssd1351 ssd1306 fbdev"`
	SpiPort     string `yaml:"spi_port"`
	SpiSpeed    int64  `yaml:"spi_speed" validate:"min=100000,max=40000000"`
	DcPin       string `yaml:"dc_pin" validate:"required_if=Driver ssd1351"`
	ResetPin    string `yaml:"reset_pin" validate:"required_if=Driver ssd1351"`
	Framebuffer string `yaml:"framebuffer" validate:"required_if=Driver fbdev"`
}

type ButtonParam struct {
	Pin string `yaml:"pin" validate:"required"`
	Id  int    `yaml:"id" validate:"min=1,max=6"`
}

type ReminderParam struct {
	Hour          int    `yaml:"hour" validate:"min=0,max=23"`
	Minute        int    `yaml:"minute" validate:"min=0,max=59"`
	ScreensaverId string `yaml:"screensaver" validate:"required"`
	Beep          bool   `yaml:"beep"`
}

type GithubParam struct {
	Enabled bool `yaml:"enabled"`
	// Token falls back to the GITHUB_PAT environment variable when empty.
	Token        string `yaml:"token,omitempty"`
	PollInterval int64  `yaml:"poll_interval" validate:"min=10"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	SslPort int64  `yaml:"ssl_port" validate:"min=0,max=65535"`
	ApiKey  string `yaml:"api_key" validate:"required_if=Enabled true"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseServerParam decodes and validates a param file.
func ParseServerParam(raw []byte) (*ServerParam, error) {
	serverParam := &ServerParam{}
	if err := yaml.Unmarshal(raw, serverParam); err != nil {
		return nil, fmt.Errorf("unable to decode param file: %w", err)
	}
	if err := validate.Struct(serverParam); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return nil, fmt.Errorf("invalid param %s: failed on '%s' (%d errors): %w", fe.Namespace(), fe.Tag(), len(validationErrors), err)
		}
		return nil, fmt.Errorf("invalid param file: %w", err)
	}
	return serverParam, nil
}

func (sp *ServerParam) Location() *time.Location {
	location, err := time.LoadLocation(sp.TimeZone)
	if err != nil {
		// already checked by the validator
		return time.Local
	}
	return location
}

func (sp *ServerParam) FrameDuration() time.Duration {
	return time.Duration(sp.FrameInterval) * time.Millisecond
}

func (gp GithubParam) PollDuration() time.Duration {
	return time.Duration(gp.PollInterval) * time.Second
}
