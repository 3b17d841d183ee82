//go:build !amd64

package device

import "errors"

func newSimulationPanel() (Panel, error) {
	return nil, errors.New("simulation mode is only available on amd64")
}
