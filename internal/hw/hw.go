// Package hw drives the flower's buses through periph.io: the WS2812 pixel
// chains on SPI, the petal servo on a PWM pin and the battery ADC on I2C.
package hw

import (
	"fmt"

	"periph.io/x/host/v3"
)

// Init loads the periph host drivers. Call once before opening devices.
func Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	return nil
}
