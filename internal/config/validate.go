package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "flowerd.schema.json"

var schema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
})

// ValidateSchema checks the shape and ranges of cfg against the embedded
// JSON schema.
func ValidateSchema(cfg *Config) error {
	s, err := schema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(instance); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// Validate checks the rules the schema cannot express.
func Validate(cfg *Config) error {
	if cfg.Hardware.PixelsSPI == cfg.Hardware.StatusSPI {
		return fmt.Errorf("hardware.pixels_spi and hardware.status_spi must differ")
	}

	lines := map[int]string{}
	for name, line := range map[string]int{
		"touch_line":       cfg.Hardware.TouchLine,
		"usb_line":         cfg.Hardware.USBLine,
		"charge_line":      cfg.Hardware.ChargeLine,
		"switch_line":      cfg.Hardware.SwitchLine,
		"pixels_rail_line": cfg.Hardware.PixelsRailLine,
		"motor_rail_line":  cfg.Hardware.MotorRailLine,
	} {
		if other, ok := lines[line]; ok {
			a, b := other, name
			if a > b {
				a, b = b, a
			}
			return fmt.Errorf("hardware.%s and hardware.%s share line %d", a, b, line)
		}
		lines[line] = name
	}

	if cfg.MQTT.Broker != "" && !strings.Contains(cfg.MQTT.Broker, "://") {
		return fmt.Errorf("mqtt.broker must be a URL like tcp://host:1883, got %q", cfg.MQTT.Broker)
	}
	if strings.ContainsAny(cfg.MQTT.TopicPrefix, "#+") {
		return fmt.Errorf("mqtt.topic_prefix must not contain wildcards")
	}
	return nil
}
