package power

import "testing"

func TestBatteryCritical(t *testing.T) {
	tests := []struct {
		name  string
		facts Facts
		want  bool
	}{
		{"battery low unplugged", Facts{BatteryVoltage: 3.3}, true},
		{"battery low on usb", Facts{BatteryVoltage: 3.3, USBPowered: true}, false},
		{"battery ok", Facts{BatteryVoltage: 3.9}, false},
		{"exactly threshold", Facts{BatteryVoltage: LowBatteryThreshold}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.facts.BatteryCritical(); got != tt.want {
				t.Errorf("BatteryCritical: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelFromVoltage(t *testing.T) {
	tests := []struct {
		v    float64
		want int
	}{
		{3.0, 0},
		{3.3, 0},
		{3.76, 51},
		{4.2, 100},
		{4.5, 100},
	}
	for _, tt := range tests {
		if got := LevelFromVoltage(tt.v); got != tt.want {
			t.Errorf("LevelFromVoltage(%v): got %d, want %d", tt.v, got, tt.want)
		}
	}
}
