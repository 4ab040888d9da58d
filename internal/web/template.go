package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/flower-controller/internal/color"
	"github.com/sweeney/flower-controller/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime":         formatDuration,
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"swatch": func(c color.HSB) template.CSS {
		r, g, b := c.RGB8()
		return template.CSS(fmt.Sprintf("background: #%02x%02x%02x", r, g, b))
	},
	"yesno": func(v bool) string {
		if v {
			return "yes"
		}
		return "no"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Config.Name}}</title>
<style>
body { font: 14px/1.4 monospace; max-width: 36em; margin: 1.5em auto; padding: 0 1em; color: #222; }
h1 { font-size: 1.3em; margin-bottom: 0.2em; }
h2 { font-size: 1em; margin: 1.4em 0 0.3em; text-transform: uppercase; color: #666; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 3px 6px; border-bottom: 1px dotted #ccc; }
th { width: 35%; font-weight: normal; color: #555; }
.swatch { display: inline-block; width: 1em; height: 1em; border: 1px solid #888; vertical-align: middle; }
.up { color: #2a7d2a; }
.down { color: #b22; }
.live-dot { display: inline-block; width: 0.6em; height: 0.6em; border-radius: 50%; margin-left: 0.4em; background: #e90; }
.live-dot.ok { background: #2a7d2a; }
.live-dot.err { background: #b22; }
</style>
</head>
<body>
<h1>{{.Config.Name}}<span id="live-dot" class="live-dot" title="connecting"></span></h1>

<h2>Flower</h2>
<table>
<tr><th>State</th><td id="state">{{stateOrUnknown .Flower.State}}</td></tr>
<tr><th>Petals</th><td id="petals">{{.Flower.Petals}}%</td></tr>
<tr><th>Color</th><td><span id="swatch" class="swatch" style="{{swatch .Flower.Color}}"></span> <span id="color">{{printf "%.2f %.2f %.2f" .Flower.Color.H .Flower.Color.S .Flower.Color.B}}</span></td></tr>
<tr><th>Status light</th><td id="indicator">{{.Flower.Indicator}}</td></tr>
</table>

<h2>Power</h2>
<table>
<tr><th>Battery</th><td id="battery">{{.Power.BatteryLevel}}% ({{printf "%.2f" .Power.BatteryVoltage}} V)</td></tr>
<tr><th>USB</th><td>{{yesno .Power.USBPowered}}</td></tr>
<tr><th>Charging</th><td>{{yesno .Power.Charging}}</td></tr>
<tr><th>Deep sleep</th><td>{{if not .Config.DeepSleep}}disabled{{else if .SleepIn}}in {{uptime .SleepIn}}{{else}}not planned{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Bluetooth</th><td>{{if .Links.BluetoothConnected}}connected{{else if .Links.BluetoothEnabled}}on{{else}}off{{end}}</td></tr>
<tr><th>Wi-Fi</th><td>{{if .Links.WifiConnected}}connected{{else if .Links.WifiEnabled}}on{{else}}off{{end}}</td></tr>
<tr><th>MQTT</th>{{if .MQTTConnected}}<td class="up">connected</td>{{else}}<td class="down">disconnected</td>{{end}}</tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Update</th><td>{{if .Links.UpdateRunning}}running{{else}}idle{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02 15:04:05"}} UTC</td></tr>
<tr><th>Transitions</th><td>{{.Transitions}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">index.json</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  function set(id, text) { document.getElementById(id).textContent = text; }
  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.onopen = function() { dot.className = "live-dot ok"; dot.title = "live"; };
    ws.onclose = function() { dot.className = "live-dot err"; dot.title = "offline"; setTimeout(connect, 5000); };
    ws.onmessage = function(e) {
      try {
        var s = JSON.parse(e.data).status;
        set("state", s.state);
        set("petals", s.flower.petals + "%");
        set("color", [s.flower.color.h, s.flower.color.s, s.flower.color.b].map(function(v) { return v.toFixed(2); }).join(" "));
        document.getElementById("swatch").style.background = "hsl(" + Math.round(s.flower.color.h * 360) + "," + Math.round(s.flower.color.s * 100) + "%," + Math.round(s.flower.color.b * 50) + "%)";
        set("indicator", s.flower.indicator);
        set("battery", s.power.battery_level + "% (" + s.power.battery_voltage.toFixed(2) + " V)");
      } catch (err) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

// formatDuration renders d as "3d 4h 5m 6s", dropping leading zero units.
func formatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	parts := []struct {
		n    int64
		unit string
	}{
		{secs / 86400, "d"},
		{secs / 3600 % 24, "h"},
		{secs / 60 % 60, "m"},
		{secs % 60, "s"},
	}
	var b strings.Builder
	for i, p := range parts {
		if b.Len() == 0 && p.n == 0 && i < len(parts)-1 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d%s", p.n, p.unit)
	}
	return b.String()
}

func renderHTML(w io.Writer, snap status.Snapshot) error {
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
