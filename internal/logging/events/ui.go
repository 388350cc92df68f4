package events

import "github.com/atomicstack/weather-dashboard/internal/logging"

type UITracer struct{}

var UI = UITracer{}

func (UITracer) Key(key string, action string) {
	logging.Trace("ui.key", map[string]interface{}{"key": key, "action": action})
}

func (UITracer) Cursor(cursor int, region string) {
	logging.Trace("ui.cursor", map[string]interface{}{"cursor": cursor, "region": region})
}

func (UITracer) Channel(label string) {
	logging.Trace("ui.channel", map[string]interface{}{"channel": label})
}

func (UITracer) CacheUpdate(region string, size int) {
	logging.Trace("ui.cache", map[string]interface{}{"region": region, "size": size})
}
