package config

import (
	"reflect"
	"time"

	"github.com/knadh/koanf/maps"
)

// Flatten returns cfg keyed the way a config file or override names it
// ("cluster.bind_port"). Durations are rendered as strings so the output
// loads back unchanged.
func Flatten(cfg *NodeConfig) map[string]any {
	out := make(map[string]any)
	flatten("", reflect.ValueOf(cfg).Elem(), out)
	return out
}

// Nested returns cfg as nested sections, the shape of a config file.
func Nested(cfg *NodeConfig) map[string]any {
	return maps.Unflatten(Flatten(cfg), ".")
}

func flatten(prefix string, v reflect.Value, out map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("koanf")
		if tag == "" || !f.IsExported() {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		fv := v.Field(i)
		if d, ok := fv.Interface().(time.Duration); ok {
			out[key] = d.String()
			continue
		}
		if fv.Kind() == reflect.Struct {
			flatten(key, fv, out)
			continue
		}
		out[key] = fv.Interface()
	}
}
