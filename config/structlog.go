package config

import (
	"reflect"
	"strings"

	"github.com/golang/glog"
)

type logMsg func(string, ...interface{})

var mapregex = strings.NewReplacer("[", "", "]", "")

// logGeneral logs every leaf of a configuration struct through glog.
func logGeneral(v reflect.Value, prefix string) {
	logStructWithLogger(v, prefix, glog.Infof)
}

// logStructWithLogger walks v and logs "key: value" for each field, using the mapstructure tag as key.
// Fields whose key contains "password" are redacted.
func logStructWithLogger(v reflect.Value, prefix string, logger logMsg) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldName := field.Tag.Get("mapstructure")
		if fieldName == "" {
			fieldName = "((" + field.Name + "))"
		}
		logField(v.Field(i), prefix+fieldName, logger)
	}
}

func logField(value reflect.Value, key string, logger logMsg) {
	switch value.Kind() {
	case reflect.Struct:
		logStructWithLogger(value, key+".", logger)
	case reflect.Map:
		for _, mapKey := range value.MapKeys() {
			logField(value.MapIndex(mapKey), key+"["+mapregex.Replace(mapKey.String())+"]", logger)
		}
	default:
		if strings.Contains(key, "password") {
			logger("%s: <REDACTED>", key)
			return
		}
		if !value.CanInterface() {
			logger("%s: %v", key, value)
			return
		}
		logger("%s: %v", key, value.Interface())
	}
}
