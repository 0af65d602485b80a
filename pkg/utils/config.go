package utils

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var durationType = reflect.TypeOf(time.Duration(0))

func StringToBoolHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Bool {
			return data, nil
		}

		str := strings.ToLower(strings.TrimSpace(data.(string)))
		switch str {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off", "":
			return false, nil
		default:
			return nil, fmt.Errorf("cannot convert %q to bool", str)
		}
	}
}

func StringToIntHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Int {
			return data, nil
		}

		i, err := strconv.Atoi(strings.TrimSpace(data.(string)))
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to int: %v", data, err)
		}
		return i, nil
	}
}

// SecondsToDurationHookFunc decodes plain numbers, and strings holding
// plain numbers, into a time.Duration measured in seconds. Strings with
// a unit suffix are left for mapstructure.StringToTimeDurationHookFunc.
func SecondsToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != durationType {
			return data, nil
		}

		var seconds float64
		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case int:
			seconds = float64(v)
		case int64:
			seconds = float64(v)
		case float32:
			seconds = float64(v)
		case float64:
			seconds = v
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return data, nil
			}
			seconds = parsed
		default:
			return data, nil
		}

		return time.Duration(seconds * float64(time.Second)), nil
	}
}

// Custom unmarshal function to handle time.Duration, bool and int values
// arriving as strings from the environment.
func UnmarshalConfig(v *viper.Viper, cfg interface{}) error {
	hook := mapstructure.ComposeDecodeHookFunc(
		SecondsToDurationHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		StringToBoolHookFunc(),
		StringToIntHookFunc(),
	)

	decoderConfig := &mapstructure.DecoderConfig{
		DecodeHook:       hook,
		Result:           cfg,
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return err
	}
	return decoder.Decode(v.AllSettings())
}
