// Package clicfg copies urfave/cli flag values into a struct via `flag`
// tags, so services depend on a plain config struct instead of the CLI.
package clicfg

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/urfave/cli/v3"
)

var (
	ErrCannotParseFlags = errors.New("cannot parse flags")
)

var durationType = reflect.TypeOf(time.Duration(0))

func ParseFlags(c *cli.Command, s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: expected pointer to struct, got %T", ErrCannotParseFlags, s)
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		flagName := field.Tag.Get("flag")
		if flagName == "" || !fieldValue.CanSet() {
			continue
		}

		if field.Type == durationType {
			fieldValue.SetInt(int64(c.Duration(flagName)))
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			fieldValue.SetString(c.String(flagName))
		case reflect.Bool:
			fieldValue.SetBool(c.Bool(flagName))
		case reflect.Int, reflect.Int64:
			fieldValue.SetInt(int64(c.Int(flagName)))
		default:
			return fmt.Errorf("%w: unsupported field type %s for flag %q", ErrCannotParseFlags, field.Type, flagName)
		}
	}

	return nil
}
