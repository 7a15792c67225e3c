// ABOUTME: Clock is a time-of-day / duration column value.
// ABOUTME: Stored as `time` on PostgreSQL and as HH:MM:SS text elsewhere.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Clock is a duration within a single day. Like PostgreSQL's time type the
// range is [00:00:00, 24:00:00], end of day included.
type Clock time.Duration

const day = 24 * time.Hour

// NewClock builds a Clock from hours, minutes, and seconds.
func NewClock(hours, minutes, seconds int) Clock {
	return Clock(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second)
}

// ParseClock accepts "HH:MM:SS[.ffffff]", "HH:MM", or a Go duration such as "1h30m".
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse clock: empty value")
	}

	if strings.Contains(s, ":") {
		if isEndOfDay(s) {
			return Clock(day), nil
		}
		for _, layout := range []string{"15:04:05.999999999", "15:04"} {
			t, err := time.Parse(layout, s)
			if err == nil {
				return clockOf(t), nil
			}
		}
		return 0, fmt.Errorf("parse clock %q: want HH:MM:SS", s)
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	c := Clock(d)
	if err := c.validate(); err != nil {
		return 0, err
	}
	return c, nil
}

// isEndOfDay reports whether s spells 24:00 with any zero seconds or fraction.
func isEndOfDay(s string) bool {
	rest, ok := strings.CutPrefix(s, "24:00")
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	rest, ok = strings.CutPrefix(rest, ":00")
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	return strings.HasPrefix(rest, ".") && len(rest) > 1 && strings.Trim(rest[1:], "0") == ""
}

// clockOf drops the date part of t.
func clockOf(t time.Time) Clock {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Clock(t.Sub(midnight))
}

// Duration returns c as a time.Duration.
func (c Clock) Duration() time.Duration {
	return time.Duration(c)
}

// String formats c as HH:MM:SS, with microseconds only when present.
func (c Clock) String() string {
	d := time.Duration(c)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	sec := d / time.Second
	d -= sec * time.Second

	out := fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
	if us := d / time.Microsecond; us > 0 {
		out += fmt.Sprintf(".%06d", us)
	}
	return out
}

func (c Clock) validate() error {
	if c < 0 || time.Duration(c) > day {
		return fmt.Errorf("clock %s out of range: must be within a day", time.Duration(c))
	}
	return nil
}

// Value implements driver.Valuer.
func (c Clock) Value() (driver.Value, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c.String(), nil
}

// Scan implements sql.Scanner.
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = 0
		return nil
	case string:
		parsed, err := ParseClock(v)
		if err != nil {
			return err
		}
		*c = parsed
	case []byte:
		parsed, err := ParseClock(string(v))
		if err != nil {
			return err
		}
		*c = parsed
	case time.Time:
		*c = clockOf(v)
	case int64:
		// microseconds since midnight
		*c = Clock(time.Duration(v) * time.Microsecond)
	default:
		return fmt.Errorf("scan clock: unsupported type %T", src)
	}
	return c.validate()
}

// GormDataType implements schema.GormDataTypeInterface.
func (Clock) GormDataType() string {
	return "time"
}

// GormDBDataType picks the column type per dialect. SQLite keeps the
// value as text so drivers do not try to parse it as a timestamp.
func (Clock) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "time"
	default:
		return "text"
	}
}

// MarshalJSON encodes c as "HH:MM:SS".
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts anything ParseClock accepts.
func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode clock: %w", err)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML encodes c as "HH:MM:SS".
func (c Clock) MarshalYAML() (any, error) {
	return c.String(), nil
}

// UnmarshalYAML accepts anything ParseClock accepts.
func (c *Clock) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseClock(node.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
