// Package features turns a submitted transaction into the flat feature
// record the fraud classifier expects.
package features

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount the form accepts.
var MaxAmount = decimal.NewFromInt(1_000_000)

const (
	AmountPlaces      = 2
	maxAmountDigits   = 6
	maxAmountLength   = 32
	MaxAge            = 120
	MaxHour           = 23
	MaxCityPopulation = 10_000_000
)

// Column names in the order the classifier was trained with.
const (
	ColAmount   = "amt"
	ColGender   = "gender"
	ColState    = "state"
	ColCityPop  = "city_pop"
	ColCategory = "category"
	ColWeekday  = "weekday"
	ColHourSin  = "hour_sin"
	ColHourCos  = "hour_cos"
	ColAge      = "age"
	ColSector   = "sector"
)

// Columns is the default feature order.
var Columns = []string{
	ColAmount, ColGender, ColState, ColCityPop, ColCategory,
	ColWeekday, ColHourSin, ColHourCos, ColAge, ColSector,
}

// Query is one transaction as submitted through the form.
type Query struct {
	Amount         decimal.Decimal
	Gender         string
	State          string
	CityPopulation *int64 // overrides the state lookup when set
	Category       string
	Weekday        string
	Hour           int
	Age            int
	Sector         string
}

// Record is the engineered feature record.
type Record struct {
	Amount            float64
	Gender            int
	StateAbbreviation string
	CityPopulation    int64
	Category          string
	Weekday           int
	HourSin           float64
	HourCos           float64
	Age               int
	Sector            string
}

// Value is a single feature value; categorical columns carry Text.
type Value struct {
	Number      float64
	Text        string
	Categorical bool
}

// Get returns the named column.
func (r Record) Get(column string) (Value, bool) {
	switch column {
	case ColAmount:
		return Value{Number: r.Amount}, true
	case ColGender:
		return Value{Number: float64(r.Gender)}, true
	case ColState:
		return Value{Text: r.StateAbbreviation, Categorical: true}, true
	case ColCityPop:
		return Value{Number: float64(r.CityPopulation)}, true
	case ColCategory:
		return Value{Text: r.Category, Categorical: true}, true
	case ColWeekday:
		return Value{Number: float64(r.Weekday)}, true
	case ColHourSin:
		return Value{Number: r.HourSin}, true
	case ColHourCos:
		return Value{Number: r.HourCos}, true
	case ColAge:
		return Value{Number: float64(r.Age)}, true
	case ColSector:
		return Value{Text: r.Sector, Categorical: true}, true
	}
	return Value{}, false
}

// HourEncoding maps an hour of day onto the unit circle so that 23h and
// 0h end up next to each other.
func HourEncoding(hour int) (sin, cos float64) {
	rad := 2 * math.Pi * float64(hour) / 24
	return math.Sin(rad), math.Cos(rad)
}

// Transformer applies the lookup tables to a Query.
type Transformer struct {
	states StateDirectory
}

// NewTransformer uses the built-in state tables when states is nil.
func NewTransformer(states StateDirectory) *Transformer {
	if states == nil {
		states = DefaultStates()
	}
	return &Transformer{states: states}
}

// States exposes the directory, mostly for building the form.
func (t *Transformer) States() StateDirectory {
	return t.states
}

// Transform validates q and derives its feature record.
func (t *Transformer) Transform(q Query) (Record, error) {
	if err := Validate(q); err != nil {
		return Record{}, err
	}

	gender, _ := GenderFlag(q.Gender)
	category, _ := CategoryCode(q.Category)
	weekday, _ := WeekdayIndex(q.Weekday)
	state := t.states.Resolve(q.State)
	hourSin, hourCos := HourEncoding(q.Hour)

	population := state.Population
	if q.CityPopulation != nil {
		population = *q.CityPopulation
	}

	return Record{
		Amount:            q.Amount.InexactFloat64(),
		Gender:            gender,
		StateAbbreviation: state.Abbreviation,
		CityPopulation:    population,
		Category:          category,
		Weekday:           weekday,
		HourSin:           hourSin,
		HourCos:           hourCos,
		Age:               q.Age,
		Sector:            normalizeLabel(q.Sector),
	}, nil
}

// ValidationError names the offending form field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ParseAmount reads a plain decimal amount such as "250" or "12.50".
// Exponent notation is refused; trailing zeros after the point are dropped
// before the scale is checked.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, invalid("amount", "is required")
	}
	if len(s) > maxAmountLength || strings.ContainsAny(s, "eE") {
		return decimal.Decimal{}, invalid("amount", "not a number")
	}
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, invalid("amount", "not a number")
	}
	return amount, nil
}

// Validate checks ranges and enumerations. State is not checked: any name
// resolves, unknown ones to "others".
func Validate(q Query) error {
	if q.Amount.IsNegative() {
		return invalid("amount", "must not be negative")
	}
	// comparing rescales to the smaller exponent, so the scale is bounded first
	if q.Amount.Exponent() < -AmountPlaces {
		return invalid("amount", "must have at most %d decimal places", AmountPlaces)
	}
	if q.Amount.Exponent() > maxAmountDigits {
		return invalid("amount", "is out of range")
	}
	if q.Amount.GreaterThan(MaxAmount) {
		return invalid("amount", "must not exceed %s", MaxAmount.String())
	}
	if _, ok := GenderFlag(q.Gender); !ok {
		return invalid("gender", "unknown value %q", q.Gender)
	}
	if q.CityPopulation != nil && (*q.CityPopulation < 0 || *q.CityPopulation > MaxCityPopulation) {
		return invalid("city_pop", "must be between 0 and %d", MaxCityPopulation)
	}
	if _, ok := CategoryCode(q.Category); !ok {
		return invalid("category", "unknown value %q", q.Category)
	}
	if _, ok := WeekdayIndex(q.Weekday); !ok {
		return invalid("weekday", "unknown value %q", q.Weekday)
	}
	if q.Hour < 0 || q.Hour > MaxHour {
		return invalid("hour", "must be between 0 and %d", MaxHour)
	}
	if q.Age < 0 || q.Age > MaxAge {
		return invalid("age", "must be between 0 and %d", MaxAge)
	}
	if !IsSector(q.Sector) {
		return invalid("sector", "unknown value %q", q.Sector)
	}
	return nil
}
