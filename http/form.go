package http

import (
	"net/http"
	"strconv"
	"strings"

	"smartfraud/features"
)

// formValues holds the raw submission so the page can be re-rendered with
// what the user typed.
type formValues struct {
	Amount   string
	Gender   string
	Age      string
	State    string
	CityPop  string
	Category string
	Weekday  string
	Hour     string
	Sector   string
}

func defaultFormValues() formValues {
	return formValues{
		Amount:   "0.01",
		Gender:   "Male",
		Age:      "30",
		State:    "New York",
		Category: "Miscellaneous (online)",
		Weekday:  "Monday",
		Hour:     "12",
		Sector:   "other",
	}
}

func readForm(r *http.Request) formValues {
	get := func(key string) string { return strings.TrimSpace(r.PostFormValue(key)) }
	return formValues{
		Amount:   get("amount"),
		Gender:   get("gender"),
		Age:      get("age"),
		State:    get("state"),
		CityPop:  get("city_pop"),
		Category: get("category"),
		Weekday:  get("weekday"),
		Hour:     get("hour"),
		Sector:   get("sector"),
	}
}

// query converts the raw strings; range and enumeration checks happen in
// the feature transform.
func (f formValues) query() (features.Query, error) {
	amount, err := features.ParseAmount(f.Amount)
	if err != nil {
		return features.Query{}, err
	}
	hour, err := strconv.Atoi(f.Hour)
	if err != nil {
		return features.Query{}, &features.ValidationError{Field: "hour", Reason: "not an integer"}
	}
	age, err := strconv.Atoi(f.Age)
	if err != nil {
		return features.Query{}, &features.ValidationError{Field: "age", Reason: "not an integer"}
	}

	q := features.Query{
		Amount:   amount,
		Gender:   f.Gender,
		State:    f.State,
		Category: f.Category,
		Weekday:  f.Weekday,
		Hour:     hour,
		Age:      age,
		Sector:   f.Sector,
	}
	if f.CityPop != "" {
		pop, err := strconv.ParseInt(f.CityPop, 10, 64)
		if err != nil {
			return features.Query{}, &features.ValidationError{Field: "city_pop", Reason: "not an integer"}
		}
		q.CityPopulation = &pop
	}
	return q, nil
}
