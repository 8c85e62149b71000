package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"smartfraud/features"
	"smartfraud/ml"
	"smartfraud/verdict"
)

// Scores a single transaction against a model artifact from the command
// line, without starting the server.
func main() {
	modelPath := flag.String("model_path", "./models/finish_model.json", "model artifact path")
	amount := flag.String("amount", "0.01", "transaction amount (USD)")
	gender := flag.String("gender", "Male", "Male or Female")
	state := flag.String("state", "New York", "state name")
	cityPop := flag.Int64("city_pop", -1, "city population; negative uses the state lookup")
	category := flag.String("category", "Miscellaneous (online)", "category label or code")
	weekday := flag.String("weekday", "Monday", "weekday name")
	hour := flag.Int("hour", 12, "hour of day (0-23)")
	age := flag.Int("age", 30, "age")
	sector := flag.String("sector", "other", "employment sector")
	flag.Parse()

	model, err := ml.LoadModel(*modelPath)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}
	fmt.Printf("model %s %s (%s), features: %s\n",
		model.Name, model.Version, model.Type, strings.Join(model.Columns(), ", "))

	amt, err := features.ParseAmount(*amount)
	if err != nil {
		log.Fatalf("invalid amount %q: %v", *amount, err)
	}
	q := features.Query{
		Amount:   amt,
		Gender:   *gender,
		State:    *state,
		Category: *category,
		Weekday:  *weekday,
		Hour:     *hour,
		Age:      *age,
		Sector:   *sector,
	}
	if *cityPop >= 0 {
		q.CityPopulation = cityPop
	}

	rec, err := features.NewTransformer(nil).Transform(q)
	if err != nil {
		log.Fatalf("invalid transaction: %v", err)
	}
	label, err := model.Predict(rec)
	if err != nil {
		log.Fatalf("predict: %v", err)
	}
	proba, err := model.PredictProba(rec)
	if err != nil {
		log.Fatalf("predict proba: %v", err)
	}
	v, err := verdict.FromProba(label, proba)
	if err != nil {
		log.Fatalf("render verdict: %v", err)
	}

	fmt.Printf("\n%s\n%s\n\n", v.Headline, v.Detail)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Variable\tValue")
	for _, row := range verdict.Summary(q, rec) {
		fmt.Fprintf(tw, "%s\t%s\n", row.Variable, row.Value)
	}
	tw.Flush()
}
