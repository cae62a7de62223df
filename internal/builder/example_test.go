package builder_test

import (
	"fmt"

	"github.com/jittakal/xesgen/internal/builder"
	"github.com/jittakal/xesgen/internal/mapping"
)

func ExampleBuildLog() {
	header := []string{"id", "amount", "flag"}
	rows := [][]string{{"7", "12.50", "true"}}
	table := mapping.Resolve(mapping.MapLookup{"event.conceptName": "id"})

	log, err := builder.BuildLog(header, rows, table, builder.Metadata{
		Author:      "Jane Doe",
		Affiliation: "PNU",
		Contact:     "jane@example.com",
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, attr := range log.Traces[0].Events[0].Attributes() {
		fmt.Printf("%s %s=%s\n", attr.Value.Kind(), attr.Key, attr.Value)
	}
	// Output:
	// float amount=12.5
	// boolean flag=true
	// string concept:name=7
}
