package event_test

import (
	"fmt"

	"github.com/jittakal/xesgen/pkg/event"
)

func ExampleAttributes_Put() {
	attrs := event.NewAttributes(2)
	attrs.Put(event.Attribute{Key: "concept:name", Value: event.Literal("7")})
	attrs.Put(event.Attribute{Key: "amount", Value: event.Continuous(12.5)})
	attrs.Put(event.Attribute{Key: "concept:name", Value: event.Literal("main")})

	for _, attr := range attrs.List() {
		fmt.Printf("%s %s=%s\n", attr.Value.Kind(), attr.Key, attr.Value)
	}
	// Output:
	// string concept:name=main
	// float amount=12.5
}

func ExampleClassifier_Identity() {
	attrs := event.NewAttributes(2)
	attrs.Put(event.Attribute{Key: "concept:name", Value: event.Literal("main")})
	attrs.Put(event.Attribute{Key: "swevent:callee-lineNr", Value: event.Discrete(12)})

	c := event.Classifier{
		Name: "Callee Joinpoint",
		Keys: []string{"concept:name", "swevent:callee-lineNr"},
	}

	fmt.Println(c.Identity(event.NewEvent(attrs)))
	// Output: main+12
}
