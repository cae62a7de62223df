package infer

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jittakal/xesgen/pkg/event"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want event.Value
	}{
		{"empty becomes placeholder", "", event.Literal("novalue")},
		{"decimal", "12.50", event.Continuous(12.5)},
		{"leading zero decimal", "0.001", event.Continuous(0.001)},
		{"integer", "42", event.Discrete(42)},
		{"zero", "0", event.Discrete(0)},
		{"leading zeros", "007", event.Discrete(7)},
		{"true", "true", event.Boolean(true)},
		{"mixed case true", "TrUe", event.Boolean(true)},
		{"false", "FALSE", event.Boolean(false)},
		{"plain text", "main", event.Literal("main")},
		{"case preserved", "MyClass", event.Literal("MyClass")},
		{"multiple dots", "1.2.3", event.Literal("1.2.3")},
		{"leading sign", "-5", event.Literal("-5")},
		{"plus sign", "+5", event.Literal("+5")},
		{"exponent", "1e5", event.Literal("1e5")},
		{"no integer part", ".5", event.Literal(".5")},
		{"no fraction part", "5.", event.Literal("5.")},
		{"surrounding space", " 5", event.Literal(" 5")},
		{"yes is not boolean", "yes", event.Literal("yes")},
		{"long s is not ascii s", "fal\u017fe", event.Literal("fal\u017fe")},
		{"upper long s word", "FAL\u017fE", event.Literal("FAL\u017fE")},
		{"int64 overflow", "99999999999999999999", event.Literal("99999999999999999999")},
		{"max int64", "9223372036854775807", event.Discrete(9223372036854775807)},
		{"placeholder text itself", "novalue", event.Literal("novalue")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infer(tt.raw)
			assert.Equal(t, tt.want.Kind(), got.Kind(), "kind of %q", tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInfer_DigitsWithOneDotAreContinuous(t *testing.T) {
	f := faker.New()

	for i := 0; i < 200; i++ {
		raw := fmt.Sprintf("%d.%0*d", f.IntBetween(0, 1_000_000), f.IntBetween(1, 6), f.IntBetween(0, 999_999))
		got := Infer(raw)

		v, ok := got.AsContinuous()
		require.True(t, ok, "Infer(%q) = %v, want Continuous", raw, got.Kind())

		want, err := strconv.ParseFloat(raw, 64)
		require.NoError(t, err)
		assert.Equal(t, want, v, "magnitude of %q", raw)
	}
}

func TestInfer_DigitsAreDiscrete(t *testing.T) {
	f := faker.New()

	for i := 0; i < 200; i++ {
		n := f.IntBetween(0, 1<<30)
		raw := strconv.Itoa(n)

		v, ok := Infer(raw).AsDiscrete()
		require.True(t, ok, "Infer(%q) should be Discrete", raw)
		assert.Equal(t, int64(n), v)
	}
}

func TestInfer_BooleansIgnoreCase(t *testing.T) {
	f := faker.New()

	for _, word := range []string{"true", "false"} {
		for i := 0; i < 20; i++ {
			var b strings.Builder
			for _, r := range word {
				if f.IntBetween(0, 1) == 1 {
					b.WriteString(strings.ToUpper(string(r)))
				} else {
					b.WriteRune(r)
				}
			}
			raw := b.String()

			v, ok := Infer(raw).AsBoolean()
			require.True(t, ok, "Infer(%q) should be Boolean", raw)
			assert.Equal(t, word == "true", v)
		}
	}
}

func TestInfer_OtherTextIsLiteralVerbatim(t *testing.T) {
	f := faker.New()

	for i := 0; i < 100; i++ {
		raw := f.Person().Name()

		s, ok := Infer(raw).AsLiteral()
		require.True(t, ok, "Infer(%q) should be Literal", raw)
		assert.Equal(t, raw, s)
	}
}

func TestAttribute(t *testing.T) {
	attr := Attribute("amount", "12.50")

	assert.Equal(t, "amount", attr.Key)
	assert.Equal(t, event.Continuous(12.5), attr.Value)
}

func TestStats(t *testing.T) {
	var s Stats
	for _, raw := range []string{"1", "2", "1.5", "true", "x", ""} {
		s.Observe(Infer(raw))
	}

	assert.Equal(t, 2, s.Count(event.KindDiscrete))
	assert.Equal(t, 1, s.Count(event.KindContinuous))
	assert.Equal(t, 1, s.Count(event.KindBoolean))
	assert.Equal(t, 2, s.Count(event.KindLiteral))
	assert.Equal(t, 0, s.Count(event.Kind(42)))
	assert.Equal(t, 6, s.Total())
}

func BenchmarkInfer(b *testing.B) {
	values := []string{"main", "12.50", "42", "true", "", "com.example.Service"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Infer(values[i%len(values)])
	}
}
