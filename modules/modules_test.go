package modules

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/kocha-lang/kocha/core"
)

func newTestContext(t *testing.T, stdin string) (*core.Context, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	ctx := core.NewContext("<test>")
	ctx.Stdout = out
	ctx.Stdin = core.NewLineReader(strings.NewReader(stdin), out)
	ctx.Rand = rand.New(rand.NewSource(42))

	if err := Initialize(&ctx); err != nil {
		t.Fatal(err)
	}
	return &ctx, out
}

func run(t *testing.T, ctx *core.Context, source string) core.Value {
	t.Helper()
	v, err := core.Run(ctx, source)
	if err != nil {
		t.Fatalf("run %q: %v", source, err)
	}
	return v
}

func TestKorsat(t *testing.T) {
	ctx, out := newTestContext(t, "")

	v := run(t, ctx, `korsat("salom", 1, true, [1, "a"], { a: null })
korsat()`)
	if v != core.Null() {
		t.Errorf("korsat returned %s, want null", v)
	}

	want := "salom 1 true [ 1, \"a\" ] { a: null }\n\n"
	if got := out.String(); got != want {
		t.Errorf("output %q, want %q", got, want)
	}
}

func TestGapir(t *testing.T) {
	ctx, out := newTestContext(t, "Ali\n")

	v := run(t, ctx, `xullas ism endi gapir("ism? ")
korsat("salom", ism)
gapir("yana? ")`)

	if v != core.StringValue("") {
		t.Errorf("gapir at end of input = %q, want empty string", v)
	}
	if got := out.String(); got != "ism? salom Ali\nyana? " {
		t.Errorf("output %q", got)
	}

	for _, source := range []string{"gapir()", "gapir(1)", `gapir("a", "b")`} {
		if v := run(t, ctx, source); v != core.Null() {
			t.Errorf("%s = %s, want null", source, v)
		}
	}
}

type failingReader struct{}

func (failingReader) ReadLine(string) (string, error) {
	return "", errors.New("terminal gone")
}

func TestGapirReadError(t *testing.T) {
	ctx, _ := newTestContext(t, "")
	ctx.Stdin = failingReader{}

	_, err := core.Run(ctx, `gapir("> ")`)
	if err == nil || !strings.Contains(err.Error(), "terminal gone") {
		t.Fatalf("got %v, want the reader's error", err)
	}
}

func TestSon(t *testing.T) {
	ctx, _ := newTestContext(t, "")

	tests := []struct {
		source string
		want   core.Value
	}{
		{`son("42")`, core.NumberValue(42)},
		{`son("  -3.5 ")`, core.NumberValue(-3.5)},
		{`son("")`, core.NumberValue(0)},
		{`son("12abc")`, core.Null()},
		{`son("NaN")`, core.Null()},
		{`son("Inf")`, core.Null()},
		{`son(7)`, core.NumberValue(7)},
		{`son(true)`, core.Null()},
		{`son([])`, core.Null()},
	}

	for _, tt := range tests {
		if v := run(t, ctx, tt.source); !v.Eq(tt.want) {
			t.Errorf("%s = %s, want %s", tt.source, v, tt.want)
		}
	}

	_, err := core.Run(ctx, `son()`)
	if !errors.Is(err, core.ErrArityMismatch) {
		t.Errorf("son(): got %v, want %v", err, core.ErrArityMismatch)
	}
}

func TestKelishtir(t *testing.T) {
	ctx, _ := newTestContext(t, "")

	tests := []struct {
		source string
		want   float64
	}{
		{"kelishtir(2.4)", 2},
		{"kelishtir(2.5)", 3},
		{"kelishtir(-2.5)", -2},
		{"kelishtir(-2.6)", -3},
		{"kelishtir(7)", 7},
	}

	for _, tt := range tests {
		if v := run(t, ctx, tt.source); !v.Eq(core.NumberValue(tt.want)) {
			t.Errorf("%s = %s, want %v", tt.source, v, tt.want)
		}
	}

	_, err := core.Run(ctx, `kelishtir("2")`)
	if !errors.Is(err, core.ErrTypeMismatch) {
		t.Errorf("got %v, want %v", err, core.ErrTypeMismatch)
	}
}

func TestShara(t *testing.T) {
	ctx, _ := newTestContext(t, "")

	seen := map[float64]bool{}
	for i := 0; i < 200; i++ {
		v := run(t, ctx, "shara(1, 3)")
		n, ok := v.(core.NumberValue)
		if !ok {
			t.Fatalf("shara returned %s", v)
		}
		if n < 1 || n > 3 || float64(n) != float64(int(n)) {
			t.Fatalf("shara(1, 3) = %s", n)
		}
		seen[float64(n)] = true
	}
	if len(seen) != 3 {
		t.Errorf("200 draws only produced %v", seen)
	}

	v := run(t, ctx, "shara(-9007199254740992, 9007199254740992)")
	if n := v.(core.NumberValue); n < -9007199254740992 || n > 9007199254740992 {
		t.Errorf("widest allowed range gave %s", n)
	}

	if v := run(t, ctx, "shara(5, 5)"); !v.Eq(core.NumberValue(5)) {
		t.Errorf("shara(5, 5) = %s", v)
	}

	invalid := []string{
		`shara("1", 2)`,
		"shara(3, 1)",
		"shara(-5000000000000000000, 5000000000000000000)",
		"shara(0, 9007199254740994)",
		"shara(-9007199254740994, 0)",
	}
	for _, source := range invalid {
		if _, err := core.Run(ctx, source); !errors.Is(err, core.ErrTypeMismatch) {
			t.Errorf("%s: got %v, want %v", source, err, core.ErrTypeMismatch)
		}
	}
	if _, err := core.Run(ctx, "shara(1)"); !errors.Is(err, core.ErrArityMismatch) {
		t.Errorf("shara(1): got %v", err)
	}
}

func TestSharaSeeded(t *testing.T) {
	draw := func() string {
		ctx, out := newTestContext(t, "")
		run(t, ctx, "korsat(shara(1, 1000), shara(1, 1000), shara(1, 1000))")
		return out.String()
	}

	if a, b := draw(), draw(); a != b {
		t.Errorf("same seed gave %q and %q", a, b)
	}
}

func TestNativesAreConstant(t *testing.T) {
	ctx, _ := newTestContext(t, "")

	_, err := core.Run(ctx, "korsat endi 1")
	if !errors.Is(err, core.ErrConstantViolation) {
		t.Fatalf("got %v, want %v", err, core.ErrConstantViolation)
	}
}

func TestProgram(t *testing.T) {
	ctx, out := newTestContext(t, "3\n")

	source := `
# sum the numbers up to n
xullas n endi son(gapir(""))
xullas i endi 0
xullas jami endi 0
aylan (i < n) {
  i endi i + 1
  jami endi jami + i
}
korsat("jami:", jami)
`
	run(t, ctx, source)

	if got := out.String(); got != "jami: 6\n" {
		t.Errorf("output %q", got)
	}
}
