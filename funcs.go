package tml

import (
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a function from reals to reals.
type Func interface {
	// Call evaluates the function in float64 arithmetic. Arguments outside
	// the function's domain give NaN.
	Call(x float64) float64

	// CallBig evaluates the function to the precision of r and sets r to the
	// result. It must not modify x. If x is outside the function's domain,
	// CallBig returns an error that unwraps to big.ErrNaN.
	CallBig(r, x *big.Float) error
}

var globalfuncs = map[string]Func{
	"floor": MonadicBig(math.Floor, bigFloor),
	"ceil":  MonadicBig(math.Ceil, bigCeil),
	"round": MonadicBig(math.Round, bigRound),
	"trunc": MonadicBig(math.Trunc, bigTrunc),
	"fract": MonadicBig(fract, bigFract),
	"sqrt":  MonadicBig(math.Sqrt, (*big.Float).Sqrt),
	"exp":   MonadicBig(math.Exp, bigExp),
	"ln":    MonadicBig(math.Log, bigLn),
	"log2":  MonadicBig(math.Log2, bigLog(2)),
	"log10": MonadicBig(math.Log10, bigLog(10)),

	// trig, not implemented in dependencies
	"cos":  Monadic(math.Cos),
	"sin":  Monadic(math.Sin),
	"tan":  Monadic(math.Tan),
	"acos": Monadic(math.Acos),
	"asin": Monadic(math.Asin),
	"atan": Monadic(math.Atan),
}

// Funcs returns the names of the built-in functions.
func Funcs() []string {
	r := make([]string, 0, len(globalfuncs))
	for k := range globalfuncs {
		r = append(r, k)
	}
	sortstrs(r)
	return r
}

// DisableDefaultFuncs returns an option that removes all built-in functions
// from a context.
func DisableDefaultFuncs() ContextOption {
	m := make(funcsopt, len(globalfuncs))
	for k := range globalfuncs {
		m[k] = nil
	}
	return m
}

type monadic struct {
	f func(float64) float64
	b func(out, in *big.Float) *big.Float
}

func (m monadic) Call(x float64) float64 {
	return m.f(x)
}

func (m monadic) CallBig(r, x *big.Float) (err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if e, ok := p.(big.ErrNaN); ok {
			err = e
			return
		}
		panic(p)
	}()
	if m.b == nil || x.IsInf() {
		// No arbitrary precision implementation, or one that may not
		// handle infinities. SetFloat64 panics with ErrNaN on NaN.
		f, _ := x.Float64()
		r.SetFloat64(m.f(f))
		return nil
	}
	in := x
	if r == x {
		in = new(big.Float).Copy(x)
	}
	r.Set(m.b(r, in))
	return nil
}

// Monadic wraps a float64 function into a Func. In arbitrary precision
// evaluation, the argument is rounded to float64.
func Monadic(f func(float64) float64) Func {
	return monadic{f: f}
}

// MonadicBig wraps a function with float64 and arbitrary precision
// implementations into a Func. b returns its result, which need not be out;
// the result is rounded to the precision of out. If b is called on an argument
// outside its domain, it should panic with an error of type big.ErrNaN.
func MonadicBig(f func(float64) float64, b func(out, in *big.Float) *big.Float) Func {
	return monadic{f: f, b: b}
}

// constant is a reserved name with a fixed value.
type constant struct {
	f float64
	b func(out *big.Float) *big.Float
}

// constants are resolved before variables, so assignments to them never
// change their values.
var constants = map[string]constant{
	"PI": {math.Pi, bigfloat.Pi},
	"E": {math.E, func(out *big.Float) *big.Float {
		var one big.Float
		one.SetFloat64(1)
		return out.Set(bigfloat.Exp(new(big.Float).SetPrec(out.Prec()), &one))
	}},
}

// Reserved reports whether name is a reserved constant.
func Reserved(name string) bool {
	_, ok := constants[name]
	return ok
}

func fract(x float64) float64 {
	return x - math.Trunc(x)
}

// bigLn is the natural logarithm with math.Log's behavior at zero.
func bigLn(out, in *big.Float) *big.Float {
	switch {
	case in.Sign() < 0:
		panic(big.ErrNaN{})
	case in.Sign() == 0:
		return out.SetInf(true)
	}
	return out.Set(bigfloat.Log(new(big.Float).SetPrec(out.Prec()), in))
}

func bigLog(base float64) func(out, in *big.Float) *big.Float {
	return func(out, in *big.Float) *big.Float {
		n := bigLn(new(big.Float).SetPrec(out.Prec()), in)
		b := new(big.Float).SetPrec(out.Prec()).SetFloat64(base)
		d := bigfloat.Log(new(big.Float).SetPrec(out.Prec()), b)
		return out.Quo(n, d)
	}
}

// bigExp is e^x. Results beyond the exponent range of big.Float are
// infinite or zero.
func bigExp(out, in *big.Float) *big.Float {
	f, _ := in.Float64()
	switch lg := f * math.Log2E; {
	case lg > big.MaxExp:
		return out.SetInf(false)
	case lg < big.MinExp:
		return out.SetInt64(0)
	}
	return out.Set(bigfloat.Exp(new(big.Float).SetPrec(out.Prec()), in))
}

func bigTrunc(out, in *big.Float) *big.Float {
	if in.IsInf() || in.IsInt() {
		return out.Set(in)
	}
	i, _ := in.Int(nil)
	return out.SetInt(i)
}

func bigFloor(out, in *big.Float) *big.Float {
	t := bigTrunc(new(big.Float).SetPrec(out.Prec()), in)
	if in.Sign() < 0 && t.Cmp(in) != 0 {
		t.Sub(t, big.NewFloat(1))
	}
	return out.Set(t)
}

func bigCeil(out, in *big.Float) *big.Float {
	t := bigTrunc(new(big.Float).SetPrec(out.Prec()), in)
	if in.Sign() > 0 && t.Cmp(in) != 0 {
		t.Add(t, big.NewFloat(1))
	}
	return out.Set(t)
}

// bigRound rounds half away from zero.
func bigRound(out, in *big.Float) *big.Float {
	if in.IsInf() || in.IsInt() {
		return out.Set(in)
	}
	h := new(big.Float).SetPrec(in.Prec() + 2).Abs(in)
	h.Add(h, big.NewFloat(0.5))
	bigTrunc(h, h)
	if in.Sign() < 0 {
		h.Neg(h)
	}
	return out.Set(h)
}

func bigFract(out, in *big.Float) *big.Float {
	t := bigTrunc(new(big.Float).SetPrec(out.Prec()), in)
	return out.Sub(in, t)
}

// bigMod is the remainder of x/y with the sign of x, like math.Mod.
func bigMod(out, x, y *big.Float) *big.Float {
	if y.Sign() == 0 || x.IsInf() {
		panic(big.ErrNaN{})
	}
	if y.IsInf() {
		return out.Set(x)
	}
	q := new(big.Float).SetPrec(max(out.Prec(), x.Prec())).Quo(x, y)
	bigTrunc(q, q)
	q.Mul(q, y)
	return out.Sub(x, q)
}

// bigPow is x^y. Negative bases are allowed only with integer exponents.
// Results beyond the exponent range of big.Float are infinite or zero, as with
// float64.
func bigPow(out, x, y *big.Float) *big.Float {
	if x.IsInf() || y.IsInf() {
		a, _ := x.Float64()
		b, _ := y.Float64()
		return out.SetFloat64(math.Pow(a, b))
	}
	switch {
	case y.Sign() == 0:
		return out.SetInt64(1)
	case x.Sign() == 0:
		if y.Sign() < 0 {
			return out.SetInf(false)
		}
		return out.SetInt64(0)
	}
	neg := false
	if x.Sign() < 0 {
		if !y.IsInt() {
			panic(big.ErrNaN{})
		}
		i, _ := y.Int(nil)
		neg = i.Bit(0) == 1
	}
	prec := max(out.Prec(), x.Prec())
	a := new(big.Float).SetPrec(prec).Abs(x)
	var r *big.Float
	switch lg := powExp(a, y); {
	case a.Cmp(big.NewFloat(1)) == 0:
		r = a
	case lg > big.MaxExp:
		r = new(big.Float).SetInf(false)
	case lg < big.MinExp:
		r = new(big.Float)
	default:
		r = bigfloat.Pow(new(big.Float).SetPrec(prec), a, new(big.Float).Copy(y))
	}
	out.Set(r)
	if neg {
		out.Neg(out)
	}
	return out
}

// powExp estimates the binary exponent of a^y for positive finite a.
func powExp(a, y *big.Float) float64 {
	var m big.Float
	e := a.MantExp(&m)
	f, _ := m.Float64()
	g, _ := y.Float64()
	return g * (float64(e) + math.Log2(f))
}
