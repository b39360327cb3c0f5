package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringHashKey(t *testing.T) {
	hello1 := &String{Value: "Hello World"}
	hello2 := &String{Value: "Hello World"}
	diff1 := &String{Value: "My name is johnny"}
	diff2 := &String{Value: "My name is johnny"}

	require.Equal(t, hello1.HashKey(), hello2.HashKey())
	require.Equal(t, diff1.HashKey(), diff2.HashKey())
	require.NotEqual(t, hello1.HashKey(), diff1.HashKey())
}

func TestBooleanHashKey(t *testing.T) {
	require.Equal(t, (&Boolean{Value: true}).HashKey(), (&Boolean{Value: true}).HashKey())
	require.NotEqual(t, (&Boolean{Value: true}).HashKey(), (&Boolean{Value: false}).HashKey())
}

func TestIntegerHashKey(t *testing.T) {
	require.Equal(t, (&Integer{Value: 1}).HashKey(), (&Integer{Value: 1}).HashKey())
	require.NotEqual(t, (&Integer{Value: 1}).HashKey(), (&Integer{Value: 2}).HashKey())
}

func TestEnvironmentOuterChain(t *testing.T) {
	outer := NewEnvironment()
	outer.Set("x", &Integer{Value: 1})

	inner := NewEnclosedEnvironment(outer)
	val, ok := inner.Get("x")
	require.True(t, ok)
	require.Equal(t, &Integer{Value: 1}, val)

	inner.Set("x", &Integer{Value: 2})
	innerVal, _ := inner.Get("x")
	outerVal, _ := outer.Get("x")
	require.Equal(t, int64(2), innerVal.(*Integer).Value)
	require.Equal(t, int64(1), outerVal.(*Integer).Value)

	_, ok = outer.Get("missing")
	require.False(t, ok)
}

func TestBuiltinsFixedOrder(t *testing.T) {
	names := make([]string, 0, len(Builtins))
	for _, b := range Builtins {
		names = append(names, b.Name)
	}
	require.Equal(t, []string{"len", "puts", "first", "last", "rest", "push"}, names)
}

func TestLenBuiltin(t *testing.T) {
	lenFn := GetBuiltinByName("len")
	require.NotNil(t, lenFn)

	require.Equal(t, &Integer{Value: 5}, lenFn.Fn(&String{Value: "hello"}))
	require.Equal(t, &Integer{Value: 3}, lenFn.Fn(&Array{Elements: []Object{&Integer{}, &Integer{}, &Integer{}}}))

	err, ok := lenFn.Fn(&Integer{Value: 1}).(*Error)
	require.True(t, ok)
	require.Equal(t, "argument to `len` not supported, got INTEGER", err.Message)

	err, ok = lenFn.Fn().(*Error)
	require.True(t, ok)
	require.Equal(t, "wrong number of arguments. got=0, want=1", err.Message)
}

func TestPushBuiltinDoesNotMutateOriginal(t *testing.T) {
	pushFn := GetBuiltinByName("push")
	original := &Array{Elements: []Object{&Integer{Value: 1}}}

	result := pushFn.Fn(original, &Integer{Value: 2})
	arr, ok := result.(*Array)
	require.True(t, ok)
	require.Len(t, arr.Elements, 2)
	require.Len(t, original.Elements, 1)
}
