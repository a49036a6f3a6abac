package backend

import (
	"fmt"
)

func unary(op string, v Value) (Value, error) {
	switch op {
	case "-":
		if n, ok := v.(Int); ok {
			return -n, nil
		}
	case "!":
		if b, ok := v.(Bool); ok {
			return !b, nil
		}
	}
	return nil, fmt.Errorf("operator %s not defined on %s", op, inspect(v))
}

// binary applies an arithmetic, comparison or equality operator. Int
// arithmetic wraps on overflow.
func binary(op string, l, r Value) (Value, error) {
	switch op {
	case "==":
		eq, err := equal(l, r)
		return Bool(eq), err
	case "!=":
		eq, err := equal(l, r)
		return Bool(!eq), err
	}

	a, aok := l.(Int)
	b, bok := r.(Int)
	if !aok || !bok {
		return nil, fmt.Errorf("operator %s not defined on %s and %s", op, inspect(l), inspect(r))
	}
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		return a % b, nil
	case "^":
		if b < 0 {
			return nil, fmt.Errorf("negative exponent %d", int64(b))
		}
		return power(a, b), nil
	case "<":
		return Bool(a < b), nil
	case "<=":
		return Bool(a <= b), nil
	case ">":
		return Bool(a > b), nil
	case ">=":
		return Bool(a >= b), nil
	}
	return nil, fmt.Errorf("unknown operator %s", op)
}

// power computes base^exp by squaring, wrapping like the other operators.
func power(base, exp Int) Int {
	result := Int(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func equal(l, r Value) (bool, error) {
	switch a := l.(type) {
	case Int:
		if b, ok := r.(Int); ok {
			return a == b, nil
		}
	case Bool:
		if b, ok := r.(Bool); ok {
			return a == b, nil
		}
	case String:
		if b, ok := r.(String); ok {
			return a == b, nil
		}
	case Unit:
		if _, ok := r.(Unit); ok {
			return true, nil
		}
	}
	return false, fmt.Errorf("cannot compare %s and %s", inspect(l), inspect(r))
}
