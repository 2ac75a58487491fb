// Package tml implements a line-oriented calculator language.
//
// Each line is one of: an arithmetic expression, which is evaluated and stored
// in the accumulator variable _; an assignment like "x = 2^10"; a print
// expression, which starts with a string and concatenates strings with the
// values of arithmetic expressions, like `"area: " PI*r^2`; a comment starting
// with #; or nothing.
//
// Arithmetic has + - * / % and ^, where ^ binds tightest and groups to the
// right, so "-2^2^3" is "-(2^(2^3))". Function calls take one argument in
// parentheses, like "sqrt(2)". PI and E are constants that assignments cannot
// change.
//
// A Context holds the variables of a session. Lines are evaluated in float64
// arithmetic unless the context was created with a precision, in which case
// they are evaluated with math/big.
package tml
