// Package assert re-exports the gotest.tools and testify assertions the
// test suites lean on, with two adjustments: failures involving errors
// print the full eris trace instead of the one-line message, and error
// identity checks unwrap to the eris cause on both sides so wrapped
// sentinels still match.
package assert

import (
	gocmp "github.com/google/go-cmp/cmp"
	"github.com/rotisserie/eris"
	testify "github.com/stretchr/testify/assert"
	gotest "gotest.tools/v3/assert"
)

// mark flags the calling wrapper as a helper so failures report the
// test's own line, not this file.
func mark(t any) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
}

// withTrace prepends the eris-rendered trace of err to the failure
// message arguments.
func withTrace(err error, msgAndArgs []interface{}) []interface{} {
	return append([]interface{}{eris.ToString(err, true)}, msgAndArgs...)
}

func Assert(t gotest.TestingT, comparison gotest.BoolOrComparison, msgAndArgs ...interface{}) {
	mark(t)
	gotest.Assert(t, comparison, msgAndArgs...)
}

func Check(t gotest.TestingT, comparison gotest.BoolOrComparison, msgAndArgs ...interface{}) bool {
	mark(t)
	return gotest.Check(t, comparison, msgAndArgs...)
}

func NilError(t gotest.TestingT, err error, msgAndArgs ...interface{}) {
	mark(t)
	gotest.NilError(t, err, withTrace(err, msgAndArgs)...)
}

func Equal(t gotest.TestingT, x, y interface{}, msgAndArgs ...interface{}) {
	mark(t)
	gotest.Equal(t, x, y, msgAndArgs...)
}

func DeepEqual(t gotest.TestingT, x, y interface{}, opts ...gocmp.Option) {
	mark(t)
	gotest.DeepEqual(t, x, y, opts...)
}

func ErrorContains(t gotest.TestingT, err error, substring string, msgAndArgs ...interface{}) {
	mark(t)
	gotest.ErrorContains(t, eris.Cause(err), substring, withTrace(err, msgAndArgs)...)
}

func ErrorIs(t gotest.TestingT, err error, expected error, msgAndArgs ...interface{}) {
	mark(t)
	gotest.ErrorIs(t, eris.Cause(err), eris.Cause(expected), withTrace(err, msgAndArgs)...)
}

// IsError asserts err is non-nil. The name avoids clashing with
// gotest's Error, which asserts on the message instead.
func IsError(t testify.TestingT, err error, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.Error(t, err, withTrace(err, msgAndArgs)...)
}

func True(t testify.TestingT, value bool, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.True(t, value, msgAndArgs...)
}

func False(t testify.TestingT, value bool, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.False(t, value, msgAndArgs...)
}

func Len(t testify.TestingT, object interface{}, length int, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.Len(t, object, length, msgAndArgs...)
}

func NotEqual(t testify.TestingT, expected, actual interface{}, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.NotEqual(t, expected, actual, msgAndArgs...)
}

func NotEmpty(t testify.TestingT, object interface{}, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.NotEmpty(t, object, msgAndArgs...)
}

func NotZero(t testify.TestingT, i interface{}, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.NotZero(t, i, msgAndArgs...)
}

func ElementsMatch(t testify.TestingT, listA, listB interface{}, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.ElementsMatch(t, listA, listB, msgAndArgs...)
}

func InDelta(t testify.TestingT, expected, actual interface{}, delta float64, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.InDelta(t, expected, actual, delta, msgAndArgs...)
}

func InDeltaSlice(t testify.TestingT, expected, actual interface{}, delta float64, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.InDeltaSlice(t, expected, actual, delta, msgAndArgs...)
}

func JSONEq(t testify.TestingT, expected string, actual string, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.JSONEq(t, expected, actual, msgAndArgs...)
}

func FileExists(t testify.TestingT, path string, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.FileExists(t, path, msgAndArgs...)
}

func NoFileExists(t testify.TestingT, path string, msgAndArgs ...interface{}) bool {
	mark(t)
	return testify.NoFileExists(t, path, msgAndArgs...)
}
