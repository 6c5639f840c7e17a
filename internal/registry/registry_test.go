package registry

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/unitgrid/internal/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type echoModule struct {
	got *Arguments
}

func (m echoModule) Register(r *Registry) {
	r.RegisterHandler("echo", &RegisteredHandler{
		Arguments: map[string]Argument{
			"message": {Type: cty.String, Required: true},
			"times":   {Type: cty.Number},
			"wait":    {Type: cty.String},
		},
		Fn: func(_ context.Context, args Arguments) error {
			*m.got = args
			return nil
		},
	})
}

func TestBind(t *testing.T) {
	var got Arguments
	r := New(echoModule{got: &got})

	fn, err := r.Bind("echo", map[string]cty.Value{
		"message": cty.StringVal("hi"),
		"times":   cty.StringVal("3"),
		"wait":    cty.StringVal("250ms"),
	})
	require.NoError(t, err)
	require.NoError(t, fn(context.Background()))

	msg, err := got.String("message", "")
	require.NoError(t, err)
	assert.Equal(t, "hi", msg)

	times, err := got.Int("times", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, times, "strings convert to the declared number type")

	wait, err := got.Duration("wait", 0)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, wait)

	missing, err := got.String("absent", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", missing)
}

func TestBind_Errors(t *testing.T) {
	var got Arguments
	r := New(echoModule{got: &got})

	testCases := []struct {
		name    string
		handler string
		args    map[string]cty.Value
		wantErr error
		errText string
	}{
		{name: "unknown handler", handler: "nope", wantErr: ErrUnknownHandler, errText: "known: echo"},
		{name: "missing required", handler: "echo", args: map[string]cty.Value{}, wantErr: ErrInvalidArguments, errText: `"message"`},
		{
			name:    "unexpected argument",
			handler: "echo",
			args:    map[string]cty.Value{"message": cty.StringVal("x"), "extra": cty.True},
			wantErr: ErrInvalidArguments,
			errText: `"extra"`,
		},
		{
			name:    "unconvertible",
			handler: "echo",
			args:    map[string]cty.Value{"message": cty.StringVal("x"), "times": cty.StringVal("many")},
			wantErr: ErrInvalidArguments,
			errText: `"times"`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Bind(tc.handler, tc.args)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorContains(t, err, tc.errText)
		})
	}
}

func TestFailures(t *testing.T) {
	r := New()

	err, lookupErr := r.Failure("assertion")
	require.NoError(t, lookupErr)
	assert.Same(t, suite.ErrAssertion, err)

	_, lookupErr = r.Failure("segfault")
	assert.ErrorIs(t, lookupErr, ErrUnknownFailure)

	assert.Panics(t, func() { r.RegisterFailure("assertion", suite.ErrAny) })
}

func TestRegisterHandler_Duplicate(t *testing.T) {
	var got Arguments
	r := New(echoModule{got: &got})
	assert.Panics(t, func() { echoModule{got: &got}.Register(r) })
	assert.Equal(t, []string{"echo"}, r.HandlerNames())
}
