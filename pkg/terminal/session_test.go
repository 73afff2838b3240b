package terminal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formlife/pkg/lifecycle"
	"github.com/goliatone/go-formlife/pkg/model"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	confirm      []bool
	infoMessages []string
	prompts      []string
	inputPos     int
	passPos      int
	confirmPos   int
	inputErr     error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputErr != nil {
		return "", s.inputErr
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.prompts = append(s.prompts, cfg.Message)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	s.prompts = append(s.prompts, cfg.Message)
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func loginForm() model.Form {
	return model.Form{
		ID: "login",
		Fields: []model.Field{
			{Name: "email", Kind: model.FieldKindEmail, Label: "Email"},
			{Name: "password", Kind: model.FieldKindPassword, Label: "Password"},
			{Name: "showPassword", NoValue: true},
		},
	}
}

func newSession(t *testing.T, driver *stubDriver, submit func(context.Context, *lifecycle.Controller) (lifecycle.Result, error)) (*Session, *lifecycle.Controller) {
	t.Helper()
	ctrl, err := lifecycle.New(loginForm(), lifecycle.Hooks{Submit: submit})
	require.NoError(t, err)
	session, err := NewSession(ctrl, WithPromptDriver(driver), WithMaxAttempts(3))
	require.NoError(t, err)
	return session, ctrl
}

func TestSessionSubmitsAndHalts(t *testing.T) {
	driver := &stubDriver{inputs: []string{"a@b.com"}, passwords: []string{"abcdefgh"}}
	var submitted map[string]string
	session, ctrl := newSession(t, driver, func(_ context.Context, c *lifecycle.Controller) (lifecycle.Result, error) {
		submitted = c.Snapshot().Map()
		return lifecycle.Result{Halt: true}, nil
	})

	result, err := session.Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.Halt)
	require.Equal(t, lifecycle.StateHalted, ctrl.State())
	require.Equal(t, map[string]string{"email": "a@b.com", "password": "abcdefgh"}, submitted)
	require.Equal(t, []string{"Email", "Password"}, driver.prompts)
	require.Empty(t, driver.infoMessages)
}

func TestSessionRepromptsInvalidField(t *testing.T) {
	driver := &stubDriver{inputs: []string{"nope", "a@b.com"}, passwords: []string{"abcdefgh"}}
	calls := 0
	session, _ := newSession(t, driver, func(context.Context, *lifecycle.Controller) (lifecycle.Result, error) {
		calls++
		return lifecycle.Result{}, nil
	})

	_, err := session.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, []string{"✗ Email: Invalid email address"}, driver.infoMessages)
	require.Equal(t, []string{"Email", "Password", "Email"}, driver.prompts)
}

func TestSessionSubmissionFailureWithoutRetry(t *testing.T) {
	boom := errors.New("boom")
	driver := &stubDriver{inputs: []string{"a@b.com"}, passwords: []string{"abcdefgh"}, confirm: []bool{false}}
	session, ctrl := newSession(t, driver, func(context.Context, *lifecycle.Controller) (lifecycle.Result, error) {
		return lifecycle.Result{}, boom
	})

	_, err := session.Run(context.Background())
	require.ErrorIs(t, err, boom)
	var subErr *lifecycle.SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, []string{"✗ boom"}, driver.infoMessages)
	require.True(t, ctrl.ErrorVisible())
}

func TestSessionRetriesSubmission(t *testing.T) {
	driver := &stubDriver{inputs: []string{"a@b.com"}, passwords: []string{"abcdefgh"}, confirm: []bool{true}}
	calls := 0
	session, ctrl := newSession(t, driver, func(context.Context, *lifecycle.Controller) (lifecycle.Result, error) {
		calls++
		if calls == 1 {
			return lifecycle.Result{}, errors.New("temporary")
		}
		return lifecycle.Result{}, nil
	})

	_, err := session.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.False(t, ctrl.ErrorVisible())
	require.True(t, ctrl.Enabled())
}

func TestSessionTooManyAttempts(t *testing.T) {
	driver := &stubDriver{inputs: []string{"x", "y", "z", "w"}, passwords: []string{"abcdefgh"}}
	session, _ := newSession(t, driver, func(context.Context, *lifecycle.Controller) (lifecycle.Result, error) {
		return lifecycle.Result{}, nil
	})

	_, err := session.Run(context.Background())
	require.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestSessionAbort(t *testing.T) {
	driver := &stubDriver{inputErr: ErrAborted}
	session, _ := newSession(t, driver, func(context.Context, *lifecycle.Controller) (lifecycle.Result, error) {
		return lifecycle.Result{}, nil
	})

	_, err := session.Run(context.Background())
	require.ErrorIs(t, err, ErrAborted)
}

func TestNewSessionRequiresController(t *testing.T) {
	_, err := NewSession(nil)
	require.ErrorIs(t, err, ErrNilController)
}
