// Package browsertest provides a scripted browser.Driver for tests.
package browsertest

import (
	"context"
	"encoding/json"
	"time"

	"sjsage522/taglikeworker/internal/browser"
	apperrors "sjsage522/taglikeworker/pkg/errors"
)

// EvalFunc answers one Evaluate call for the page currently open at url
type EvalFunc func(url, script string) (any, error)

// FakeDriver records every driver call and answers Evaluate from Eval
type FakeDriver struct {
	Eval        EvalFunc
	NavigateErr func(url string) error

	URL         string
	Navigations []string
	Scripts     []string
	Scrolls     int
	Sleeps      []time.Duration
}

var _ browser.Driver = (*FakeDriver)(nil)

// Navigate records url as the current page
func (f *FakeDriver) Navigate(ctx context.Context, url string) error {
	f.Navigations = append(f.Navigations, url)
	if f.NavigateErr != nil {
		if err := f.NavigateErr(url); err != nil {
			return apperrors.NewNavigation(url, "failed to open page", err)
		}
	}
	f.URL = url
	return nil
}

// Evaluate calls Eval and round-trips its value through JSON into res, the
// way a real page result is marshalled.
func (f *FakeDriver) Evaluate(ctx context.Context, script string, res any) error {
	f.Scripts = append(f.Scripts, script)
	if f.Eval == nil {
		return apperrors.NewEvaluation("page", "no evaluation handler", nil)
	}

	value, err := f.Eval(f.URL, script)
	if err != nil {
		if apperrors.TypeOf(err) != "" {
			return err
		}
		return apperrors.NewEvaluation("page", "script evaluation failed", err)
	}
	if res == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewEvaluation("page", "unmarshalable result", err)
	}
	if err := json.Unmarshal(data, res); err != nil {
		return apperrors.NewEvaluation("page", "unexpected result shape", err)
	}
	return nil
}

// ScrollToBottom counts scrolls
func (f *FakeDriver) ScrollToBottom(ctx context.Context) error {
	f.Scrolls++
	return nil
}

// Sleep records the requested delay without waiting
func (f *FakeDriver) Sleep(ctx context.Context, d time.Duration) error {
	f.Sleeps = append(f.Sleeps, d)
	return ctx.Err()
}
