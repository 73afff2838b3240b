package config_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formlife/pkg/config"
)

func TestDefault(t *testing.T) {
	got := config.Default()
	want := config.Settings{
		Locale:        "en",
		ExcludedGroup: "age-gate",
		Password:      config.Password{MinLength: 8},
		Email:         config.Email{MaxLength: 256, LocalMaxLength: 64},
		Timing: config.Timing{
			DelayedRequest:         5 * time.Second,
			ProgressIndicatorDelay: 100 * time.Millisecond,
			TooltipFade:            150 * time.Millisecond,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	got, err := config.Load([]byte(`
locale: de
password:
  minLength: 12
timing:
  delayedRequest: 2s
tooltip:
  themes: themes.yaml
  theme: acme
  variant: dark
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Locale != "de" || got.Password.MinLength != 12 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Timing.DelayedRequest != 2*time.Second {
		t.Fatalf("duration not parsed: %v", got.Timing.DelayedRequest)
	}
	if got.Timing.TooltipFade != config.DefaultTooltipFade {
		t.Fatalf("default not applied to tooltip fade: %v", got.Timing.TooltipFade)
	}
	if got.Tooltip.Theme != "acme" || got.Tooltip.Variant != "dark" {
		t.Fatalf("tooltip theme not parsed: %+v", got.Tooltip)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"negative password": "password:\n  minLength: -1\n",
		"local exceeds":     "email:\n  maxLength: 10\n  localMaxLength: 20\n",
		"bad yaml":          "locale: [",
		"template sans dir": "tooltip:\n  template: tooltip\n",
		"theme sans themes": "tooltip:\n  theme: acme\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Load([]byte(raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
