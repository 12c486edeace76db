package device

import (
	"errors"
	"testing"
	"time"

	"temp_monitor/internal/persist"
	"temp_monitor/internal/store"
)

func newTestConfig(t *testing.T) (*Config, *store.FS) {
	t.Helper()
	s := store.NewMemory()
	return New(s, persist.StrategyBackup), s
}

func TestSetTimezoneOffset(t *testing.T) {
	cases := []struct {
		name    string
		in      int
		applied bool
		want    int
	}{
		{"within range", -5, true, -5},
		{"upper bound", 12, true, 12},
		{"lower bound", -12, true, -12},
		{"too high", 13, false, DefaultTimezoneOffset},
		{"too low", -13, false, DefaultTimezoneOffset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, s := newTestConfig(t)
			applied, err := c.SetTimezoneOffset(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if applied != tc.applied {
				t.Fatalf("applied=%v, want %v", applied, tc.applied)
			}
			if got := c.Values().TimezoneOffsetHours; got != tc.want {
				t.Fatalf("offset=%d, want %d", got, tc.want)
			}
			if s.Exists(ConfigFile) != tc.applied {
				t.Fatalf("persisted=%v, want %v", s.Exists(ConfigFile), tc.applied)
			}
		})
	}
}

func TestSetThresholds_RejectsInverted(t *testing.T) {
	c, _ := newTestConfig(t)

	if ok, err := c.SetThresholds(18, 19); err != nil || !ok {
		t.Fatalf("expected apply, ok=%v err=%v", ok, err)
	}
	if ok, _ := c.SetThresholds(25, 20); ok {
		t.Fatalf("inverted thresholds must be rejected")
	}
	if ok, _ := c.SetThresholds(20, 20); ok {
		t.Fatalf("equal thresholds must be rejected")
	}
	v := c.Values()
	if v.RelayOnBelowTemp != 18 || v.RelayOffAboveTemp != 19 {
		t.Fatalf("prior values not retained: %+v", v)
	}
}

func TestApplyForm(t *testing.T) {
	c, s := newTestConfig(t)

	ok, err := c.ApplyForm(FormValues{
		MinSet:          "19.5",
		MaxSet:          "20.5",
		CloudURL:        " https://example.com/ingest ",
		CloudAPIKey:     "secret-key",
		CloudInstanceID: "42",
	})
	if err != nil || !ok {
		t.Fatalf("expected apply, ok=%v err=%v", ok, err)
	}
	v := c.Values()
	if v.RelayOnBelowTemp != 19.5 || v.RelayOffAboveTemp != 20.5 ||
		v.CloudEndpointURL != "https://example.com/ingest" || v.CloudAPIKey != "secret-key" || v.CloudInstanceID != "42" {
		t.Fatalf("unexpected values: %+v", v)
	}
	if !s.Exists(ConfigFile) {
		t.Fatalf("expected config to be persisted")
	}

	// masked key keeps the stored one
	ok, _ = c.ApplyForm(FormValues{MinSet: "19", MaxSet: "21", CloudURL: "https://example.com/v2", CloudAPIKey: "********", CloudInstanceID: "43"})
	if !ok {
		t.Fatalf("expected apply")
	}
	if got := c.Values().CloudAPIKey; got != "secret-key" {
		t.Fatalf("masked key overwrote stored key: %q", got)
	}
}

func TestApplyForm_InvertedOrInvalidDiscardsBatch(t *testing.T) {
	cases := []struct {
		name string
		form FormValues
	}{
		{"inverted", FormValues{MinSet: "25", MaxSet: "20", CloudURL: "https://evil.example", CloudAPIKey: "k2", CloudInstanceID: "9"}},
		{"not a number", FormValues{MinSet: "abc", MaxSet: "20", CloudURL: "https://evil.example"}},
		{"empty", FormValues{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, s := newTestConfig(t)
			before := c.Values()
			ok, err := c.ApplyForm(tc.form)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				t.Fatalf("form must be rejected")
			}
			if c.Values() != before {
				t.Fatalf("values changed: %+v", c.Values())
			}
			if s.Exists(ConfigFile) {
				t.Fatalf("rejected form must not persist")
			}
		})
	}
}

func TestApply_ValidatesWholeBatch(t *testing.T) {
	c, _ := newTestConfig(t)
	on, off := 30.0, 10.0
	url := "https://example.com"

	err := c.Apply(Update{RelayOnBelowTemp: &on, RelayOffAboveTemp: &off, CloudEndpointURL: &url})
	if !errors.Is(err, ErrThresholdOrder) {
		t.Fatalf("expected ErrThresholdOrder, got %v", err)
	}
	if c.Values().CloudEndpointURL != "" {
		t.Fatalf("url must not be applied on rejection")
	}

	tz := 14
	if err := c.Apply(Update{TimezoneOffsetHours: &tz}); !errors.Is(err, ErrTimezoneRange) {
		t.Fatalf("expected ErrTimezoneRange, got %v", err)
	}

	tz = -3
	key := "abcd"
	if err := c.Apply(Update{TimezoneOffsetHours: &tz, CloudEndpointURL: &url, CloudAPIKey: &key}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := c.Values()
	if v.TimezoneOffsetHours != -3 || v.CloudEndpointURL != url || v.CloudAPIKey != key {
		t.Fatalf("unexpected values: %+v", v)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	c, s := newTestConfig(t)
	if err := c.Apply(Update{
		TimezoneOffsetHours: ptr(-7),
		RelayOnBelowTemp:    ptr(17.5),
		RelayOffAboveTemp:   ptr(18.3),
		CloudEndpointURL:    ptr("https://example.com/a,b?q=%41"),
		CloudAPIKey:         ptr("k,e%y"),
		CloudInstanceID:     ptr("1001"),
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	loaded := New(s, persist.StrategyBackup)
	if err := loaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := loaded.Values()
	want := c.Values()
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoad_FallsBackToBackup(t *testing.T) {
	s := store.NewMemory()
	if err := s.WriteFile(ConfigBackupFile, []byte("3,15.0,16.0,https://b.example,key1,7,")); err != nil {
		t.Fatal(err)
	}
	c := New(s, persist.StrategyBackup)
	if err := c.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	v := c.Values()
	if v.TimezoneOffsetHours != 3 || v.CloudEndpointURL != "https://b.example" || v.CloudInstanceID != "7" {
		t.Fatalf("unexpected values: %+v", v)
	}
}

func TestLoad_SubstitutesInvalidValues(t *testing.T) {
	s := store.NewMemory()
	if err := s.WriteFile(ConfigFile, []byte("40,25.0,20.0,,,")); err != nil {
		t.Fatal(err)
	}
	c := New(s, persist.StrategyBackup)
	if err := c.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	v := c.Values()
	if v.TimezoneOffsetHours != DefaultTimezoneOffset {
		t.Fatalf("tz=%d, want default", v.TimezoneOffsetHours)
	}
	if v.RelayOnBelowTemp != DefaultRelayOnBelowTemp || v.RelayOffAboveTemp != DefaultRelayOffAboveTemp {
		t.Fatalf("thresholds not reset to defaults: %+v", v)
	}
}

func TestLoad_NoState(t *testing.T) {
	c, _ := newTestConfig(t)
	if err := c.Load(); !errors.Is(err, persist.ErrNoState) {
		t.Fatalf("expected ErrNoState, got %v", err)
	}
	if c.Values() != Defaults() {
		t.Fatalf("defaults not kept: %+v", c.Values())
	}
}

func TestLocation(t *testing.T) {
	c, _ := newTestConfig(t)
	if _, off := time.Now().In(c.Location()).Zone(); off != 12*3600 {
		t.Fatalf("offset=%d", off)
	}
}

func ptr[T any](v T) *T { return &v }

func TestThresholds_RoundedToOneDecimalSurviveReload(t *testing.T) {
	c, s := newTestConfig(t)

	// 18.02 and 18.04 both round to 18.0 and would load back as an inverted pair
	if ok, _ := c.SetThresholds(18.02, 18.04); ok {
		t.Fatalf("pair equal at one decimal was accepted")
	}
	if ok, _ := c.ApplyForm(FormValues{MinSet: "18.02", MaxSet: "18.04"}); ok {
		t.Fatalf("form pair equal at one decimal was accepted")
	}
	if err := c.Apply(Update{RelayOnBelowTemp: ptr(18.02), RelayOffAboveTemp: ptr(18.04)}); !errors.Is(err, ErrThresholdOrder) {
		t.Fatalf("Apply err=%v, want ErrThresholdOrder", err)
	}

	if ok, err := c.SetThresholds(18.04, 18.06); err != nil || !ok {
		t.Fatalf("SetThresholds(18.04, 18.06) ok=%v err=%v", ok, err)
	}
	if v := c.Values(); v.RelayOnBelowTemp != 18.0 || v.RelayOffAboveTemp != 18.1 {
		t.Fatalf("stored thresholds %v/%v, want 18.0/18.1", v.RelayOnBelowTemp, v.RelayOffAboveTemp)
	}

	fresh := New(s, persist.StrategyBackup)
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fresh.Values() != c.Values() {
		t.Fatalf("reload = %+v, want %+v", fresh.Values(), c.Values())
	}
}

func TestApply_SharesSetterValidation(t *testing.T) {
	cases := []struct {
		name string
		tz   int
		on   float64
		off  float64
	}{
		{"timezone_low", -13, 18, 19},
		{"timezone_high", 13, 18, 19},
		{"inverted", 0, 25, 20},
		{"equal_after_rounding", 0, 20.04, 19.96},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestConfig(t)
			tzOK, _ := c.SetTimezoneOffset(tc.tz)
			thOK, _ := c.SetThresholds(tc.on, tc.off)

			d, _ := newTestConfig(t)
			err := d.Apply(Update{TimezoneOffsetHours: ptr(tc.tz), RelayOnBelowTemp: ptr(tc.on), RelayOffAboveTemp: ptr(tc.off)})
			if (err == nil) != (tzOK && thOK) {
				t.Fatalf("Apply err=%v but setters accepted tz=%v thresholds=%v", err, tzOK, thOK)
			}
			if err != nil && d.Values() != Defaults() {
				t.Fatalf("rejected Apply changed values: %+v", d.Values())
			}
		})
	}
}
