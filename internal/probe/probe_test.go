package probe

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/wellsgz/udprtt/internal/stats"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		want    Strategy
		wantErr bool
	}{
		{"blocking", 0, Blocking, false},
		{"busy-poll", 2, BusyPoll, false},
		{"reserved", 1, 0, true},
		{"unknown", 3, 0, true},
		{"negative", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStrategy(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStrategy(%d) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrConfiguration) {
					t.Errorf("ParseStrategy(%d) error = %v, want ErrConfiguration", tt.code, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestStrategyString(t *testing.T) {
	if Blocking.String() != "blocking" {
		t.Errorf("Blocking.String() = %q", Blocking.String())
	}
	if BusyPoll.String() != "busy-poll" {
		t.Errorf("BusyPoll.String() = %q", BusyPoll.String())
	}
	if Strategy(1).String() != "Strategy(1)" {
		t.Errorf("Strategy(1).String() = %q", Strategy(1).String())
	}
}

func TestConfigValidateClient(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"ipv6 loopback", func(c *Config) { c.Peer = "::1" }, false},
		{"host name rejected", func(c *Config) { c.Peer = "localhost" }, true},
		{"garbage address", func(c *Config) { c.Peer = "not-an-address" }, true},
		{"octet out of range", func(c *Config) { c.Peer = "256.1.1.1" }, true},
		{"empty address", func(c *Config) { c.Peer = "" }, true},
		{"port zero", func(c *Config) { c.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Port = 70000 }, true},
		{"zero length", func(c *Config) { c.MessageLength = 0 }, true},
		{"length above max", func(c *Config) { c.MessageLength = MaxMessageLength + 1 }, true},
		{"length at max", func(c *Config) { c.MessageLength = MaxMessageLength }, false},
		{"zero count", func(c *Config) { c.MessageCount = 0 }, true},
		{"reserved strategy", func(c *Config) { c.Strategy = Strategy(1) }, true},
		{"busy-poll", func(c *Config) { c.Strategy = BusyPoll }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.ValidateClient()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrConfiguration) {
				t.Errorf("ValidateClient() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestConfigValidateServer(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"ephemeral port", func(c *Config) { c.Port = 0 }, false},
		{"peer ignored", func(c *Config) { c.Peer = "bogus" }, false},
		{"count ignored", func(c *Config) { c.MessageCount = 0 }, false},
		{"negative port", func(c *Config) { c.Port = -1 }, true},
		{"zero length", func(c *Config) { c.MessageLength = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.ValidateServer(); (err != nil) != tt.wantErr {
				t.Errorf("ValidateServer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewClientUnmapsIPv4InIPv6(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Peer = "::ffff:127.0.0.1"
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if !c.Peer().Addr().Is4() {
		t.Errorf("Peer() = %v, want plain IPv4", c.Peer())
	}
}

func TestNewReport(t *testing.T) {
	acc := stats.NewAccumulator()
	for _, ns := range []float64{10_000, 20_000, 30_000} {
		acc.Update(ns)
	}
	q := stats.Quantiles{P50: 20_000, P90: 30_000, P99: 30_000, P999: 30_000}

	r := NewReport(acc.Snapshot(), &q)
	if r.Count != 3 {
		t.Errorf("Count = %v, want 3", r.Count)
	}
	if math.Abs(r.MeanUs-20) > 1e-9 {
		t.Errorf("MeanUs = %v, want 20", r.MeanUs)
	}
	// population variance of {10,20,30} us is 200/3 us^2
	if math.Abs(r.VarianceUs2-200.0/3) > 1e-9 {
		t.Errorf("VarianceUs2 = %v, want %v", r.VarianceUs2, 200.0/3)
	}
	if r.MinUs != 10 || r.MaxUs != 30 {
		t.Errorf("MinUs, MaxUs = %v, %v, want 10, 30", r.MinUs, r.MaxUs)
	}
	if r.Percentiles == nil || r.Percentiles.P50 != 20 {
		t.Errorf("Percentiles = %+v, want P50 20", r.Percentiles)
	}
}

func TestReportString(t *testing.T) {
	r := Report{Count: 1, MeanUs: 12.5, VarianceUs2: 0.25, MinUs: 12, MaxUs: 13}
	want := "Mean: 12.500 us Variance: 0.250 us^2 Min: 12.000 us Max: 13.000 us"
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	r.Percentiles = &stats.Quantiles{P50: 12, P90: 13, P99: 13, P999: 13}
	if got := r.String(); !strings.HasPrefix(got, want+" P50: 12.000 us") {
		t.Errorf("String() = %q, want percentiles appended", got)
	}
}

func TestReportWriteJSONEmptyRun(t *testing.T) {
	r := NewReport(stats.NewAccumulator().Snapshot(), nil)

	var b strings.Builder
	if err := r.WriteJSON(&b); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !strings.Contains(b.String(), `"count": 0`) {
		t.Errorf("WriteJSON() = %s, want count 0", b.String())
	}
	if strings.Contains(b.String(), "percentiles_us") {
		t.Errorf("WriteJSON() = %s, want no percentiles", b.String())
	}
}

func TestMultiObserver(t *testing.T) {
	var a, b int
	obs := MultiObserver(
		ObserverFunc(func(Progress) { a++ }),
		nil,
		ObserverFunc(func(Progress) { b++ }),
	)
	obs.Observe(Progress{})
	obs.Observe(Progress{})

	if a != 2 || b != 2 {
		t.Errorf("observer calls = %d, %d, want 2, 2", a, b)
	}
}
