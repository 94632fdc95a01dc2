package engine

import "testing"

func TestDefaultInitOptions(t *testing.T) {
	opts := DefaultInitOptions("video_data/run/csv")
	if err := opts.validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}
	if opts.MonitorPolicy != MonitorAll {
		t.Errorf("monitor policy = %d, want MonitorAll", opts.MonitorPolicy)
	}
	if opts.RandSeed < 0 || opts.RandSeed >= 1000000000 {
		t.Errorf("seed %d out of range", opts.RandSeed)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*InitOptions)
		wantErr bool
	}{
		{"valid", func(o *InitOptions) {}, false},
		{"zero threads", func(o *InitOptions) { o.Threads = 0 }, true},
		{"bad policy", func(o *InitOptions) { o.MonitorPolicy = 7 }, true},
		{"monitoring without dir", func(o *InitOptions) { o.MonitorDir = "" }, true},
		{"off needs no dir", func(o *InitOptions) { o.MonitorDir = ""; o.MonitorPolicy = MonitorOff }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultInitOptions("csv")
			tc.mutate(&opts)
			if err := opts.validate(); (err != nil) != tc.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
