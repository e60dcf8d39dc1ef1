package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	defaultLogDir            = "~/.local/share/ripmedia/logs"
	defaultDataDir           = "~/.local/share/ripmedia"
	defaultFallbackOutputDir = "output"
	defaultResolver          = "youtube"
	defaultCandidateLimit    = 5
	defaultLowConfidence     = 0.6
	defaultDurationWindow    = 30.0
	defaultWebBind           = "127.0.0.1"
	defaultWebPort           = 8765
	defaultWebParallel       = 2
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultSpeedUnit         = SpeedUnitMBps
)

// Speed units accepted by ui.speed_unit.
const (
	SpeedUnitMBps = "MBps"
	SpeedUnitMbps = "Mbps"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir(),
			LogDir:    defaultLogDir,
			DataDir:   defaultDataDir,
		},
		Download: Download{
			Resolver: defaultResolver,
		},
		Resolver: Resolver{
			CandidateLimit:         defaultCandidateLimit,
			LowConfidenceThreshold: defaultLowConfidence,
			DurationWindowSeconds:  defaultDurationWindow,
		},
		WebHost: WebHost{
			Bind:     defaultWebBind,
			Port:     defaultWebPort,
			Parallel: defaultWebParallel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Batch:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		UI: UI{
			SpeedUnit: defaultSpeedUnit,
		},
	}
}

// defaultOutputDir prefers the user's XDG download directory when it exists.
func defaultOutputDir() string {
	if dir := xdg.UserDirs.Download; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return filepath.Join(".", defaultFallbackOutputDir)
}
