package monkey

// Version and BuildDate are overridden at link time:
//
//	go build -ldflags "-X github.com/daios-ai/monkey.Version=v0.3.0 -X github.com/daios-ai/monkey.BuildDate=2026-10-19"
var (
	Version   = "dev"
	BuildDate = "unknown"
)
