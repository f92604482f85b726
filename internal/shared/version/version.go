package version

// Version is overridden at build time with
// -ldflags "-X doccov/internal/shared/version.Version=<v>".
var Version = "1.0.0"
