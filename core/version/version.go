package version

// Version is overridden at build time with -ldflags "-X .../core/version.Version=vX.Y.Z".
var Version = "dev"
