package internal

// Version is overwritten at build time: -ldflags "-X github.com/h44z/wg-portal-routeros/internal.Version=v1.2.3"
var Version = "dev"
