// Package config provides the runtime configuration of wordwatch: scan
// timings, notification settings, page fetch options and the per-site
// request settings read from the .wordwatch file.
package config
