// Package assets resolves media files into timeline assets.
//
// A Resolver probes each distinct path once per run and hands every caller the
// same *timeline.Asset pointer for it, so the rendering engine shares a single
// decode pipeline per physical file. Resolved assets are registered with the
// project timeline as a side effect. Probing itself is delegated to a Prober;
// FFprobe is the production implementation.
package assets
