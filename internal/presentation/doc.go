// Package presentation assembles a recording into a layered timeline.
//
// An Assembler resolves the webcam capture first to fix the project's
// restriction caps, then runs the Camera, Slides, Deskshare, and Backdrop
// track builders in that order. Each builder owns one layer with an explicit
// priority, resolves assets through a shared assets.Resolver, and passes every
// clip through the window trimmer before placing it.
//
// The package never reads raw metadata documents. It consumes validated event
// sequences from a Source, normally a *recording.Recording.
package presentation
