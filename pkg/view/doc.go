// Package view renders a [graph.Graph] through a pluggable rendering engine
// and turns the engine's selection events into detail callbacks.
//
// # Roles
//
//   - [Surface]: the drawing target (a browser canvas, a terminal pane).
//     It accepts painted frames and reports raw user selections.
//   - [Engine]: lays out and draws a [Scene] onto a surface. Each call to
//     Open yields one live [Instance].
//   - [View]: owns at most one instance per surface. It builds the scene from
//     the graph, subscribes to selection events and resolves selected ids back
//     to [graph.Detail] payloads.
//
// # Lifecycle
//
// A View is either Idle (no engine instance) or Rendering (exactly one
// instance, listening). Every transition out of Rendering goes through
// teardown, which destroys the instance and detaches its listener:
//
//	Idle --Render(non-empty)--> Rendering
//	Rendering --Render(any)--> teardown --> Idle --> (Rendering if non-empty)
//	Rendering --Close--> teardown --> Idle
//
// The instance is held by a lease whose release is idempotent, so no path
// can open a second instance while the first one is still alive.
//
// # Selection
//
// When the engine reports exactly one selected node id, the view looks the
// id up in the graph it is currently rendering and invokes the caller's
// [SelectFunc] with that node's detail. Empty selections, multi-selections
// and unknown ids are ignored.
package view
